package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/curionlab/emergency-call-server/internal/push"
	"github.com/curionlab/emergency-call-server/internal/token"
)

const (
	defaultNotificationTitle = "🚨 Emergency Call"
	defaultNotificationBody  = "You have a new emergency call."
)

type sendNotificationRequest struct {
	ReceiverID string `json:"receiverId"`
	SessionID  string `json:"sessionId"`
	SenderID   string `json:"senderId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// bearerIdentity authenticates the Authorization header against the access
// secret. A missing credential is 401; a present but bad one is 403.
func (s *Server) bearerIdentity(w http.ResponseWriter, r *http.Request) (token.Identity, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if auth == "" || !strings.HasPrefix(auth, prefix) {
		writeError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
		return token.Identity{}, false
	}

	id, err := s.tokens.VerifyAccess(strings.TrimSpace(strings.TrimPrefix(auth, prefix)))
	if err != nil {
		writeError(w, http.StatusForbidden, "Forbidden: Invalid token")
		return token.Identity{}, false
	}
	return id, true
}

// handleSendNotification forwards a structured message to one receiver's
// stored subscription. When the push service reports the subscription gone
// (HTTP 410) the dead registration is deleted and persisted before the
// failure response goes out; any other transport failure leaves the
// registration in place.
func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	if _, ok := s.bearerIdentity(w, r); !ok {
		return
	}

	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.ReceiverID) == "" || strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "receiverId and sessionId are required")
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	reg, ok := doc.Registrations[req.ReceiverID]
	if !ok || reg.Subscription == nil {
		writeError(w, http.StatusNotFound, "Receiver not registered")
		return
	}

	payload := push.Payload{
		Title:     req.Title,
		Body:      req.Body,
		SessionID: req.SessionID,
		SenderID:  req.SenderID,
		URL:       s.cfg.ClientURL,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload.Title == "" {
		payload.Title = defaultNotificationTitle
	}
	if payload.Body == "" {
		payload.Body = defaultNotificationBody
	}

	if err := s.sender.Send(r.Context(), reg.Subscription, payload); err != nil {
		s.log.Error().Err(err).Str("receiver_id", req.ReceiverID).Msg("push dispatch failed")

		if errors.Is(err, push.ErrSubscriptionGone) {
			delete(doc.Registrations, req.ReceiverID)
			if saveErr := s.store.Save(r.Context(), doc); saveErr != nil {
				s.log.Error().Err(saveErr).Str("receiver_id", req.ReceiverID).Msg("failed to clean up stale registration")
			} else {
				s.log.Info().Str("receiver_id", req.ReceiverID).Msg("cleaned up stale registration")
			}
		}

		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().
		Str("receiver_id", req.ReceiverID).
		Str("session_id", req.SessionID).
		Msg("notification sent")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Notification sent",
		"sessionId": req.SessionID,
	})
}
