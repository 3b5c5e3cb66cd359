package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/curionlab/emergency-call-server/internal/model"
)

const authCodeExpiry = 30 * time.Minute

type loginRequest struct {
	Password string `json:"password"`
}

type generateAuthCodeRequest struct {
	ReceiverID string `json:"receiverId"`
}

type registerRequest struct {
	ReceiverID   string              `json:"receiverId"`
	AuthCode     string              `json:"authCode"`
	Subscription *model.Subscription `json:"subscription"`
}

type updateSubscriptionRequest struct {
	ReceiverID   string              `json:"receiverId"`
	RefreshToken string              `json:"refreshToken"`
	Subscription *model.Subscription `json:"subscription"`
}

type refreshTokenRequest struct {
	Token string `json:"token"`
}

// generateAuthCode draws a uniformly random 6-digit decimal code.
func generateAuthCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.LoginPassword)) != 1 {
		s.log.Warn().Msg("invalid login password")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	tok, err := s.tokens.CallerToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.log.Info().Msg("admin login success")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": tok})
}

// handleGenerateAuthCode issues a pending 30-minute code for a receiver,
// overwriting any earlier pending code for the same id. The code is handed
// back to the HTTP caller; delivering it to the receiver out-of-band is the
// deployment's job.
func (s *Server) handleGenerateAuthCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req generateAuthCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receiverID := strings.TrimSpace(req.ReceiverID)
	if receiverID == "" {
		writeError(w, http.StatusBadRequest, "receiverId is required")
		return
	}

	code, err := generateAuthCode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate auth code")
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	now := time.Now().UTC()
	doc.AuthCodes[receiverID] = model.AuthCode{
		Code:      code,
		ExpiresAt: now.Add(authCodeExpiry),
		CreatedAt: now,
	}

	if err := s.store.Save(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	s.log.Info().Str("receiver_id", receiverID).Msg("auth code generated")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"code":      code,
		"expiresIn": "30m",
	})
}

// handleRegister redeems an auth code for a durable registration plus an
// access/refresh token pair. The code is consumed on success; an expired
// code is deleted (and that deletion persisted) before the error goes out.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receiverID := strings.TrimSpace(req.ReceiverID)
	if receiverID == "" || req.AuthCode == "" || req.Subscription == nil {
		writeError(w, http.StatusBadRequest, "receiverId, authCode and subscription are required")
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	stored, ok := doc.AuthCodes[receiverID]
	if !ok {
		writeError(w, http.StatusUnauthorized, "No auth code found")
		return
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(req.AuthCode)) != 1 {
		writeError(w, http.StatusUnauthorized, "Invalid auth code")
		return
	}

	if stored.Expired(time.Now()) {
		// The code is dead either way; drop it before answering.
		delete(doc.AuthCodes, receiverID)
		if err := s.store.Save(r.Context(), doc); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save data")
			return
		}
		writeError(w, http.StatusUnauthorized, "Auth code expired")
		return
	}

	doc.Registrations[receiverID] = model.Registration{
		Subscription: req.Subscription,
		RegisteredAt: time.Now().UTC(),
	}
	delete(doc.AuthCodes, receiverID)

	if err := s.store.Save(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	accessToken, refreshToken, err := s.tokens.Pair(receiverID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	s.log.Info().Str("receiver_id", receiverID).Msg("receiver registered")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"message":      "Receiver registered",
	})
}

// handleUpdateSubscription replaces a receiver's stored subscription. The
// refresh token stands in for the auth code as proof of identity; no new
// tokens are issued.
func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receiverID := strings.TrimSpace(req.ReceiverID)
	if receiverID == "" || req.RefreshToken == "" || req.Subscription == nil {
		writeError(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	tokenReceiverID, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if tokenReceiverID != receiverID {
		writeError(w, http.StatusForbidden, "Forbidden: ID mismatch")
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	now := time.Now().UTC()
	reg := model.Registration{
		Subscription: req.Subscription,
		RegisteredAt: now,
		UpdatedAt:    &now,
	}
	if prev, ok := doc.Registrations[receiverID]; ok {
		reg.RegisteredAt = prev.RegisteredAt
	}
	doc.Registrations[receiverID] = reg

	if err := s.store.Save(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	s.log.Info().Str("receiver_id", receiverID).Msg("subscription updated")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleRefreshToken mints a new 15-minute access token from a refresh
// token. Failures answer with a bare status: 401 when no token was sent,
// 403 when the token does not verify.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	receiverID, err := s.tokens.VerifyRefresh(req.Token)
	if err != nil {
		s.log.Warn().Msg("refresh token rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	accessToken, err := s.tokens.AccessToken(receiverID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.log.Info().Str("receiver_id", receiverID).Msg("access token refreshed")
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}
