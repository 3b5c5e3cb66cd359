// Package push delivers notifications through the Web Push protocol.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/curionlab/emergency-call-server/internal/model"
)

// ErrSubscriptionGone reports that the push service permanently rejected
// the subscription (HTTP 410). The registration backing it is dead and
// should be dropped.
var ErrSubscriptionGone = errors.New("subscription gone")

// Payload is the notification body delivered to the receiver's service
// worker. Timestamp is epoch milliseconds.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	SessionID string `json:"sessionId"`
	SenderID  string `json:"senderId,omitempty"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub *model.Subscription, payload Payload) error
}

// WebPush sends through the Web Push protocol with VAPID authentication.
type WebPush struct {
	subscriber string
	publicKey  string
	privateKey string
}

// NewWebPush builds a sender. subscriber is the VAPID contact, a mailto:
// or https: URI.
func NewWebPush(subscriber, publicKey, privateKey string) *WebPush {
	return &WebPush{
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

func (w *WebPush) Send(ctx context.Context, sub *model.Subscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             2419200, // four weeks, the push service maximum
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
