package model

import "time"

// AuthCode is a pending one-time registration code for a receiver. At most
// one lives per receiver id; issuing a new one overwrites it.
type AuthCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the code's validity window has passed.
func (c AuthCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the push subscription blob supplied by the receiver's
// client. It is stored as-is; the push service is the authority on whether
// it is usable.
type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *float64         `json:"expirationTime,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
}

// Registration binds a receiver id to its current push subscription.
// Updates replace the subscription wholesale but keep RegisteredAt.
type Registration struct {
	Subscription *Subscription `json:"subscription"`
	RegisteredAt time.Time     `json:"registeredAt"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// Document is the entire persisted state of the relay. It is read and
// written as a unit; there is no partial-update protocol.
type Document struct {
	AuthCodes     map[string]AuthCode     `json:"authCodes"`
	Registrations map[string]Registration `json:"registrations"`
}

func NewDocument() Document {
	return Document{
		AuthCodes:     make(map[string]AuthCode),
		Registrations: make(map[string]Registration),
	}
}
