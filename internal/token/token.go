// Package token issues and verifies the relay's JWTs. Access and refresh
// tokens are signed with distinct secrets so a leaked access secret cannot
// forge long-lived refresh tokens, and vice versa.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 15 * time.Minute
	CallerTTL  = time.Hour
	RefreshTTL = 30 * 24 * time.Hour
)

var ErrInvalid = errors.New("invalid token")

// Identity is what a verified access token asserts: either the shared
// caller identity (Authorized) or one specific receiver.
type Identity struct {
	Authorized bool
	ReceiverID string
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewIssuer(accessSecret, refreshSecret string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// CallerToken signs the undifferentiated caller identity, valid for one
// hour. The caller must have presented the login password first.
func (i *Issuer) CallerToken() (string, error) {
	return sign(jwt.MapClaims{"authorized": true}, i.accessSecret, CallerTTL)
}

// AccessToken signs a 15-minute token for one receiver.
func (i *Issuer) AccessToken(receiverID string) (string, error) {
	return sign(jwt.MapClaims{"receiverId": receiverID}, i.accessSecret, AccessTTL)
}

// RefreshToken signs a 30-day token for one receiver under the refresh
// secret.
func (i *Issuer) RefreshToken(receiverID string) (string, error) {
	return sign(jwt.MapClaims{"receiverId": receiverID}, i.refreshSecret, RefreshTTL)
}

// Pair issues the access+refresh pair returned on registration.
func (i *Issuer) Pair(receiverID string) (access, refresh string, err error) {
	access, err = i.AccessToken(receiverID)
	if err != nil {
		return "", "", err
	}
	refresh, err = i.RefreshToken(receiverID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// VerifyAccess checks a token against the access secret and returns the
// identity it carries.
func (i *Issuer) VerifyAccess(tokenStr string) (Identity, error) {
	claims, err := parse(tokenStr, i.accessSecret)
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	id.Authorized, _ = claims["authorized"].(bool)
	id.ReceiverID, _ = claims["receiverId"].(string)
	if !id.Authorized && id.ReceiverID == "" {
		return Identity{}, ErrInvalid
	}
	return id, nil
}

// VerifyRefresh checks a token against the refresh secret and returns the
// receiver id it carries.
func (i *Issuer) VerifyRefresh(tokenStr string) (string, error) {
	claims, err := parse(tokenStr, i.refreshSecret)
	if err != nil {
		return "", err
	}
	receiverID, _ := claims["receiverId"].(string)
	if receiverID == "" {
		return "", ErrInvalid
	}
	return receiverID, nil
}

func sign(claims jwt.MapClaims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parse(tokenStr string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
