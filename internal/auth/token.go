// Package auth issues and verifies session tokens and stores them locally.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is returned when a token is malformed, forged or expired.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the signed-in user carried by a token.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	IsAdmin   bool   `json:"is_admin"`
	Position  string `json:"position"`
	// ExpiresAt is a unix timestamp; zero means the token never expires.
	ExpiresAt int64 `json:"exp,omitempty"`
}

// Expired reports whether the identity has expired at now.
func (id Identity) Expired(now time.Time) bool {
	return id.ExpiresAt != 0 && now.Unix() >= id.ExpiresAt
}

// Encode signs identity with secret as <payload>.<signature>, both base64url.
func Encode(identity Identity, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token secret is required")
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("encode identity: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + base64.RawURLEncoding.EncodeToString(sign(body, secret)), nil
}

// Decode verifies token and returns its identity. Any failure yields ErrInvalidToken.
func Decode(token string, secret []byte, now time.Time) (Identity, error) {
	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || body == "" || len(secret) == 0 {
		return Identity{}, ErrInvalidToken
	}
	gotSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(gotSig, sign(body, secret)) {
		return Identity{}, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil || identity.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	if identity.Expired(now) {
		return Identity{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return identity, nil
}

func sign(body string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(body))
	return mac.Sum(nil)
}
