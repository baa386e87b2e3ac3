// Package token implements the compact signed-token format used between the
// server and its clients: a standard HS256 JWT carrying the user's public
// fields plus iat/exp. The server signs and verifies; the client only decodes
// the payload to check local expiry and never treats an unverified payload as
// proof of anything.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the fixed lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

var (
	// ErrMalformedToken indicates the token is not three base64url segments
	// or the payload is not valid JSON.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidToken indicates the signature does not match.
	ErrInvalidToken = errors.New("invalid token signature")

	// ErrExpiredToken indicates the token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Payload is the claim set embedded in a signed token. Immutable once signed.
type Payload struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	IssuedAt  int64  `json:"iat"` // epoch seconds
	ExpiresAt int64  `json:"exp"` // epoch seconds
}

// claims adapts Payload to the jwt claims interface.
type claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	jwt.RegisteredClaims
}

func (c *claims) payload() Payload {
	p := Payload{
		UserID:    c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Unix()
	}
	return p
}

// NewPayload builds a payload for the given user with issuedAt = now and the
// fixed expiry applied.
func NewPayload(userID, email, firstName string, now time.Time, ttl time.Duration) Payload {
	return Payload{
		UserID:    userID,
		Email:     email,
		FirstName: firstName,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Expired reports whether the payload is expired at the given instant.
// A token whose exp equals "now" is already expired.
func (p Payload) Expired(now time.Time) bool {
	return !now.Before(time.Unix(p.ExpiresAt, 0))
}

// Encode serializes and signs the payload with HMAC-SHA256. The result is
// three dot-joined base64url segments without padding.
func Encode(p Payload, secret []byte) (string, error) {
	c := claims{
		UserID:    p.UserID,
		Email:     p.Email,
		FirstName: p.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Unix(p.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(p.ExpiresAt, 0)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodePayload extracts the payload without verifying the signature.
// Callers use this for client-local expiry checks only; authorization
// decisions always go through Verify on the server.
func DecodePayload(tokenString string) (Payload, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &c); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return c.payload(), nil
}

// Verify checks the signature and expiry against the shared secret and
// returns the payload. Any recomputed signature mismatch rejects the token.
func Verify(tokenString string, secret []byte) (Payload, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Payload{}, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case err != nil:
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case !tok.Valid:
		return Payload{}, ErrInvalidToken
	}
	return c.payload(), nil
}
