package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spendlog/internal/core"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 16

// DefaultTTL is the lifetime of issued tokens.
const DefaultTTL = 7 * 24 * time.Hour

type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens carrying {userId, email}.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer never fails; an unusable secret surfaces as
// core.ErrAuthNotConfigured from Issue and Verify.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Configured() bool {
	return len(i.secret) >= MinSecretLength
}

func (i *Issuer) Issue(id core.Identity) (string, error) {
	if !i.Configured() {
		return "", core.ErrAuthNotConfigured
	}
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: id.UserID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure other than
// a missing secret is reported as core.ErrUnauthorized.
func (i *Issuer) Verify(token string) (core.Identity, error) {
	if !i.Configured() {
		return core.Identity{}, core.ErrAuthNotConfigured
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return core.Identity{}, errors.Join(core.ErrUnauthorized, err)
	}
	if c.UserID == "" {
		return core.Identity{}, core.ErrUnauthorized
	}
	return core.Identity{UserID: c.UserID, Email: c.Email}, nil
}
