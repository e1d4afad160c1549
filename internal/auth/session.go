// Package auth secures the admin HTML surface.
//
// The admin login is optional: the server enables it only when both
// ADMIN_PASSWORD_HASH and SESSION_SECRET are set. When enabled, a
// successful login issues a signed session token stored in an HttpOnly
// cookie; RequireAdmin validates it on every /admin request. The JSON
// API stays open either way.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "admin_session"

// sessionTTL is how long a login lasts before the admin has to sign in
// again.
const sessionTTL = 12 * time.Hour

const issuer = "task-tracker"

// SessionService signs and validates admin session tokens. Tokens are
// HS256 JWTs; the signature alone proves the session came from this
// server, no session store needed.
type SessionService struct {
	secret []byte
}

// NewSessionService creates a SessionService. The secret signs every
// session token, so a short one would make sessions forgeable.
func NewSessionService(secret string) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionService{secret: []byte(secret)}, nil
}

// Issue creates a signed session token. The jti is a fresh xid so two
// logins never produce the same token even within one second.
func (s *SessionService) Issue() (string, error) {
	return s.issueWithTTL(sessionTTL)
}

func (s *SessionService) issueWithTTL(ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        xid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token. WithValidMethods pins
// the algorithm so a token claiming alg=none is rejected outright.
func (s *SessionService) Validate(tokenStr string) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.New("auth: session expired")
		}
		return fmt.Errorf("auth: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject != "admin" {
		return errors.New("auth: invalid session claims")
	}
	return nil
}
