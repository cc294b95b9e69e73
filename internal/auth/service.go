// Package auth issues and validates the signed, time-bounded identity tokens
// that protect the balance and transfer endpoints.
package auth

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is the single failure every structural, cryptographic
	// or expiry problem collapses to. Callers learn nothing about which
	// check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingToken indicates the Authorization header is absent or not of
	// the exact "Bearer <token>" shape.
	ErrMissingToken = errors.New("missing bearer token")
)

// Service signs and verifies identity tokens with a fixed symmetric key.
// It is stateless aside from the key and safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a token authority from the process-wide signing secret
// and the token lifetime.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the subject with iat = now and exp = now + ttl.
func (s *Service) Issue(subject string) (string, error) {
	now := s.now()
	claims := map[string]any{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	return signHS256(claims, s.secret)
}

// Validate verifies the token signature and expiry and returns the signed
// subject. Every failure surfaces as ErrInvalidToken.
func (s *Service) Validate(token string) (string, error) {
	claims, err := parseAndVerifyHS256(token, s.secret)
	if err != nil {
		return "", ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok || !s.now().Before(time.Unix(int64(exp), 0)) {
		return "", ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}

	return subject, nil
}

// BearerToken extracts the token from a request header map. The Authorization
// value must be exactly two space-separated tokens with a literal "Bearer"
// scheme.
func BearerToken(headers map[string]string) (string, error) {
	authz, ok := headers["Authorization"]
	if !ok {
		return "", ErrMissingToken
	}
	parts := strings.Split(authz, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMissingToken
	}
	return parts[1], nil
}
