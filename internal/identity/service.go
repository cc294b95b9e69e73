// Package identity handles signup and credential verification. Password
// hashing is confined to this package; the rest of the system only ever sees
// opaque digests.
package identity

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/teller/internal/account"
	"github.com/congo-pay/teller/internal/ledger"
)

// Credentials carries a signup or signin request.
type Credentials struct {
	Login    string
	Password string
}

// Service manages the account identity lifecycle.
type Service struct {
	ledger *ledger.Service
	repo   account.Repository
	logger *slog.Logger
}

// NewService creates a new identity service.
func NewService(led *ledger.Service, repo account.Repository, logger *slog.Logger) *Service {
	return &Service{ledger: led, repo: repo, logger: logger}
}

// Register hashes the password and creates the account with the starting
// balance. Returns account.ErrAlreadyExists when the login is taken.
func (s *Service) Register(ctx context.Context, creds Credentials) error {
	digest, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.ledger.CreateAccount(ctx, creds.Login, digest); err != nil {
		return err
	}
	s.logger.Info("user registered", "login", creds.Login)
	return nil
}

// Authenticate verifies the login and password. An unknown login and a wrong
// password both surface as account.ErrNotFound so responses do not reveal
// which one was wrong.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) error {
	acc, err := s.repo.FindByLogin(ctx, creds.Login)
	if err != nil {
		s.logger.Error("authentication failed", "login", creds.Login, "error", err)
		return err
	}
	if err := bcrypt.CompareHashAndPassword(acc.Digest, []byte(creds.Password)); err != nil {
		s.logger.Error("authentication failed", "login", creds.Login, "error", err)
		return account.ErrNotFound
	}
	s.logger.Info("user authenticated", "login", creds.Login)
	return nil
}
