// Package ledger exposes the account-balance operations: creation with the
// fixed starting balance, balance lookup, and the atomic funds transfer.
package ledger

import (
	"context"
	"log/slog"

	"github.com/congo-pay/teller/internal/account"
)

// StartingBalance is credited to every account at signup, in the smallest
// currency unit.
const StartingBalance int64 = 1000

// Service owns balance mutation. Atomicity of the underlying operations is
// guaranteed by the account repository; this layer adds validation-free
// delegation plus structured logging per operation.
type Service struct {
	repo   account.Repository
	logger *slog.Logger
}

// NewService builds a ledger service.
func NewService(repo account.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateAccount registers a new account with the starting balance. The
// credential digest is opaque here; hashing belongs to the identity layer.
func (s *Service) CreateAccount(ctx context.Context, login string, digest []byte) error {
	err := s.repo.Create(ctx, account.Account{Login: login, Digest: digest, Balance: StartingBalance})
	if err != nil {
		s.logger.Error("account creation failed", "login", login, "error", err)
		return err
	}
	s.logger.Info("account created", "login", login, "balance", StartingBalance)
	return nil
}

// Balance returns the current balance for the login.
func (s *Service) Balance(ctx context.Context, login string) (int64, error) {
	balance, err := s.repo.Balance(ctx, login)
	if err != nil {
		s.logger.Error("balance lookup failed", "login", login, "error", err)
		return 0, err
	}
	s.logger.Info("balance retrieved", "login", login, "balance", balance)
	return balance, nil
}

// Transfer moves amount from one login to the other. Preconditions
// (amount > 0, from != to) are enforced by the caller; the repository
// serializes the debit/credit sequence and rolls back on a missing
// recipient, so funds are conserved under any outcome.
func (s *Service) Transfer(ctx context.Context, from, to string, amount int64) error {
	if err := s.repo.Transfer(ctx, from, to, amount); err != nil {
		s.logger.Error("transfer failed", "from", from, "to", to, "amount", amount, "error", err)
		return err
	}
	s.logger.Info("transfer completed", "from", from, "to", to, "amount", amount)
	return nil
}
