// Package account owns persistence of bank accounts: a narrow store
// interface with Postgres and in-memory implementations. All balance
// mutation happens inside Transfer, atomically.
package account

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists occurs when creating an account whose login is taken.
	ErrAlreadyExists = errors.New("account already exists")

	// ErrNotFound occurs when a login has no account record.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when the sender balance cannot cover a
	// requested transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Repository persists accounts. Implementations guarantee that Create is
// atomic against concurrent same-login creates and that Transfer runs its
// whole read-check-debit-credit sequence in one critical section, so funds
// are neither created nor destroyed and no balance goes negative.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	FindByLogin(ctx context.Context, login string) (Account, error)
	Balance(ctx context.Context, login string) (int64, error)
	Transfer(ctx context.Context, from, to string, amount int64) error
}
