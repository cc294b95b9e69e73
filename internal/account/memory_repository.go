package account

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds a concurrency-safe in-memory account store
// useful for unit tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.Login]; exists {
		return ErrAlreadyExists
	}
	r.accounts[acc.Login] = acc
	return nil
}

func (r *memoryRepository) FindByLogin(_ context.Context, login string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[login]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *memoryRepository) Balance(_ context.Context, login string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[login]
	if !ok {
		return 0, ErrNotFound
	}
	return acc.Balance, nil
}

// Transfer holds the lock across the whole check-then-mutate sequence.
// Sender sufficiency is decided before the recipient is resolved, so an
// underfunded sender fails the same way whether or not the recipient exists.
func (r *memoryRepository) Transfer(_ context.Context, from, to string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.accounts[from]
	if !ok {
		return ErrNotFound
	}
	if sender.Balance < amount {
		return ErrInsufficientFunds
	}
	receiver, ok := r.accounts[to]
	if !ok {
		return ErrNotFound
	}

	sender.Balance -= amount
	receiver.Balance += amount
	r.accounts[from] = sender
	r.accounts[to] = receiver
	return nil
}
