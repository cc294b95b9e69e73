package ledger

import (
	"context"
	"testing"

	"github.com/congo-pay/teller/internal/account"
	"github.com/congo-pay/teller/internal/logging"
)

func newService() (*Service, account.Repository) {
	repo := account.NewMemoryRepository()
	return NewService(repo, logging.Discard()), repo
}

func TestCreateAccountStartingBalance(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	if err := svc.CreateAccount(ctx, "alice", []byte("digest")); err != nil {
		t.Fatalf("create: %v", err)
	}

	balance, err := repo.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != StartingBalance {
		t.Fatalf("expected starting balance %d, got %d", StartingBalance, balance)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if err := svc.CreateAccount(ctx, "alice", []byte("d1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateAccount(ctx, "alice", []byte("d2")); err != account.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTransferThroughService(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	svc.CreateAccount(ctx, "alice", nil)
	svc.CreateAccount(ctx, "bob", nil)

	if err := svc.Transfer(ctx, "alice", "bob", 300); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if b, _ := svc.Balance(ctx, "alice"); b != 700 {
		t.Fatalf("expected alice at 700, got %d", b)
	}
	if b, _ := svc.Balance(ctx, "bob"); b != 1300 {
		t.Fatalf("expected bob at 1300, got %d", b)
	}
}

func TestTransferErrorsPassThrough(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	svc.CreateAccount(ctx, "alice", nil)

	if err := svc.Transfer(ctx, "alice", "ghost", 100); err != account.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Transfer(ctx, "ghost", "alice", 100); err != account.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	svc.CreateAccount(ctx, "bob", nil)
	if err := svc.Transfer(ctx, "alice", "bob", StartingBalance+1); err != account.ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if b, _ := svc.Balance(ctx, "alice"); b != StartingBalance {
		t.Fatalf("balance changed after failed transfer: %d", b)
	}
}
