package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Bootstrap creates the account table if it does not exist.
func Bootstrap(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS account (
        id BIGSERIAL PRIMARY KEY,
        login TEXT UNIQUE NOT NULL,
        digest BYTEA NOT NULL,
        balance BIGINT NOT NULL CHECK (balance >= 0)
    )`)
	if err != nil {
		return fmt.Errorf("create account table: %w", err)
	}
	return nil
}

// Create inserts a new account. Login uniqueness is enforced by the unique
// constraint, so concurrent same-login creates collapse to one winner.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO account (login, digest, balance) VALUES ($1, $2, $3)`,
		acc.Login, acc.Digest, acc.Balance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// FindByLogin fetches an account by login.
func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT login, digest, balance FROM account WHERE login = $1`, login)
	var acc Account
	if err := row.Scan(&acc.Login, &acc.Digest, &acc.Balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("select account: %w", err)
	}
	return acc, nil
}

// Balance returns the stored balance for the login.
func (r *PostgresRepository) Balance(ctx context.Context, login string) (int64, error) {
	var balance int64
	if err := r.db.QueryRow(ctx, `SELECT balance FROM account WHERE login = $1`, login).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return balance, nil
}

// Transfer moves amount between two accounts inside one transaction. Both
// rows are locked with SELECT ... FOR UPDATE in lexical login order before
// the sufficiency check, so the check cannot interleave with another
// transfer touching either account, and locking in a fixed order cannot
// deadlock. Any failure rolls the transaction back; no partial debit
// survives.
func (r *PostgresRepository) Transfer(ctx context.Context, from, to string, amount int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	first, second := from, to
	if second < first {
		first, second = second, first
	}

	// A missing row acquires no lock, so skipping it keeps the fixed lock
	// order intact; which account is absent is decided below, after the
	// sufficiency check, so an underfunded sender always sees
	// ErrInsufficientFunds regardless of the recipient.
	balances := make(map[string]int64, 2)
	for _, login := range []string{first, second} {
		var balance int64
		if err := tx.QueryRow(ctx, `SELECT balance FROM account WHERE login = $1 FOR UPDATE`, login).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return fmt.Errorf("lock account %s: %w", login, err)
		}
		balances[login] = balance
	}

	senderBalance, senderExists := balances[from]
	if !senderExists {
		return ErrNotFound
	}
	if senderBalance < amount {
		return ErrInsufficientFunds
	}
	if _, recipientExists := balances[to]; !recipientExists {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE account SET balance = balance - $1 WHERE login = $2`, amount, from); err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE account SET balance = balance + $1 WHERE login = $2`, amount, to); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}
