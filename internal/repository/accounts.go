package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrAccountExists is returned when registering a name that is taken.
var ErrAccountExists = errors.New("account already exists")

// ErrAccountNotFound is returned when an account lookup misses.
var ErrAccountNotFound = errors.New("account not found")

// Account is a stored player account.
type Account struct {
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository reads and writes accounts.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates an account repository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, name, passwordHash string) error {
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO accounts (name, password_hash) VALUES ($1, $2)`,
		name, passwordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrAccountExists, name)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByName looks an account up by name.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*Account, error) {
	var acc Account
	err := r.db.pool.QueryRow(ctx,
		`SELECT name, password_hash, created_at FROM accounts WHERE name = $1`,
		name,
	).Scan(&acc.Name, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// UpdatePassword replaces the stored password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, name, passwordHash string) error {
	tag, err := r.db.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE name = $1`,
		name, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return nil
}
