package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gildhall/gildhall-server-go/internal/repository"
)

// MemoryAccounts is the account store used when the server runs without a
// database. Accounts live for the process lifetime only.
type MemoryAccounts struct {
	mu       sync.RWMutex
	accounts map[string]repository.Account
}

// NewMemoryAccounts creates an empty in-memory account store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		accounts: make(map[string]repository.Account),
	}
}

// Create implements AccountStore.
func (m *MemoryAccounts) Create(ctx context.Context, name, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[name]; exists {
		return fmt.Errorf("%w: %s", repository.ErrAccountExists, name)
	}
	m.accounts[name] = repository.Account{
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	return nil
}

// GetByName implements AccountStore.
func (m *MemoryAccounts) GetByName(ctx context.Context, name string) (*repository.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrAccountNotFound, name)
	}
	out := acc
	return &out, nil
}

// UpdatePassword implements AccountStore.
func (m *MemoryAccounts) UpdatePassword(ctx context.Context, name, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[name]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrAccountNotFound, name)
	}
	acc.PasswordHash = passwordHash
	m.accounts[name] = acc
	return nil
}
