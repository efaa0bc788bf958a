package repository

import (
	"context"
	"sync"

	"github.com/finrl-desk/internal/models"
)

// MemoryAccountRepository keeps accounts in process memory
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts []models.Account
}

// NewMemoryAccountRepository creates an empty MemoryAccountRepository
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{}
}

// Create appends the account unless its email or id is taken
func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.accounts {
		if r.accounts[i].Email == account.Email {
			return ErrDuplicateEmail
		}
	}
	for i := range r.accounts {
		if r.accounts[i].ID == account.ID {
			return ErrDuplicateID
		}
	}

	r.accounts = append(r.accounts, *account)
	return nil
}

// GetByID retrieves an account by ID
func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		if r.accounts[i].ID == id {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, ErrNotFound
}

// GetByEmail retrieves an account by exact email match
func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		if r.accounts[i].Email == email {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, ErrNotFound
}

// List returns a copy of all accounts
func (r *MemoryAccountRepository) List(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Account, len(r.accounts))
	copy(result, r.accounts)
	return result, nil
}

// Delete removes an account by ID
func (r *MemoryAccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.accounts {
		if r.accounts[i].ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
