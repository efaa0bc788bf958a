package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/pkg/keygen"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateID    = errors.New("duplicate id")
)

// AccountRepository stores login accounts
type AccountRepository interface {
	// Create inserts an account. Fails with ErrDuplicateEmail if the email exists.
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// List returns all accounts in creation order
	List(ctx context.Context) ([]models.Account, error)
	// Delete removes an account. Analysis records are left untouched.
	Delete(ctx context.Context, id string) error
}

// AnalysisRepository is the append-only analysis record store
type AnalysisRepository interface {
	Append(ctx context.Context, record *models.AnalysisRecord) error
	// ListByOwner returns the owner's records, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisRecord, error)
	// ListAll returns every record, newest first
	ListAll(ctx context.Context) ([]models.AnalysisRecord, error)
}

// sortNewestFirst orders records by creation time descending, then by id descending
func sortNewestFirst(records []models.AnalysisRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return keygen.CompareRecordIDs(records[i].ID, records[j].ID) > 0
	})
}

var (
	_ AccountRepository  = (*MemoryAccountRepository)(nil)
	_ AccountRepository  = (*GormAccountRepository)(nil)
	_ AnalysisRepository = (*MemoryAnalysisRepository)(nil)
	_ AnalysisRepository = (*GormAnalysisRepository)(nil)
)
