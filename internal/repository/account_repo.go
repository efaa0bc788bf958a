package repository

import (
	"context"
	"errors"

	"github.com/finrl-desk/internal/models"
	"gorm.io/gorm"
)

// GormAccountRepository handles account data access on a SQL database.
// The *gorm.DB should be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create creates a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *models.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// id collisions are not expected; treat every unique violation as the email index
		return ErrDuplicateEmail
	}
	return err
}

// GetByID retrieves an account by ID
func (r *GormAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetByEmail retrieves an account by email
func (r *GormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// List retrieves all accounts in creation order
func (r *GormAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// Delete permanently deletes an account
func (r *GormAccountRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
