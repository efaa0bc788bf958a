package repository

import (
	"context"

	"github.com/finrl-desk/internal/models"
	"gorm.io/gorm"
)

// GormAnalysisRepository handles analysis record data access on a SQL database
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GormAnalysisRepository
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// Append inserts a record
func (r *GormAnalysisRepository) Append(ctx context.Context, record *models.AnalysisRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByOwner retrieves the owner's records, newest first
func (r *GormAnalysisRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisRecord, error) {
	records := make([]models.AnalysisRecord, 0)
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// ListAll retrieves every record, newest first
func (r *GormAnalysisRepository) ListAll(ctx context.Context) ([]models.AnalysisRecord, error) {
	records := make([]models.AnalysisRecord, 0)
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// AutoMigrate creates or updates the tables used by the gorm repositories
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.AnalysisRecord{},
	)
}
