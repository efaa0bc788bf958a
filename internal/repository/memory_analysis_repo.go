package repository

import (
	"context"
	"sync"

	"github.com/finrl-desk/internal/models"
)

// MemoryAnalysisRepository keeps analysis records in an append-only slice
type MemoryAnalysisRepository struct {
	mu      sync.RWMutex
	records []models.AnalysisRecord
}

// NewMemoryAnalysisRepository creates an empty MemoryAnalysisRepository
func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{}
}

// Append adds a record to the end of the sequence
func (r *MemoryAnalysisRepository) Append(_ context.Context, record *models.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, *record)
	return nil
}

// ListByOwner returns the owner's records, newest first
func (r *MemoryAnalysisRepository) ListByOwner(_ context.Context, ownerID string) ([]models.AnalysisRecord, error) {
	r.mu.RLock()
	result := make([]models.AnalysisRecord, 0)
	for i := range r.records {
		if r.records[i].OwnerID == ownerID {
			result = append(result, r.records[i])
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(result)
	return result, nil
}

// ListAll returns every record, newest first
func (r *MemoryAnalysisRepository) ListAll(_ context.Context) ([]models.AnalysisRecord, error) {
	r.mu.RLock()
	result := make([]models.AnalysisRecord, len(r.records))
	copy(result, r.records)
	r.mu.RUnlock()

	sortNewestFirst(result)
	return result, nil
}
