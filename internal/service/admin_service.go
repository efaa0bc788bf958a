package service

import (
	"context"
	"fmt"

	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
)

// AdminService joins accounts, records and market data for operator views.
// It only reads, except DeleteAccount which forwards to the credential store.
type AdminService struct {
	auth       *AuthService
	recordRepo repository.AnalysisRepository
	market     *MarketService
}

// NewAdminService creates a new AdminService
func NewAdminService(auth *AuthService, recordRepo repository.AnalysisRepository, market *MarketService) *AdminService {
	return &AdminService{
		auth:       auth,
		recordRepo: recordRepo,
		market:     market,
	}
}

// AllAccounts returns every account, redacted
func (s *AdminService) AllAccounts(ctx context.Context) ([]models.AccountResponse, error) {
	accounts, err := s.auth.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.ToAccountResponses(accounts), nil
}

// AllRecordsWithOwnerEmail left-joins every record to its owner's email.
// Records of deleted accounts report UnknownOwner.
func (s *AdminService) AllRecordsWithOwnerEmail(ctx context.Context) ([]models.RecordWithOwner, error) {
	records, err := s.recordRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	accounts, err := s.auth.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	emails := make(map[string]string, len(accounts))
	for _, a := range accounts {
		emails[a.ID] = a.Email
	}

	result := make([]models.RecordWithOwner, 0, len(records))
	for _, r := range records {
		email, ok := emails[r.OwnerID]
		if !ok {
			email = models.UnknownOwner
		}
		result = append(result, models.RecordWithOwner{AnalysisRecord: r, OwnerEmail: email})
	}
	return result, nil
}

// MarketSnapshot returns the current quotes from the market feed
func (s *AdminService) MarketSnapshot(ctx context.Context) ([]models.Quote, error) {
	return s.market.Snapshot(ctx)
}

// DeleteAccount removes an account without touching its records
func (s *AdminService) DeleteAccount(ctx context.Context, id string) error {
	return s.auth.Delete(ctx, id)
}
