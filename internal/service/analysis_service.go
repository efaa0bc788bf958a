package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finrl-desk/internal/metrics"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/internal/scoring"
	"github.com/finrl-desk/pkg/keygen"
)

// DefaultScoringTimeout bounds a scoring call when none is configured
const DefaultScoringTimeout = 10 * time.Second

// AnalysisService is the analysis pipeline: it scores a request and
// persists the resulting record
type AnalysisService struct {
	recordRepo repository.AnalysisRepository
	scorer     scoring.Scorer
	ids        *keygen.RecordIDGenerator
	timeout    time.Duration
	logger     *zap.Logger
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(
	recordRepo repository.AnalysisRepository,
	scorer scoring.Scorer,
	ids *keygen.RecordIDGenerator,
	timeout time.Duration,
	logger *zap.Logger,
) *AnalysisService {
	if timeout <= 0 {
		timeout = DefaultScoringTimeout
	}
	if ids == nil {
		ids = keygen.NewRecordIDGenerator()
	}
	return &AnalysisService{
		recordRepo: recordRepo,
		scorer:     scorer,
		ids:        ids,
		timeout:    timeout,
		logger:     logger,
	}
}

// AnalyzeRequest represents the analysis request. NewsText is the legacy
// field name for Text.
type AnalyzeRequest struct {
	Ticker   string `json:"ticker"`
	Text     string `json:"text"`
	NewsText string `json:"news_text"`
}

// InputText returns the submitted text, preferring the text field
func (r *AnalyzeRequest) InputText() string {
	if r.Text != "" {
		return r.Text
	}
	return r.NewsText
}

// Submit scores the input and stores a new record. Empty ticker or text
// is accepted. Scoring errors and timeouts return ErrScoringFailed and
// nothing is stored.
func (s *AnalysisService) Submit(ctx context.Context, ownerID, ticker, inputText string) (*models.AnalysisRecord, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.score(scoreCtx, ticker, inputText)
	metrics.ObserveScoring(time.Since(start), err)
	if err != nil {
		s.logger.Warn("Scoring failed",
			zap.String("owner_id", ownerID),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty result", ErrScoringFailed)
	}

	id, createdAt := s.ids.Next()
	record := &models.AnalysisRecord{
		ID:        id,
		OwnerID:   ownerID,
		Ticker:    ticker,
		InputText: inputText,
		Metrics:   *result,
		CreatedAt: createdAt,
	}

	if err := s.recordRepo.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	s.logger.Info("Analysis stored",
		zap.String("record_id", record.ID),
		zap.String("owner_id", ownerID),
		zap.String("ticker", ticker),
		zap.String("action", string(record.Metrics.TradingAction)),
	)
	return record, nil
}

type scoreResult struct {
	metrics *models.AnalysisMetrics
	err     error
}

// score returns when the scorer does or when ctx is done, whichever is
// first. A scorer that ignores ctx keeps running in its goroutine and its
// late result is dropped.
func (s *AnalysisService) score(ctx context.Context, ticker, inputText string) (*models.AnalysisMetrics, error) {
	done := make(chan scoreResult, 1)
	go func() {
		m, err := s.scorer.Score(ctx, ticker, inputText)
		done <- scoreResult{metrics: m, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return r.metrics, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// History returns the owner's records, newest first
func (s *AnalysisService) History(ctx context.Context, ownerID string) ([]models.AnalysisRecord, error) {
	records, err := s.recordRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
