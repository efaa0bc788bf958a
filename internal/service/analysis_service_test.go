package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/internal/scoring"
	"github.com/finrl-desk/pkg/keygen"
)

func newTestAnalysis(scorer scoring.Scorer, timeout time.Duration) (*AnalysisService, *repository.MemoryAnalysisRepository) {
	repo := repository.NewMemoryAnalysisRepository()
	svc := NewAnalysisService(repo, scorer, keygen.NewRecordIDGenerator(), timeout, zap.NewNop())
	return svc, repo
}

func TestAnalysisService_Submit(t *testing.T) {
	svc, repo := newTestAnalysis(scoring.NewSeededScorer(1), time.Second)
	ctx := context.Background()

	record, err := svc.Submit(ctx, "owner-1", "AAPL", "Earnings beat")
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "owner-1", record.OwnerID)
	assert.Equal(t, "AAPL", record.Ticker)
	assert.Equal(t, "Earnings beat", record.InputText)
	assert.True(t, record.Metrics.TradingAction.Valid())
	assert.False(t, record.CreatedAt.IsZero())

	stored, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, record.ID, stored[0].ID)
}

func TestAnalysisService_EmptyInputAccepted(t *testing.T) {
	svc, _ := newTestAnalysis(scoring.NewSeededScorer(2), time.Second)

	record, err := svc.Submit(context.Background(), "owner-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, record.Ticker)
	assert.Empty(t, record.InputText)
}

func TestAnalysisService_ScorerFailureStoresNothing(t *testing.T) {
	failing := scoring.ScorerFunc(func(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
		return nil, errors.New("upstream down")
	})
	svc, repo := newTestAnalysis(failing, time.Second)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "owner-1", "AAPL", "x")
	assert.ErrorIs(t, err, ErrScoringFailed)

	all, _ := repo.ListAll(ctx)
	assert.Empty(t, all)
}

func TestAnalysisService_ScorerTimeout(t *testing.T) {
	slow := scoring.ScorerFunc(func(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc, repo := newTestAnalysis(slow, 20*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	_, err := svc.Submit(ctx, "owner-1", "AAPL", "x")
	assert.ErrorIs(t, err, ErrScoringFailed)
	assert.Less(t, time.Since(start), time.Second)

	all, _ := repo.ListAll(ctx)
	assert.Empty(t, all)
}

func TestAnalysisService_ScorerIgnoresDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stubborn := scoring.ScorerFunc(func(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
		select {
		case <-release:
		case <-time.After(300 * time.Millisecond):
		}
		return &models.AnalysisMetrics{TradingAction: models.ActionBuy}, nil
	})
	svc, repo := newTestAnalysis(stubborn, 20*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	record, err := svc.Submit(ctx, "owner-1", "AAPL", "x")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrScoringFailed)
	assert.Nil(t, record)
	assert.Less(t, elapsed, 200*time.Millisecond)

	all, _ := repo.ListAll(ctx)
	assert.Empty(t, all)
}

func TestAnalysisService_NilResult(t *testing.T) {
	empty := scoring.ScorerFunc(func(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
		return nil, nil
	})
	svc, _ := newTestAnalysis(empty, time.Second)

	_, err := svc.Submit(context.Background(), "owner-1", "AAPL", "x")
	assert.ErrorIs(t, err, ErrScoringFailed)
}

func TestAnalysisService_HistoryNewestFirst(t *testing.T) {
	svc, _ := newTestAnalysis(scoring.NewSeededScorer(3), time.Second)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "owner-1", "AAPL", "one")
	require.NoError(t, err)
	second, err := svc.Submit(ctx, "owner-1", "MSFT", "two")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "owner-2", "TSLA", "other")
	require.NoError(t, err)

	history, err := svc.History(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	empty, err := svc.History(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAnalysisService_ConcurrentSubmitUniqueIDs(t *testing.T) {
	svc, repo := newTestAnalysis(scoring.NewSeededScorer(4), time.Second)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, "owner-1", "AAPL", "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, n)

	seen := make(map[string]bool, n)
	for _, r := range all {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestAnalyzeRequest_InputText(t *testing.T) {
	assert.Equal(t, "a", (&AnalyzeRequest{Text: "a", NewsText: "b"}).InputText())
	assert.Equal(t, "b", (&AnalyzeRequest{NewsText: "b"}).InputText())
	assert.Empty(t, (&AnalyzeRequest{}).InputText())
}
