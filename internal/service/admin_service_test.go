package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/market"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/internal/scoring"
	"github.com/finrl-desk/pkg/keygen"
)

type adminFixture struct {
	auth     *AuthService
	analysis *AnalysisService
	admin    *AdminService
}

func newAdminFixture(t *testing.T, feed market.Feed) *adminFixture {
	t.Helper()
	auth, _ := newTestAuth(t, "admin@finrl.ai")
	records := repository.NewMemoryAnalysisRepository()
	analysis := NewAnalysisService(records, scoring.NewSeededScorer(7), keygen.NewRecordIDGenerator(), time.Second, zap.NewNop())
	marketSvc := NewMarketService(feed, market.NewMemoryCache(), time.Minute, zap.NewNop())
	return &adminFixture{
		auth:     auth,
		analysis: analysis,
		admin:    NewAdminService(auth, records, marketSvc),
	}
}

func TestAdminService_AllAccountsRedacted(t *testing.T) {
	f := newAdminFixture(t, market.NewSimulatedFeed())
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, "admin@finrl.ai", "pw")
	require.NoError(t, err)

	accounts, err := f.admin.AllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a@x.com", accounts[0].Email)
	assert.Equal(t, models.RoleUser, accounts[0].Role)
	assert.Equal(t, models.RoleAdmin, accounts[1].Role)
}

func TestAdminService_RecordsJoinOwnerEmail(t *testing.T) {
	f := newAdminFixture(t, market.NewSimulatedFeed())
	ctx := context.Background()

	a, err := f.auth.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	b, err := f.auth.Register(ctx, "b@x.com", "pw")
	require.NoError(t, err)

	ra, err := f.analysis.Submit(ctx, a.ID, "AAPL", "x")
	require.NoError(t, err)
	rb, err := f.analysis.Submit(ctx, b.ID, "TSLA", "y")
	require.NoError(t, err)

	records, err := f.admin.AllRecordsWithOwnerEmail(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, rb.ID, records[0].ID)
	assert.Equal(t, "b@x.com", records[0].OwnerEmail)
	assert.Equal(t, ra.ID, records[1].ID)
	assert.Equal(t, "a@x.com", records[1].OwnerEmail)

	// records outlive their owner
	require.NoError(t, f.admin.DeleteAccount(ctx, b.ID))

	records, err = f.admin.AllRecordsWithOwnerEmail(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.UnknownOwner, records[0].OwnerEmail)
	assert.Equal(t, "a@x.com", records[1].OwnerEmail)
}

func TestAdminService_DeleteUnknown(t *testing.T) {
	f := newAdminFixture(t, market.NewSimulatedFeed())
	assert.ErrorIs(t, f.admin.DeleteAccount(context.Background(), "missing"), ErrAccountNotFound)
}

type countingFeed struct {
	calls int
	err   error
}

func (f *countingFeed) Name() string { return "counting" }

func (f *countingFeed) Snapshot(ctx context.Context) ([]models.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Quote{{Symbol: "AAPL", Name: "Apple Inc.", Price: 150, Change: 1.5, Volume: "10.0M"}}, nil
}

func TestAdminService_MarketSnapshotCached(t *testing.T) {
	feed := &countingFeed{}
	f := newAdminFixture(t, feed)
	ctx := context.Background()

	first, err := f.admin.MarketSnapshot(ctx)
	require.NoError(t, err)
	second, err := f.admin.MarketSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, feed.calls)
}

func TestMarketService_FeedFailure(t *testing.T) {
	feed := &countingFeed{err: errors.New("feed offline")}
	svc := NewMarketService(feed, market.NewMemoryCache(), time.Minute, zap.NewNop())

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrMarketUnavailable)
}

func TestMarketService_NoCache(t *testing.T) {
	feed := &countingFeed{}
	svc := NewMarketService(feed, nil, 0, zap.NewNop())

	for i := 0; i < 3; i++ {
		quotes, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Len(t, quotes, 1)
	}
	assert.Equal(t, 3, feed.calls)
	assert.Equal(t, "counting", svc.FeedName())
}
