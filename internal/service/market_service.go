package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finrl-desk/internal/market"
	"github.com/finrl-desk/internal/models"
)

const snapshotKey = "snapshot"

// MarketService forwards quote snapshots from the market feed, caching
// each snapshot for a short TTL
type MarketService struct {
	feed   market.Feed
	cache  market.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewMarketService creates a new MarketService. A zero ttl disables caching.
func NewMarketService(feed market.Feed, cache market.Cache, ttl time.Duration, logger *zap.Logger) *MarketService {
	return &MarketService{
		feed:   feed,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Snapshot returns the current quotes
func (s *MarketService) Snapshot(ctx context.Context) ([]models.Quote, error) {
	if s.cache != nil && s.ttl > 0 {
		quotes, err := s.cache.Get(ctx, snapshotKey)
		if err == nil {
			return quotes, nil
		}
		if !errors.Is(err, market.ErrCacheMiss) {
			// cache trouble never blocks the feed
			s.logger.Warn("Market cache read failed", zap.Error(err))
		}
	}

	quotes, err := s.feed.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Market feed failed", zap.String("feed", s.feed.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMarketUnavailable, err)
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, snapshotKey, quotes, s.ttl); err != nil {
			s.logger.Warn("Market cache write failed", zap.Error(err))
		}
	}

	return quotes, nil
}

// FeedName returns the name of the underlying feed
func (s *MarketService) FeedName() string {
	return s.feed.Name()
}
