// Package market provides quote snapshots for the admin views.
package market

import (
	"context"

	"github.com/finrl-desk/internal/models"
)

// Feed is the external market data collaborator
type Feed interface {
	// Snapshot returns the current quotes
	Snapshot(ctx context.Context) ([]models.Quote, error)
	// Name returns the feed name
	Name() string
}

// Company is a tracked listing
type Company struct {
	Symbol string
	Name   string
}

// DefaultCompanies are the listings shown on the admin dashboard
var DefaultCompanies = []Company{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corp."},
	{Symbol: "GOOGL", Name: "Alphabet Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "NVDA", Name: "NVIDIA Corp."},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "AMD", Name: "Advanced Micro Devices"},
}
