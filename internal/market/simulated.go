package market

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/finrl-desk/internal/models"
)

// SimulatedFeed generates random quotes for a fixed company list
type SimulatedFeed struct {
	companies []Company
	mu        sync.Mutex
	rng       *rand.Rand
}

// NewSimulatedFeed creates a feed over the given companies, or the
// default list when none are given
func NewSimulatedFeed(companies ...Company) *SimulatedFeed {
	if len(companies) == 0 {
		companies = DefaultCompanies
	}
	return &SimulatedFeed{
		companies: companies,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Name returns the feed name
func (f *SimulatedFeed) Name() string {
	return "simulated"
}

// Snapshot returns a fresh random quote per company
func (f *SimulatedFeed) Snapshot(ctx context.Context) ([]models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	quotes := make([]models.Quote, 0, len(f.companies))
	for _, c := range f.companies {
		quotes = append(quotes, models.Quote{
			Symbol: c.Symbol,
			Name:   c.Name,
			Price:  round2(f.rng.Float64()*500 + 100),
			Change: round2(f.rng.Float64()*10 - 5),
			Volume: fmt.Sprintf("%.1fM", f.rng.Float64()*100),
		})
	}
	return quotes, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
