package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/finrl-desk/internal/models"
)

const (
	chartPoints        = 30
	riskBuckets        = 10
	priceChartStart    = 150.0
	equityCurveStart   = 10000.0
	minConfidence      = 60.0
	confidenceSpread   = 40.0
	minAllocationPct   = 5.0
	allocationSpreadPc = 20.0
)

// SimulatedScorer produces random metrics with the same ranges as the
// production model. It ignores its inputs.
type SimulatedScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedScorer creates a SimulatedScorer with a random seed
func NewSimulatedScorer() *SimulatedScorer {
	return &SimulatedScorer{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededScorer creates a deterministic SimulatedScorer
func NewSeededScorer(seed uint64) *SimulatedScorer {
	return &SimulatedScorer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Score generates a metrics set
func (s *SimulatedScorer) Score(ctx context.Context, _, _ string) (*models.AnalysisMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.rng
	metrics := &models.AnalysisMetrics{
		SentimentFactor:     round2(r.Float64()*2 - 1),
		RiskFactor:          round2(r.Float64()),
		RecommendationScore: r.IntN(5) + 1,
		RiskScore:           r.IntN(5) + 1,
		TradingAction:       models.TradingActions[r.IntN(len(models.TradingActions))],
		Confidence:          round2(r.Float64()*confidenceSpread + minConfidence),
		PortfolioAllocation: fmt.Sprintf("%.1f%% of LP", r.Float64()*allocationSpreadPc+minAllocationPct),
		Charts:              s.charts(),
	}
	return metrics, nil
}

func (s *SimulatedScorer) charts() models.ChartSeries {
	drawdown := s.randomWalk(chartPoints, 0)
	for i, v := range drawdown {
		drawdown[i] = math.Min(0, v)
	}

	risk := make([]float64, riskBuckets)
	for i := range risk {
		risk[i] = s.rng.Float64() * 10
	}

	return models.ChartSeries{
		PriceChart:       s.randomWalk(chartPoints, priceChartStart),
		EquityCurve:      s.randomWalk(chartPoints, equityCurveStart),
		Drawdown:         drawdown,
		RiskDistribution: risk,
	}
}

// randomWalk steps by up to ±1 per point
func (s *SimulatedScorer) randomWalk(n int, start float64) []float64 {
	series := make([]float64, n)
	current := start
	for i := range series {
		current += (s.rng.Float64() - 0.5) * 2
		series[i] = round2(current)
	}
	return series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
