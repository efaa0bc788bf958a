// Package scoring turns a ticker and free text into analysis metrics.
package scoring

import (
	"context"

	"github.com/finrl-desk/internal/models"
)

// Scorer is the external scoring collaborator. Implementations may be
// stochastic; callers bound the call with the context deadline.
type Scorer interface {
	Score(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error)
}

// ScorerFunc adapts a function to Scorer
type ScorerFunc func(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error)

// Score calls f
func (f ScorerFunc) Score(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
	return f(ctx, ticker, text)
}
