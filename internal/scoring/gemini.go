package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/finrl-desk/internal/config"
	"github.com/finrl-desk/internal/models"
)

// TextGenerator produces model output for a prompt
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiScorer asks a Gemini model for the scalar metrics and fills the
// chart series from the simulated generator.
type GeminiScorer struct {
	generator TextGenerator
	limiter   *rate.Limiter
	charts    *SimulatedScorer
	logger    *zap.Logger
}

// NewGeminiScorer creates a GeminiScorer over a text generator.
// requestsPerMinute <= 0 disables throttling.
func NewGeminiScorer(generator TextGenerator, requestsPerMinute int, logger *zap.Logger) *GeminiScorer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &GeminiScorer{
		generator: generator,
		limiter:   limiter,
		charts:    NewSimulatedScorer(),
		logger:    logger,
	}
}

// Score requests metrics from the model
func (s *GeminiScorer) Score(ctx context.Context, ticker, text string) (*models.AnalysisMetrics, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for request limit: %w", err)
	}

	output, err := s.generator.GenerateContent(ctx, BuildScorePrompt(ticker, text))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	metrics, err := ParseScoreResponse(output)
	if err != nil {
		s.logger.Warn("Unparseable scoring response", zap.String("ticker", ticker), zap.Error(err))
		return nil, err
	}

	s.charts.mu.Lock()
	metrics.Charts = s.charts.charts()
	s.charts.mu.Unlock()

	return metrics, nil
}

// BuildScorePrompt creates the scoring prompt for a ticker and news text
func BuildScorePrompt(ticker, text string) string {
	return fmt.Sprintf(`You are a financial news sentiment analyst.
Assess the following news for the stock %s and reply with a single JSON object with these fields:
- "sentiment_factor": number from -1 (very negative) to 1 (very positive)
- "risk_factor": number from 0 (no risk) to 1 (extreme risk)
- "recommendation_score": integer 1 to 5
- "risk_score": integer 1 to 5
- "trading_action": one of "BUY", "SELL", "HOLD"
- "confidence": percentage from 0 to 100
- "portfolio_allocation": string such as "12.5%% of LP"

News:
%s`, ticker, text)
}

type scoreResponse struct {
	SentimentFactor     float64 `json:"sentiment_factor"`
	RiskFactor          float64 `json:"risk_factor"`
	RecommendationScore int     `json:"recommendation_score"`
	RiskScore           int     `json:"risk_score"`
	TradingAction       string  `json:"trading_action"`
	Confidence          float64 `json:"confidence"`
	PortfolioAllocation string  `json:"portfolio_allocation"`
}

// ParseScoreResponse extracts metrics from model output. Markdown code
// fences around the JSON are tolerated; out-of-range values are rejected.
func ParseScoreResponse(output string) (*models.AnalysisMetrics, error) {
	body := strings.TrimSpace(output)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var resp scoreResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("decode scoring response: %w", err)
	}

	action := models.TradingAction(strings.ToUpper(strings.TrimSpace(resp.TradingAction)))
	switch {
	case !action.Valid():
		return nil, fmt.Errorf("invalid trading action %q", resp.TradingAction)
	case resp.SentimentFactor < -1 || resp.SentimentFactor > 1:
		return nil, errors.New("sentiment_factor out of range")
	case resp.RiskFactor < 0 || resp.RiskFactor > 1:
		return nil, errors.New("risk_factor out of range")
	case resp.RecommendationScore < 1 || resp.RecommendationScore > 5:
		return nil, errors.New("recommendation_score out of range")
	case resp.RiskScore < 1 || resp.RiskScore > 5:
		return nil, errors.New("risk_score out of range")
	case resp.Confidence < 0 || resp.Confidence > 100:
		return nil, errors.New("confidence out of range")
	}

	return &models.AnalysisMetrics{
		SentimentFactor:     round2(resp.SentimentFactor),
		RiskFactor:          round2(resp.RiskFactor),
		RecommendationScore: resp.RecommendationScore,
		RiskScore:           resp.RiskScore,
		TradingAction:       action,
		Confidence:          round2(resp.Confidence),
		PortfolioAllocation: resp.PortfolioAllocation,
	}, nil
}

// GenAIGenerator calls the Gemini API through the genai SDK
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini API text generator
func NewGenAIGenerator(ctx context.Context, cfg config.GeminiConfig) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GenAIGenerator{client: client, model: cfg.Model}, nil
}

// GenerateContent requests a JSON response for the prompt
func (g *GenAIGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no content generated")
	}
	return sb.String(), nil
}

var (
	_ Scorer        = (*SimulatedScorer)(nil)
	_ Scorer        = (*GeminiScorer)(nil)
	_ TextGenerator = (*GenAIGenerator)(nil)
)
