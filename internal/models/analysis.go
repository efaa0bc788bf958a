package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TradingAction is the recommended action produced by scoring
type TradingAction string

const (
	ActionBuy  TradingAction = "BUY"
	ActionSell TradingAction = "SELL"
	ActionHold TradingAction = "HOLD"
)

// TradingActions lists every valid action
var TradingActions = []TradingAction{ActionBuy, ActionSell, ActionHold}

// Valid reports whether a is one of BUY, SELL or HOLD
func (a TradingAction) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// ChartSeries holds the plotted series attached to an analysis
type ChartSeries struct {
	PriceChart       []float64 `json:"price_chart"`
	EquityCurve      []float64 `json:"equity_curve"`
	Drawdown         []float64 `json:"drawdown"`
	RiskDistribution []float64 `json:"risk_distribution"`
}

// AnalysisMetrics is the scoring output for one ticker and input text
type AnalysisMetrics struct {
	SentimentFactor     float64       `json:"sentiment_factor"`
	RiskFactor          float64       `json:"risk_factor"`
	RecommendationScore int           `json:"recommendation_score"`
	RiskScore           int           `json:"risk_score"`
	TradingAction       TradingAction `json:"trading_action"`
	Confidence          float64       `json:"confidence"`
	PortfolioAllocation string        `json:"portfolio_allocation"`
	Charts              ChartSeries   `json:"charts"`
}

// Value stores metrics as a JSON document
func (m AnalysisMetrics) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan reads metrics from a JSON document
func (m *AnalysisMetrics) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*m = AnalysisMetrics{}
		return nil
	default:
		return errors.New("unsupported type for analysis metrics")
	}
	return json.Unmarshal(data, m)
}

// AnalysisRecord is an immutable, persisted analysis result
type AnalysisRecord struct {
	ID        string          `gorm:"primaryKey;size:32" json:"id"`
	OwnerID   string          `gorm:"index;size:64;not null" json:"owner_id"`
	Ticker    string          `gorm:"size:32" json:"ticker"`
	InputText string          `gorm:"type:text" json:"input_text"`
	Metrics   AnalysisMetrics `gorm:"type:jsonb" json:"metrics"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AnalysisRecord model
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// RecordWithOwner is an analysis record joined with its owner's email
type RecordWithOwner struct {
	AnalysisRecord
	OwnerEmail string `json:"owner_email"`
}

// UnknownOwner is reported for records whose owner no longer exists
const UnknownOwner = "Unknown"
