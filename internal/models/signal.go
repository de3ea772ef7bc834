package models

// Signal actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// Risk tiers.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// TradingSignal is a normalized buy/sell/hold recommendation from the
// analysis collaborator. Amount is a human-readable quantity of the input
// token; Confidence is 0-100.
type TradingSignal struct {
	Action         string   `json:"action"`
	Token          string   `json:"token"`
	CounterToken   string   `json:"counterToken"`
	Amount         float64  `json:"amount"`
	Confidence     int      `json:"confidence"`
	RiskAssessment string   `json:"riskAssessment"`
	ExpectedReturn float64  `json:"expectedReturn"`
	Reasoning      string   `json:"reasoning"`
	StopLoss       *float64 `json:"stopLoss,omitempty"`
	TakeProfit     *float64 `json:"takeProfit,omitempty"`
}
