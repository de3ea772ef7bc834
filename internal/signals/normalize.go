package signals

import (
	"fmt"
	"strings"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

const defaultConfidence = 50

// Normalizer coerces arbitrary upstream output into a well-formed signal.
// Known is the closed set of tradable symbols; unknown symbols fall back
// to the configured defaults.
type Normalizer struct {
	Known          func(symbol string) bool
	DefaultToken   string
	DefaultCounter string
}

func NewNormalizer(known func(string) bool, defaultToken, defaultCounter string) *Normalizer {
	return &Normalizer{
		Known:          known,
		DefaultToken:   defaultToken,
		DefaultCounter: defaultCounter,
	}
}

// Normalize never rejects: every malformed field degrades to a safe value,
// and an unrecognized action degrades the whole signal to a hold.
func (n *Normalizer) Normalize(raw *RawSignal) *models.TradingSignal {
	sig := &models.TradingSignal{
		Action:         strings.ToLower(strings.TrimSpace(raw.Action)),
		Token:          strings.ToUpper(strings.TrimSpace(raw.Token)),
		CounterToken:   strings.ToUpper(strings.TrimSpace(raw.CounterToken)),
		Amount:         raw.Amount,
		RiskAssessment: strings.ToLower(strings.TrimSpace(raw.RiskAssessment)),
		ExpectedReturn: raw.ExpectedReturn,
		Reasoning:      raw.Reasoning,
		StopLoss:       raw.StopLoss,
		TakeProfit:     raw.TakeProfit,
	}

	switch sig.Action {
	case models.ActionBuy, models.ActionSell, models.ActionHold:
	default:
		fmt.Printf("[SIGNAL] Unknown action %q, degrading to hold\n", raw.Action)
		sig.Action = models.ActionHold
	}

	if raw.Confidence == nil {
		sig.Confidence = defaultConfidence
	} else {
		sig.Confidence = *raw.Confidence
	}
	if sig.Confidence < 0 {
		sig.Confidence = 0
	}
	if sig.Confidence > 100 {
		sig.Confidence = 100
	}

	switch sig.RiskAssessment {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	default:
		sig.RiskAssessment = models.RiskMedium
	}

	if sig.Token == "" || (n.Known != nil && !n.Known(sig.Token)) {
		if sig.Token != "" {
			fmt.Printf("[SIGNAL] Unknown token %q, using %s\n", sig.Token, n.DefaultToken)
		}
		sig.Token = n.DefaultToken
	}
	if sig.CounterToken == "" || (n.Known != nil && !n.Known(sig.CounterToken)) {
		sig.CounterToken = n.DefaultCounter
	}

	if sig.Amount < 0 {
		sig.Amount = 0
	}

	return sig
}
