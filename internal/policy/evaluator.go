package policy

import (
	"fmt"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// Admit is the single read-only gate over (signal, config, budget).
// It returns false with a human-readable reason on the first failing
// check; it never mutates state and never touches the network.
//
// The daily-loss check degrades to always-pass: DailyLossPct is a stub
// that stays zero until a valuation feed exists, and a zero configured
// limit disables the check entirely.
func Admit(sig *models.TradingSignal, cfg *models.PolicyConfig, budget *models.DailyBudgetState) (bool, string) {
	if cfg == nil || !cfg.Enabled {
		return false, "automated trading disabled"
	}
	if sig.Action == models.ActionHold {
		return false, "hold signal, nothing to execute"
	}
	if sig.Confidence < cfg.MinConfidence {
		return false, fmt.Sprintf("confidence below minimum (%d < %d)", sig.Confidence, cfg.MinConfidence)
	}
	if cfg.MaxDailyTrades > 0 && budget.TradeCount >= cfg.MaxDailyTrades {
		return false, "daily trade limit reached"
	}
	if cfg.MaxDailyLossPct > 0 && budget.DailyLossPct <= -cfg.MaxDailyLossPct {
		return false, fmt.Sprintf("daily loss limit exceeded (%.2f%%)", budget.DailyLossPct)
	}
	return true, ""
}
