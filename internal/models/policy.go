package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PolicyConfig is the single per-user gate consulted before any automated or
// manual execution. Spend limits are base-unit integers of the input token.
// A zero MaxDailyLossPct disables the loss check.
type PolicyConfig struct {
	Enabled         bool                            `json:"enabled"`
	MinConfidence   int                             `json:"minConfidence"`
	MaxDailyTrades  int                             `json:"maxDailyTrades"`
	MaxDailyLossPct float64                         `json:"maxDailyLossPct"`
	MaxDailySpend   *big.Int                        `json:"maxDailySpend"`
	MaxSingleTrade  *big.Int                        `json:"maxSingleTrade"`
	ApprovedTokens  map[common.Address]*big.Int     `json:"approvedTokens"`
}

// TokenApproved reports whether the token is in the approved set and, if so,
// its per-token allowance cap.
func (c *PolicyConfig) TokenApproved(token common.Address) (*big.Int, bool) {
	if c.ApprovedTokens == nil {
		return nil, false
	}
	limit, ok := c.ApprovedTokens[token]
	return limit, ok
}

// DailyBudgetState tracks one user's spend for the current trading day.
// DailyLossPct is carried for the loss-limit gate but is never computed
// until a valuation feed exists; it stays zero.
type DailyBudgetState struct {
	DailySpent   *big.Int `json:"dailySpent"`
	TradeCount   int      `json:"tradeCount"`
	LastResetDay string   `json:"lastResetDay"`
	DailyLossPct float64  `json:"dailyLossPct"`
}
