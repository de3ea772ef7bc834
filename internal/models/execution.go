package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Error codes carried by ExecutionResult. These are returned, never thrown.
const (
	ErrPolicyRejected      = "PolicyRejected"
	ErrPoolUnavailable     = "PoolUnavailable"
	ErrPoolIlliquid        = "PoolIlliquid"
	ErrAmountTooSmall      = "AmountTooSmall"
	ErrPriceImpactExceeded = "PriceImpactExceeded"
	ErrApprovalFailed      = "ApprovalFailed"
	ErrSwapReverted        = "SwapReverted"
	ErrWalletUnavailable   = "WalletUnavailable"
)

// ExecutionError is the structured failure half of an ExecutionResult.
// TimedOut distinguishes "stopped waiting for a confirmation" from an
// on-chain revert; a timed-out transaction may still land.
type ExecutionError struct {
	Code     string `json:"code"`
	Reason   string `json:"reason"`
	TimedOut bool   `json:"timedOut,omitempty"`
}

func (e *ExecutionError) Error() string {
	return e.Code + ": " + e.Reason
}

// ExecutionResult is the outcome of one execution attempt.
type ExecutionResult struct {
	AttemptID       string          `json:"attemptId"`
	Success         bool            `json:"success"`
	TxHash          string          `json:"txHash,omitempty"`
	GasUsed         uint64          `json:"gasUsed,omitempty"`
	ActualAmountIn  *big.Int        `json:"actualAmountIn,omitempty"`
	ActualAmountOut *big.Int        `json:"actualAmountOut,omitempty"`
	Err             *ExecutionError `json:"error,omitempty"`
}

// PoolReserves is a read-only snapshot borrowed from the pool contract for
// one planning attempt. Never cached across attempts.
type PoolReserves struct {
	Reserve0      *big.Int
	Reserve1      *big.Int
	Token0        common.Address
	IsToken0Native bool
}

// SwapPlan is the transient product of the Evaluating phase; it lives for
// exactly one execution attempt.
type SwapPlan struct {
	InputToken   common.Address
	OutputToken  common.Address
	InputNative  bool
	AmountIn     *big.Int
	RequiredIn   *big.Int
	AmountOut    *big.Int
	AmountOutMin *big.Int
	PoolAddress  common.Address
	Amount0Out   *big.Int
	Amount1Out   *big.Int
}

// TxReceipt is the subset of an on-chain receipt the engine needs.
type TxReceipt struct {
	Status  uint64
	GasUsed uint64
}

// ExecutionRecord is the persisted row for one attempt that reached the
// submission phase (or was rejected after planning).
type ExecutionRecord struct {
	ID          int64     `json:"id"`
	AttemptID   string    `json:"attemptId"`
	Timestamp   time.Time `json:"timestamp"`
	TradingDay  string    `json:"tradingDay"`
	UserAddress string    `json:"userAddress"`
	Action      string    `json:"action"`
	InputToken  string    `json:"inputToken"`
	OutputToken string    `json:"outputToken"`
	AmountIn    string    `json:"amountIn"`
	AmountOut   string    `json:"amountOut"`
	TxHash      *string   `json:"txHash,omitempty"`
	GasUsed     *int64    `json:"gasUsed,omitempty"`
	Success     bool      `json:"success"`
	ErrorCode   *string   `json:"errorCode,omitempty"`
	ErrorReason *string   `json:"errorReason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExecutionStats aggregates execution history.
type ExecutionStats struct {
	TotalAttempts int64      `json:"totalAttempts"`
	Confirmed     int64      `json:"confirmed"`
	Failed        int64      `json:"failed"`
	FirstAttempt  *time.Time `json:"firstAttempt"`
	LastAttempt   *time.Time `json:"lastAttempt"`
}

// CompletionNote is the outbound completion notification payload.
type CompletionNote struct {
	Success   bool   `json:"success"`
	TxHash    string `json:"txHash"`
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
	GasUsed   uint64 `json:"gasUsed"`
	Timestamp string `json:"timestamp"`
}
