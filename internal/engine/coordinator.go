package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/aslanlabs/aslan-auto-trader/internal/amm"
	"github.com/aslanlabs/aslan-auto-trader/internal/ethereum"
	"github.com/aslanlabs/aslan-auto-trader/internal/models"
	"github.com/aslanlabs/aslan-auto-trader/internal/policy"
)

// Chain is the on-chain surface one execution attempt needs.
type Chain interface {
	Wallet() common.Address
	HasSigner() bool
	Reserves(ctx context.Context, pool common.Address) (*models.PoolReserves, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (string, error)
	Swap(ctx context.Context, pool common.Address, amount0Out, amount1Out *big.Int, recipient common.Address, value *big.Int) (string, error)
	WaitMined(ctx context.Context, txHash string) (*models.TxReceipt, error)
}

// AutomationChecker reports the vault-side enablement flag; the unified
// gate requires both it and the policy flag (AND semantics).
type AutomationChecker interface {
	AutomationEnabled(ctx context.Context, user common.Address) (bool, error)
}

// Recorder persists execution attempts. Nil disables persistence.
type Recorder interface {
	Record(ctx context.Context, rec *models.ExecutionRecord) (*models.ExecutionRecord, error)
}

// Notifier pushes operator-facing events. Nil disables notifications.
type Notifier interface {
	Send(msg string)
	SendCompletion(note models.CompletionNote)
}

// Execution states. Every attempt starts Evaluating and ends back at idle
// in exactly one of Rejected, Confirmed or Failed.
type state int

const (
	stateIdle state = iota
	stateEvaluating
	stateRejected
	stateApproving
	stateSwapping
	stateConfirmed
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateEvaluating:
		return "Evaluating"
	case stateRejected:
		return "Rejected"
	case stateApproving:
		return "Approving"
	case stateSwapping:
		return "Swapping"
	case stateConfirmed:
		return "Confirmed"
	case stateFailed:
		return "Failed"
	}
	return "Unknown"
}

// Coordinator drives one execution attempt through evaluate, optional
// approve, swap and confirm. Attempts for the same user are serialized by
// a per-user lock so the admit check and the post-confirmation budget
// increment are atomic relative to any concurrent attempt.
type Coordinator struct {
	resolver *amm.Resolver
	tokens   *TokenBook
	policies *policy.Store
	budget   *policy.Tracker
	vault    AutomationChecker
	chain    Chain
	recorder Recorder
	notify   Notifier

	slippageBps int

	mu    sync.Mutex
	locks map[common.Address]*sync.Mutex
}

func NewCoordinator(
	resolver *amm.Resolver,
	tokens *TokenBook,
	policies *policy.Store,
	budget *policy.Tracker,
	vault AutomationChecker,
	chain Chain,
	recorder Recorder,
	notify Notifier,
	slippageBps int,
) *Coordinator {
	return &Coordinator{
		resolver:    resolver,
		tokens:      tokens,
		policies:    policies,
		budget:      budget,
		vault:       vault,
		chain:       chain,
		recorder:    recorder,
		notify:      notify,
		slippageBps: slippageBps,
		locks:       make(map[common.Address]*sync.Mutex),
	}
}

// Execute runs one gated execution attempt for the user. Failures are
// returned as structured results, never as errors; there is no automatic
// retry; a re-attempt re-enters evaluation as a fresh, independently
// gated attempt.
func (c *Coordinator) Execute(ctx context.Context, user common.Address, sig *models.TradingSignal) *models.ExecutionResult {
	lock := c.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	attemptID := uuid.NewString()
	fmt.Printf("[ENGINE] Attempt %s: %s -> %s %s %.6f (confidence %d)\n",
		attemptID, stateIdle, stateEvaluating, sig.Action, sig.Amount, sig.Confidence)

	res := c.run(ctx, attemptID, user, sig)
	c.finish(ctx, user, sig, res)
	return res
}

func (c *Coordinator) run(ctx context.Context, attemptID string, user common.Address, sig *models.TradingSignal) *models.ExecutionResult {
	if c.chain == nil || !c.chain.HasSigner() {
		return fail(attemptID, models.ErrWalletUnavailable, "no connected signer")
	}

	// Evaluating: pure gates first, then planning against a fresh
	// reserve snapshot. Nothing here has side effects.
	cfg, ok := c.policies.Get(user)
	if !ok {
		return reject(attemptID, "automation not configured")
	}
	budget := c.budget.Stats(user)
	if ok, reason := policy.Admit(sig, cfg, &budget); !ok {
		return reject(attemptID, reason)
	}

	enabled, err := c.vault.AutomationEnabled(ctx, user)
	if err != nil {
		return reject(attemptID, fmt.Sprintf("unable to verify vault automation: %v", err))
	}
	if !enabled {
		return reject(attemptID, "vault automation disabled")
	}

	plan, eerr := c.plan(ctx, sig, cfg, &budget)
	if eerr != nil {
		return &models.ExecutionResult{AttemptID: attemptID, Err: eerr}
	}

	// Approving: entered only when the pool's current allowance cannot
	// cover the input. Skipped for native input and when the standing
	// allowance already suffices.
	if !plan.InputNative {
		if eerr := c.approve(ctx, attemptID, plan); eerr != nil {
			return &models.ExecutionResult{AttemptID: attemptID, Err: eerr}
		}
	}

	// Swapping: re-check enablement at the submission boundary so an
	// emergency stop issued mid-flight is honored.
	if cfg, ok := c.policies.Get(user); !ok || !cfg.Enabled {
		return reject(attemptID, "emergency stop engaged")
	}

	fmt.Printf("[ENGINE] Attempt %s: %s (pool %s, out %s, min %s)\n",
		attemptID, stateSwapping, plan.PoolAddress.Hex(), plan.AmountOut, plan.AmountOutMin)

	var value *big.Int
	if plan.InputNative {
		value = plan.RequiredIn
	}
	txHash, err := c.chain.Swap(ctx, plan.PoolAddress, plan.Amount0Out, plan.Amount1Out, c.chain.Wallet(), value)
	if err != nil {
		return fail(attemptID, models.ErrSwapReverted, fmt.Sprintf("swap submission: %v", err))
	}

	receipt, err := c.chain.WaitMined(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.ErrConfirmTimeout) {
			res := fail(attemptID, models.ErrSwapReverted, err.Error())
			res.Err.TimedOut = true
			res.TxHash = txHash
			return res
		}
		res := fail(attemptID, models.ErrSwapReverted, fmt.Sprintf("swap confirmation: %v", err))
		res.TxHash = txHash
		return res
	}
	if receipt.Status == 0 {
		res := fail(attemptID, models.ErrSwapReverted, "swap transaction reverted")
		res.TxHash = txHash
		return res
	}

	// Confirmed: only now does the attempt consume budget.
	c.budget.RecordTrade(user, plan.RequiredIn)
	fmt.Printf("[ENGINE] Attempt %s: %s (tx %s, gas %d)\n", attemptID, stateConfirmed, txHash, receipt.GasUsed)

	return &models.ExecutionResult{
		AttemptID:       attemptID,
		Success:         true,
		TxHash:          txHash,
		GasUsed:         receipt.GasUsed,
		ActualAmountIn:  plan.RequiredIn,
		ActualAmountOut: plan.AmountOut,
	}
}

// plan resolves the pool, borrows a fresh reserve snapshot and runs the
// swap calculator plus the spend-limit pre-checks.
func (c *Coordinator) plan(ctx context.Context, sig *models.TradingSignal, cfg *models.PolicyConfig, budget *models.DailyBudgetState) (*models.SwapPlan, *models.ExecutionError) {
	input, ok := c.tokens.Lookup(sig.Token)
	if !ok {
		return nil, execErr(models.ErrPolicyRejected, fmt.Sprintf("unknown token %q", sig.Token))
	}
	output, ok := c.tokens.Lookup(sig.CounterToken)
	if !ok {
		return nil, execErr(models.ErrPolicyRejected, fmt.Sprintf("unknown counter token %q", sig.CounterToken))
	}

	amountIn := toBaseUnits(sig.Amount, input.Decimals)
	if amountIn.Sign() <= 0 {
		return nil, execErr(models.ErrAmountTooSmall, "input amount rounds to zero")
	}

	if cfg.MaxSingleTrade != nil && cfg.MaxSingleTrade.Sign() > 0 && amountIn.Cmp(cfg.MaxSingleTrade) > 0 {
		return nil, execErr(models.ErrPolicyRejected,
			fmt.Sprintf("trade %s exceeds single-trade limit %s", amountIn, cfg.MaxSingleTrade))
	}
	if cfg.MaxDailySpend != nil && cfg.MaxDailySpend.Sign() > 0 {
		projected := new(big.Int).Add(budget.DailySpent, amountIn)
		if projected.Cmp(cfg.MaxDailySpend) > 0 {
			return nil, execErr(models.ErrPolicyRejected,
				fmt.Sprintf("trade would exceed daily spend limit (%s + %s > %s)",
					budget.DailySpent, amountIn, cfg.MaxDailySpend))
		}
	}
	if allowance, ok := cfg.TokenApproved(input.Address); !ok {
		return nil, execErr(models.ErrPolicyRejected, fmt.Sprintf("token %s not approved for automation", input.Symbol))
	} else if amountIn.Cmp(allowance) > 0 {
		return nil, execErr(models.ErrPolicyRejected,
			fmt.Sprintf("trade %s exceeds approved allowance %s for %s", amountIn, allowance, input.Symbol))
	}

	pool, ok := c.resolver.Resolve(input.Address, output.Address)
	if !ok {
		return nil, execErr(models.ErrPoolUnavailable,
			fmt.Sprintf("no registered pool for %s/%s", input.Symbol, output.Symbol))
	}

	reserves, err := c.chain.Reserves(ctx, pool)
	if err != nil {
		return nil, execErr(models.ErrPoolUnavailable, fmt.Sprintf("fetch reserves: %v", err))
	}

	inputIsToken0 := reserves.Token0 == input.Address
	if input.Native {
		inputIsToken0 = reserves.IsToken0Native
	}
	reserveIn, reserveOut := reserves.Reserve0, reserves.Reserve1
	if !inputIsToken0 {
		reserveIn, reserveOut = reserves.Reserve1, reserves.Reserve0
	}

	amountOut, err := amm.ComputeOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, calcErr(err)
	}
	amountOutMin, err := amm.ApplySlippage(amountOut, c.slippageBps)
	if err != nil {
		return nil, execErr(models.ErrPolicyRejected, err.Error())
	}
	requiredIn, err := amm.ComputeRequiredInput(amountOut, reserveIn, reserveOut)
	if err != nil {
		return nil, calcErr(err)
	}

	plan := &models.SwapPlan{
		InputToken:   input.Address,
		OutputToken:  output.Address,
		InputNative:  input.Native,
		AmountIn:     amountIn,
		RequiredIn:   requiredIn,
		AmountOut:    amountOut,
		AmountOutMin: amountOutMin,
		PoolAddress:  pool,
		Amount0Out:   new(big.Int),
		Amount1Out:   new(big.Int),
	}
	// The output side receives the slippage-protected minimum; the other
	// side stays zero.
	if inputIsToken0 {
		plan.Amount1Out = amountOutMin
	} else {
		plan.Amount0Out = amountOutMin
	}
	return plan, nil
}

// approve tops up the pool's ERC20 allowance when the standing allowance
// cannot cover the required input, then waits for one confirmation before
// the swap may be submitted.
func (c *Coordinator) approve(ctx context.Context, attemptID string, plan *models.SwapPlan) *models.ExecutionError {
	current, err := c.chain.Allowance(ctx, plan.InputToken, c.chain.Wallet(), plan.PoolAddress)
	if err != nil {
		return execErr(models.ErrApprovalFailed, fmt.Sprintf("read allowance: %v", err))
	}
	if current.Cmp(plan.RequiredIn) >= 0 {
		return nil
	}

	fmt.Printf("[ENGINE] Attempt %s: %s (allowance %s < required %s)\n",
		attemptID, stateApproving, current, plan.RequiredIn)

	txHash, err := c.chain.Approve(ctx, plan.InputToken, plan.PoolAddress, plan.AmountIn)
	if err != nil {
		return execErr(models.ErrApprovalFailed, fmt.Sprintf("approval submission: %v", err))
	}

	receipt, err := c.chain.WaitMined(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.ErrConfirmTimeout) {
			e := execErr(models.ErrApprovalFailed, err.Error())
			e.TimedOut = true
			return e
		}
		return execErr(models.ErrApprovalFailed, fmt.Sprintf("approval confirmation: %v", err))
	}
	if receipt.Status == 0 {
		return execErr(models.ErrApprovalFailed, "approval transaction reverted")
	}
	return nil
}

// finish records the attempt and pushes the completion notification.
func (c *Coordinator) finish(ctx context.Context, user common.Address, sig *models.TradingSignal, res *models.ExecutionResult) {
	if res.Success {
		fmt.Printf("[ENGINE] Attempt %s: %s -> %s\n", res.AttemptID, stateConfirmed, stateIdle)
	} else if res.Err != nil && res.Err.Code == models.ErrPolicyRejected {
		fmt.Printf("[ENGINE] Attempt %s: %s (%s) -> %s\n", res.AttemptID, stateRejected, res.Err.Reason, stateIdle)
	} else if res.Err != nil {
		fmt.Printf("[ENGINE] Attempt %s: %s (%s: %s) -> %s\n",
			res.AttemptID, stateFailed, res.Err.Code, res.Err.Reason, stateIdle)
	}

	if c.recorder != nil {
		rec := &models.ExecutionRecord{
			AttemptID:   res.AttemptID,
			Timestamp:   time.Now(),
			UserAddress: user.Hex(),
			Action:      sig.Action,
			InputToken:  sig.Token,
			OutputToken: sig.CounterToken,
			Success:     res.Success,
		}
		if res.ActualAmountIn != nil {
			rec.AmountIn = res.ActualAmountIn.String()
		}
		if res.ActualAmountOut != nil {
			rec.AmountOut = res.ActualAmountOut.String()
		}
		if res.TxHash != "" {
			hash := res.TxHash
			rec.TxHash = &hash
		}
		if res.GasUsed > 0 {
			gas := int64(res.GasUsed)
			rec.GasUsed = &gas
		}
		if res.Err != nil {
			code, reason := res.Err.Code, res.Err.Reason
			rec.ErrorCode = &code
			rec.ErrorReason = &reason
		}
		if _, err := c.recorder.Record(ctx, rec); err != nil {
			fmt.Printf("[ENGINE] Failed to record attempt %s: %v\n", res.AttemptID, err)
		}
	}

	if c.notify != nil {
		note := models.CompletionNote{
			Success:   res.Success,
			TxHash:    res.TxHash,
			FromToken: sig.Token,
			ToToken:   sig.CounterToken,
			GasUsed:   res.GasUsed,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if res.ActualAmountIn != nil {
			note.AmountIn = res.ActualAmountIn.String()
		}
		if res.ActualAmountOut != nil {
			note.AmountOut = res.ActualAmountOut.String()
		}
		c.notify.SendCompletion(note)
	}
}

func (c *Coordinator) userLock(user common.Address) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[user]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[user] = lock
	}
	return lock
}

// --- helpers ---

func reject(attemptID, reason string) *models.ExecutionResult {
	return &models.ExecutionResult{AttemptID: attemptID, Err: execErr(models.ErrPolicyRejected, reason)}
}

func fail(attemptID, code, reason string) *models.ExecutionResult {
	return &models.ExecutionResult{AttemptID: attemptID, Err: execErr(code, reason)}
}

func execErr(code, reason string) *models.ExecutionError {
	return &models.ExecutionError{Code: code, Reason: reason}
}

func calcErr(err error) *models.ExecutionError {
	switch {
	case errors.Is(err, amm.ErrPoolIlliquid):
		return execErr(models.ErrPoolIlliquid, err.Error())
	case errors.Is(err, amm.ErrAmountTooSmall):
		return execErr(models.ErrAmountTooSmall, err.Error())
	case errors.Is(err, amm.ErrPriceImpact):
		return execErr(models.ErrPriceImpactExceeded, err.Error())
	}
	return execErr(models.ErrSwapReverted, err.Error())
}

// toBaseUnits converts a human amount to base units at the given decimals.
func toBaseUnits(amount float64, decimals int) *big.Int {
	f := new(big.Float).Mul(
		new(big.Float).SetFloat64(amount),
		new(big.Float).SetFloat64(math.Pow10(decimals)),
	)
	i, _ := f.Int(nil)
	return i
}
