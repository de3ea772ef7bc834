package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/ethereum"
	"github.com/aslanlabs/aslan-auto-trader/internal/models"
	"github.com/aslanlabs/aslan-auto-trader/internal/policy"
)

// ChainVault abstracts the on-chain vault so the registry can be tested
// without a live chain.
type ChainVault interface {
	Address() common.Address
	EnableAutomation(ctx context.Context, maxDailySpend, maxSingleTrade *big.Int, tokens []common.Address, allowances []*big.Int) (string, error)
	DisableAutomation(ctx context.Context) (string, error)
	UpdateSpendingLimits(ctx context.Context, maxDailySpend, maxSingleTrade *big.Int) (string, error)
	AddApprovedToken(ctx context.Context, token common.Address, allowance *big.Int) (string, error)
	RemoveApprovedToken(ctx context.Context, token common.Address) (string, error)
	DepositFunds(ctx context.Context, token common.Address, amount *big.Int, native bool) (string, error)
	WithdrawFunds(ctx context.Context, token common.Address, amount *big.Int) (string, error)
	GetUserConfig(ctx context.Context, user common.Address) (*ethereum.UserConfig, error)
	GetTokenAllowance(ctx context.Context, user, token common.Address) (*big.Int, error)
	GetAvailableBalance(ctx context.Context, user, token common.Address) (*big.Int, error)
	IsAutomationEnabled(ctx context.Context, user common.Address) (bool, error)
}

// TokenApprover grants the vault an ERC20 allowance ahead of a token
// deposit and waits for the grant to confirm.
type TokenApprover interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (string, error)
	WaitMined(ctx context.Context, txHash string) (*models.TxReceipt, error)
}

// Defaults seed the policy-side fields the vault contract does not carry
// when a user enables automation for the first time.
type Defaults struct {
	MinConfidence  int
	MaxDailyTrades int
}

// Registry is the allowance registry: it mirrors every vault-side config
// mutation into the unified PolicyConfig (the single gate the evaluator
// consults) and pre-checks operations locally so transactions that would
// violate vault invariants are never submitted.
type Registry struct {
	chain    ChainVault
	approver TokenApprover
	policies *policy.Store
	defaults Defaults
}

func NewRegistry(chain ChainVault, approver TokenApprover, policies *policy.Store, defaults Defaults) *Registry {
	return &Registry{
		chain:    chain,
		approver: approver,
		policies: policies,
		defaults: defaults,
	}
}

// EnableAutomation atomically replaces the user's full vault-side config.
// Precondition: one allowance per token.
func (r *Registry) EnableAutomation(ctx context.Context, user common.Address, maxDailySpend, maxSingleTrade *big.Int, tokens []common.Address, allowances []*big.Int) (string, error) {
	if len(tokens) != len(allowances) {
		return "", fmt.Errorf("token/allowance length mismatch: %d tokens, %d allowances", len(tokens), len(allowances))
	}

	hash, err := r.chain.EnableAutomation(ctx, maxDailySpend, maxSingleTrade, tokens, allowances)
	if err != nil {
		return "", fmt.Errorf("enable automation: %w", err)
	}

	approved := make(map[common.Address]*big.Int, len(tokens))
	for i, token := range tokens {
		approved[token] = new(big.Int).Set(allowances[i])
	}

	cfg, ok := r.policies.Get(user)
	if !ok {
		cfg = &models.PolicyConfig{
			MinConfidence:  r.defaults.MinConfidence,
			MaxDailyTrades: r.defaults.MaxDailyTrades,
		}
	}
	cfg.Enabled = true
	cfg.MaxDailySpend = new(big.Int).Set(maxDailySpend)
	cfg.MaxSingleTrade = new(big.Int).Set(maxSingleTrade)
	cfg.ApprovedTokens = approved

	if err := r.policies.Upsert(ctx, user, cfg); err != nil {
		return hash, err
	}
	fmt.Printf("[VAULT] Automation enabled for %s (%d approved tokens)\n", user.Hex(), len(tokens))
	return hash, nil
}

func (r *Registry) DisableAutomation(ctx context.Context, user common.Address) (string, error) {
	hash, err := r.chain.DisableAutomation(ctx)
	if err != nil {
		return "", fmt.Errorf("disable automation: %w", err)
	}
	if err := r.policies.SetEnabled(ctx, user, false); err != nil {
		fmt.Printf("[VAULT] Warning: vault disabled but policy mirror failed: %v\n", err)
	}
	return hash, nil
}

func (r *Registry) UpdateSpendingLimits(ctx context.Context, user common.Address, maxDailySpend, maxSingleTrade *big.Int) (string, error) {
	hash, err := r.chain.UpdateSpendingLimits(ctx, maxDailySpend, maxSingleTrade)
	if err != nil {
		return "", fmt.Errorf("update spending limits: %w", err)
	}
	if err := r.policies.SetSpendingLimits(ctx, user, maxDailySpend, maxSingleTrade); err != nil {
		return hash, err
	}
	return hash, nil
}

func (r *Registry) AddApprovedToken(ctx context.Context, user, token common.Address, allowance *big.Int) (string, error) {
	hash, err := r.chain.AddApprovedToken(ctx, token, allowance)
	if err != nil {
		return "", fmt.Errorf("add approved token: %w", err)
	}
	if err := r.policies.SetApprovedToken(ctx, user, token, allowance); err != nil {
		return hash, err
	}
	return hash, nil
}

func (r *Registry) RemoveApprovedToken(ctx context.Context, user, token common.Address) (string, error) {
	hash, err := r.chain.RemoveApprovedToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("remove approved token: %w", err)
	}
	if err := r.policies.RemoveApprovedToken(ctx, user, token); err != nil {
		return hash, err
	}
	return hash, nil
}

// Deposit moves funds into custody. Native deposits attach value directly;
// token deposits first grant the vault an ERC20 allowance and wait for that
// grant to confirm, then let the vault pull the funds.
func (r *Registry) Deposit(ctx context.Context, token common.Address, amount *big.Int, native bool) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", fmt.Errorf("deposit amount must be positive")
	}

	if !native {
		approveHash, err := r.approver.Approve(ctx, token, r.chain.Address(), amount)
		if err != nil {
			return "", fmt.Errorf("approve vault: %w", err)
		}
		receipt, err := r.approver.WaitMined(ctx, approveHash)
		if err != nil {
			return "", fmt.Errorf("approve vault: %w", err)
		}
		if receipt.Status == 0 {
			return "", fmt.Errorf("approve vault: transaction reverted (%s)", approveHash)
		}
	}

	hash, err := r.chain.DepositFunds(ctx, token, amount, native)
	if err != nil {
		return "", fmt.Errorf("deposit: %w", err)
	}
	return hash, nil
}

// Withdraw pre-checks the custodied balance locally and refuses to submit a
// withdrawal the vault would reject.
func (r *Registry) Withdraw(ctx context.Context, user, token common.Address, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", fmt.Errorf("withdraw amount must be positive")
	}

	available, err := r.chain.GetAvailableBalance(ctx, user, token)
	if err != nil {
		return "", fmt.Errorf("check balance: %w", err)
	}
	if amount.Cmp(available) > 0 {
		return "", fmt.Errorf("insufficient balance: have %s, want %s", available, amount)
	}

	hash, err := r.chain.WithdrawFunds(ctx, token, amount)
	if err != nil {
		return "", fmt.Errorf("withdraw: %w", err)
	}
	return hash, nil
}

// --- read-only passthroughs ---

func (r *Registry) AvailableBalance(ctx context.Context, user, token common.Address) (*big.Int, error) {
	return r.chain.GetAvailableBalance(ctx, user, token)
}

func (r *Registry) TokenAllowance(ctx context.Context, user, token common.Address) (*big.Int, error) {
	return r.chain.GetTokenAllowance(ctx, user, token)
}

func (r *Registry) AutomationEnabled(ctx context.Context, user common.Address) (bool, error) {
	return r.chain.IsAutomationEnabled(ctx, user)
}

func (r *Registry) UserConfig(ctx context.Context, user common.Address) (*ethereum.UserConfig, error) {
	return r.chain.GetUserConfig(ctx, user)
}
