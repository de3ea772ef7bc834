package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Vault wraps the custody vault contract. Write methods submit and return
// the tx hash; confirmation waits are the caller's concern. All amounts are
// base-unit integers.
type Vault struct {
	client   *Client
	addr     common.Address
	vaultABI abi.ABI
}

func NewVault(client *Client, addr string) (*Vault, error) {
	vABI, err := abi.JSON(mustVaultABI())
	if err != nil {
		return nil, fmt.Errorf("parse vault ABI: %w", err)
	}
	return &Vault{
		client:   client,
		addr:     common.HexToAddress(addr),
		vaultABI: vABI,
	}, nil
}

func (v *Vault) Address() common.Address { return v.addr }

// EnableAutomation atomically replaces the caller's full vault-side config.
func (v *Vault) EnableAutomation(ctx context.Context, maxDailySpend, maxSingleTrade *big.Int, tokens []common.Address, allowances []*big.Int) (string, error) {
	return v.submit(ctx, big.NewInt(0), "enableAutomation", maxDailySpend, maxSingleTrade, tokens, allowances)
}

func (v *Vault) DisableAutomation(ctx context.Context) (string, error) {
	return v.submit(ctx, big.NewInt(0), "disableAutomation")
}

func (v *Vault) UpdateSpendingLimits(ctx context.Context, maxDailySpend, maxSingleTrade *big.Int) (string, error) {
	return v.submit(ctx, big.NewInt(0), "updateSpendingLimits", maxDailySpend, maxSingleTrade)
}

func (v *Vault) AddApprovedToken(ctx context.Context, token common.Address, allowance *big.Int) (string, error) {
	return v.submit(ctx, big.NewInt(0), "addApprovedToken", token, allowance)
}

func (v *Vault) RemoveApprovedToken(ctx context.Context, token common.Address) (string, error) {
	return v.submit(ctx, big.NewInt(0), "removeApprovedToken", token)
}

// DepositFunds moves funds into custody. Native deposits attach the amount
// as value; token deposits assume the vault was already granted an ERC20
// allowance and pull the funds.
func (v *Vault) DepositFunds(ctx context.Context, token common.Address, amount *big.Int, native bool) (string, error) {
	value := big.NewInt(0)
	if native {
		value = amount
	}
	return v.submit(ctx, value, "depositFunds", token, amount)
}

func (v *Vault) WithdrawFunds(ctx context.Context, token common.Address, amount *big.Int) (string, error) {
	return v.submit(ctx, big.NewInt(0), "withdrawFunds", token, amount)
}

// UserConfig is the vault-side view of a user's automation settings.
type UserConfig struct {
	Enabled        bool
	MaxDailySpend  *big.Int
	MaxSingleTrade *big.Int
}

func (v *Vault) GetUserConfig(ctx context.Context, user common.Address) (*UserConfig, error) {
	vals, err := v.view(ctx, "getUserConfig", user)
	if err != nil {
		return nil, err
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("decode getUserConfig: %d values", len(vals))
	}
	return &UserConfig{
		Enabled:        vals[0].(bool),
		MaxDailySpend:  vals[1].(*big.Int),
		MaxSingleTrade: vals[2].(*big.Int),
	}, nil
}

func (v *Vault) GetTokenAllowance(ctx context.Context, user, token common.Address) (*big.Int, error) {
	vals, err := v.view(ctx, "getTokenAllowance", user, token)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (v *Vault) GetAvailableBalance(ctx context.Context, user, token common.Address) (*big.Int, error) {
	vals, err := v.view(ctx, "getAvailableBalance", user, token)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (v *Vault) IsAutomationEnabled(ctx context.Context, user common.Address) (bool, error) {
	vals, err := v.view(ctx, "isAutomationEnabled", user)
	if err != nil {
		return false, err
	}
	return vals[0].(bool), nil
}

// --- helpers ---

func (v *Vault) submit(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
	data, err := v.vaultABI.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	hash, err := v.client.SignAndSend(ctx, v.addr, value, data)
	if err != nil {
		return "", fmt.Errorf("%s tx: %w", method, err)
	}
	return hash, nil
}

func (v *Vault) view(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := v.vaultABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := v.client.CallContract(ctx, v.addr, data)
	if err != nil {
		return nil, fmt.Errorf("%s call: %w", method, err)
	}
	vals, err := v.vaultABI.Unpack(method, raw)
	if err != nil || len(vals) == 0 {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	return vals, nil
}
