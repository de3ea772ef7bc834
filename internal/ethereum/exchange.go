package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

const explorerTxPrefix = "https://scan.aslan.network/tx/"

// Exchange wraps a Client with the AMM pool and ERC20 call surface the
// execution engine needs: fresh reserve snapshots, allowance reads, approval
// submission and the raw two-sided swap.
type Exchange struct {
	client         *Client
	confirmTimeout time.Duration
	poolABI        abi.ABI
	erc20ABI       abi.ABI
}

func NewExchange(client *Client, confirmTimeout time.Duration) (*Exchange, error) {
	pABI, err := abi.JSON(mustPoolABI())
	if err != nil {
		return nil, fmt.Errorf("parse pool ABI: %w", err)
	}
	eABI, err := abi.JSON(mustERC20ABI())
	if err != nil {
		return nil, fmt.Errorf("parse ERC20 ABI: %w", err)
	}
	return &Exchange{
		client:         client,
		confirmTimeout: confirmTimeout,
		poolABI:        pABI,
		erc20ABI:       eABI,
	}, nil
}

func (e *Exchange) ExplorerURL(txHash string) string {
	return explorerTxPrefix + txHash
}

func (e *Exchange) Wallet() common.Address { return e.client.WalletAddress() }
func (e *Exchange) HasSigner() bool        { return e.client.HasSigner() }

// Reserves fetches a fresh reserve snapshot plus pool orientation. The
// snapshot is borrowed for one planning attempt and must not be cached.
func (e *Exchange) Reserves(ctx context.Context, pool common.Address) (*models.PoolReserves, error) {
	data, err := e.poolABI.Pack("getReserves")
	if err != nil {
		return nil, err
	}
	raw, err := e.client.CallContract(ctx, pool, data)
	if err != nil {
		return nil, fmt.Errorf("getReserves call: %w", err)
	}
	vals, err := e.poolABI.Unpack("getReserves", raw)
	if err != nil || len(vals) != 2 {
		return nil, fmt.Errorf("decode getReserves: %w", err)
	}

	token0, err := e.poolToken0(ctx, pool)
	if err != nil {
		return nil, err
	}
	native, err := e.poolIsToken0Native(ctx, pool)
	if err != nil {
		return nil, err
	}

	return &models.PoolReserves{
		Reserve0:       vals[0].(*big.Int),
		Reserve1:       vals[1].(*big.Int),
		Token0:         token0,
		IsToken0Native: native,
	}, nil
}

func (e *Exchange) poolToken0(ctx context.Context, pool common.Address) (common.Address, error) {
	data, err := e.poolABI.Pack("token0")
	if err != nil {
		return common.Address{}, err
	}
	raw, err := e.client.CallContract(ctx, pool, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("token0 call: %w", err)
	}
	vals, err := e.poolABI.Unpack("token0", raw)
	if err != nil || len(vals) != 1 {
		return common.Address{}, fmt.Errorf("decode token0: %w", err)
	}
	return vals[0].(common.Address), nil
}

func (e *Exchange) poolIsToken0Native(ctx context.Context, pool common.Address) (bool, error) {
	data, err := e.poolABI.Pack("isToken0Native")
	if err != nil {
		return false, err
	}
	raw, err := e.client.CallContract(ctx, pool, data)
	if err != nil {
		return false, fmt.Errorf("isToken0Native call: %w", err)
	}
	vals, err := e.poolABI.Unpack("isToken0Native", raw)
	if err != nil || len(vals) != 1 {
		return false, fmt.Errorf("decode isToken0Native: %w", err)
	}
	return vals[0].(bool), nil
}

// Allowance returns the ERC20 allowance owner has granted spender.
func (e *Exchange) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := e.erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	raw, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("allowance call: %w", err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Approve submits an ERC20 approval and returns the tx hash without waiting.
func (e *Exchange) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (string, error) {
	data, err := e.erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return "", err
	}
	hash, err := e.client.SignAndSend(ctx, token, big.NewInt(0), data)
	if err != nil {
		return "", fmt.Errorf("approve tx: %w", err)
	}
	return hash, nil
}

// Swap submits the pool's raw swap with precomputed output amounts. For
// native-input trades the required input is attached as value; value is
// zero for token-input trades (the pool pulls via allowance).
func (e *Exchange) Swap(ctx context.Context, pool common.Address, amount0Out, amount1Out *big.Int, recipient common.Address, value *big.Int) (string, error) {
	data, err := e.poolABI.Pack("swap", amount0Out, amount1Out, recipient)
	if err != nil {
		return "", fmt.Errorf("pack swap: %w", err)
	}
	if value == nil {
		value = big.NewInt(0)
	}
	hash, err := e.client.SignAndSend(ctx, pool, value, data)
	if err != nil {
		return "", fmt.Errorf("swap tx: %w", err)
	}
	return hash, nil
}

// WaitMined blocks until the transaction confirms, reverts, or the
// configured confirmation window elapses.
func (e *Exchange) WaitMined(ctx context.Context, txHash string) (*models.TxReceipt, error) {
	return e.client.WaitMined(ctx, txHash, e.confirmTimeout)
}

// TokenBalance returns the raw base-unit ERC20 balance of the wallet.
func (e *Exchange) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := e.erc20ABI.Pack("balanceOf", e.client.WalletAddress())
	if err != nil {
		return nil, err
	}
	raw, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("balanceOf call: %w", err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// TokenDecimals queries the token's decimals.
func (e *Exchange) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := e.erc20ABI.Pack("decimals")
	if err != nil {
		return 0, err
	}
	raw, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return 0, fmt.Errorf("decimals call: %w", err)
	}
	vals, err := e.erc20ABI.Unpack("decimals", raw)
	if err != nil || len(vals) != 1 {
		return 0, fmt.Errorf("decode decimals: %w", err)
	}
	return vals[0].(uint8), nil
}

// TokenSymbol queries the token's symbol.
func (e *Exchange) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	data, err := e.erc20ABI.Pack("symbol")
	if err != nil {
		return "", err
	}
	raw, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return "", fmt.Errorf("symbol call: %w", err)
	}
	vals, err := e.erc20ABI.Unpack("symbol", raw)
	if err != nil || len(vals) != 1 {
		return "", fmt.Errorf("decode symbol: %w", err)
	}
	return vals[0].(string), nil
}
