package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// ErrConfirmTimeout reports that the client stopped waiting for a receipt.
// The transaction was already broadcast and may still land on-chain; callers
// must not treat this as a revert.
var ErrConfirmTimeout = errors.New("confirmation wait timed out")

const receiptPollInterval = 2 * time.Second

// Client wraps an RPC connection to the Aslan chain with optional signing.
// With an empty private key the client is read-only; submission methods
// then fail with a "no signer" error.
type Client struct {
	rpc        *ethclient.Client
	privateKey *ecdsa.PrivateKey
	wallet     common.Address
	chainID    *big.Int
	gasLimit   uint64
	gasMul     float64
}

func NewClient(rpcURL, privateKeyHex string, chainID int64, gasLimit int, gasMultiplier float64) (*Client, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	c := &Client{
		rpc:      rpc,
		chainID:  big.NewInt(chainID),
		gasLimit: uint64(gasLimit),
		gasMul:   gasMultiplier,
	}

	if privateKeyHex != "" {
		pk, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		c.privateKey = pk
		c.wallet = crypto.PubkeyToAddress(pk.PublicKey)
	}

	return c, nil
}

func (c *Client) WalletAddress() common.Address { return c.wallet }
func (c *Client) HasSigner() bool               { return c.privateKey != nil }
func (c *Client) GasLimit() uint64              { return c.gasLimit }
func (c *Client) Close()                        { c.rpc.Close() }

func (c *Client) NativeBalance(ctx context.Context) (*big.Int, error) {
	return c.rpc.BalanceAt(ctx, c.wallet, nil)
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	mul := new(big.Float).SetFloat64(c.gasMul)
	adjusted := new(big.Float).Mul(new(big.Float).SetInt(price), mul)
	result, _ := adjusted.Int(nil)
	return result, nil
}

func (c *Client) Nonce(ctx context.Context) (uint64, error) {
	return c.rpc.PendingNonceAt(ctx, c.wallet)
}

// SignAndSend signs a legacy transaction and broadcasts it, returning the tx
// hash. It does not wait for inclusion; pair with WaitMined.
func (c *Client) SignAndSend(ctx context.Context, to common.Address, value *big.Int, data []byte) (string, error) {
	if c.privateKey == nil {
		return "", fmt.Errorf("no signer configured")
	}

	nonce, err := c.Nonce(ctx)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := c.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      c.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signer := types.NewEIP155Signer(c.chainID)
	signed, err := types.SignTx(tx, signer, c.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	return signed.Hash().Hex(), nil
}

// WaitMined polls for the transaction receipt until it appears or the wait
// budget runs out. A timeout is reported as ErrConfirmTimeout, distinct from
// a revert (Status 0 in the returned receipt).
func (c *Client) WaitMined(ctx context.Context, txHash string, timeout time.Duration) (*models.TxReceipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.rpc.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			return &models.TxReceipt{Status: receipt.Status, GasUsed: receipt.GasUsed}, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w after %s (tx %s)", ErrConfirmTimeout, timeout, txHash)
		case <-ticker.C:
		}
	}
}

// CallContract performs a read-only eth_call and returns the raw result.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := map[string]interface{}{
		"to":   to.Hex(),
		"data": fmt.Sprintf("0x%x", data),
	}
	var result string
	err := c.rpc.Client().CallContext(ctx, &result, "eth_call", msg, "latest")
	if err != nil {
		return nil, err
	}
	return common.FromHex(result), nil
}
