package amm

import (
	"errors"
	"fmt"
	"math/big"
)

// Calculator guards. The coordinator maps these onto the structured
// execution error codes.
var (
	ErrPoolIlliquid   = errors.New("pool illiquid: zero reserve")
	ErrAmountTooSmall = errors.New("computed output rounds to zero")
	ErrPriceImpact    = errors.New("output exceeds half of pool reserve")
)

// MaxSlippageBps is the full-range basis-point denominator.
const MaxSlippageBps = 10000

var bpsDenominator = big.NewInt(MaxSlippageBps)

// ComputeOutput replicates the pool's pricing client-side:
// floor(amountIn * reserveOut / reserveIn), integer-only so the result
// matches on-chain rounding exactly.
//
// The half-reserve cap is a conservative circuit breaker, not a precise
// price-impact model: any trade draining more than reserveOut/2 is refused.
func ComputeOutput(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrPoolIlliquid
	}

	out := new(big.Int).Mul(amountIn, reserveOut)
	out.Quo(out, reserveIn)

	if out.Sign() == 0 {
		return nil, ErrAmountTooSmall
	}

	half := new(big.Int).Quo(reserveOut, big.NewInt(2))
	if out.Cmp(half) > 0 {
		return nil, ErrPriceImpact
	}
	return out, nil
}

// ComputeRequiredInput returns ceil(amountOut * reserveIn / reserveOut),
// the input needed to receive amountOut. Used to size the native-asset
// value attached to a swap when the output is the fixed target.
func ComputeRequiredInput(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrPoolIlliquid
	}

	num := new(big.Int).Mul(amountOut, reserveIn)
	in, rem := new(big.Int).QuoRem(num, reserveOut, new(big.Int))
	if rem.Sign() != 0 {
		in.Add(in, big.NewInt(1))
	}
	return in, nil
}

// ApplySlippage scales amountOut down by slippageBps basis points using
// integer division: amountOut * (10000 - bps) / 10000.
func ApplySlippage(amountOut *big.Int, slippageBps int) (*big.Int, error) {
	if slippageBps < 0 || slippageBps > MaxSlippageBps {
		return nil, fmt.Errorf("slippage %d bps out of range [0,%d]", slippageBps, MaxSlippageBps)
	}
	out := new(big.Int).Mul(amountOut, big.NewInt(int64(MaxSlippageBps-slippageBps)))
	return out.Quo(out, bpsDenominator), nil
}
