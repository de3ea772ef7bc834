package amm

import (
	"errors"
	"math/big"
	"testing"
)

func bi(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test integer: " + s)
	}
	return n
}

// Scenario: 10 ASL (18 dec) into a 1000 ASL / 500 AUSD (6 dec) pool.
func TestComputeOutput_MixedDecimals(t *testing.T) {
	amountIn := bi("10000000000000000000")        // 10e18
	reserveIn := bi("1000000000000000000000")     // 1000e18
	reserveOut := bi("500000000")                 // 500e6

	out, err := ComputeOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		t.Fatal(err)
	}
	if out.Cmp(bi("5000000")) != 0 {
		t.Fatalf("expected 5000000, got %s", out)
	}

	min, err := ApplySlippage(out, 50)
	if err != nil {
		t.Fatal(err)
	}
	if min.Cmp(bi("4975000")) != 0 {
		t.Fatalf("expected 4975000 after 50 bps, got %s", min)
	}
}

func TestComputeOutput_ZeroReserves(t *testing.T) {
	_, err := ComputeOutput(big.NewInt(100), big.NewInt(0), big.NewInt(1000))
	if !errors.Is(err, ErrPoolIlliquid) {
		t.Fatalf("expected ErrPoolIlliquid for zero reserveIn, got %v", err)
	}

	_, err = ComputeOutput(big.NewInt(100), big.NewInt(1000), big.NewInt(0))
	if !errors.Is(err, ErrPoolIlliquid) {
		t.Fatalf("expected ErrPoolIlliquid for zero reserveOut, got %v", err)
	}
}

func TestComputeOutput_RoundsToZero(t *testing.T) {
	// 1 base unit in against a wildly lopsided pool floors to zero out.
	_, err := ComputeOutput(big.NewInt(1), bi("1000000000000000000"), big.NewInt(10))
	if !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected ErrAmountTooSmall, got %v", err)
	}
}

func TestComputeOutput_ReserveCap(t *testing.T) {
	// Sized so out = 0.6 * reserveOut.
	reserveIn := big.NewInt(1000)
	reserveOut := big.NewInt(1000)
	_, err := ComputeOutput(big.NewInt(600), reserveIn, reserveOut)
	if !errors.Is(err, ErrPriceImpact) {
		t.Fatalf("expected ErrPriceImpact at 60%% of reserve, got %v", err)
	}

	// Exactly half passes.
	out, err := ComputeOutput(big.NewInt(500), reserveIn, reserveOut)
	if err != nil {
		t.Fatalf("exactly half the reserve should pass, got %v", err)
	}
	if out.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected 500, got %s", out)
	}
}

// Reserves near 2^96 must not lose precision.
func TestComputeOutput_LargeReserves(t *testing.T) {
	reserveIn := new(big.Int).Lsh(big.NewInt(1), 96)
	reserveOut := new(big.Int).Lsh(big.NewInt(1), 96)
	amountIn := new(big.Int).Lsh(big.NewInt(1), 90)

	out, err := ComputeOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		t.Fatal(err)
	}
	// 1:1 reserves: out == in exactly.
	if out.Cmp(amountIn) != 0 {
		t.Fatalf("expected %s, got %s", amountIn, out)
	}
}

func TestComputeOutput_FloorSemantics(t *testing.T) {
	// 7*10/30 = 2.33... -> 2
	out, err := ComputeOutput(big.NewInt(7), big.NewInt(30), big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if out.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected floor 2, got %s", out)
	}
}

func TestComputeRequiredInput_CeilSemantics(t *testing.T) {
	// 23*3/10 = 6.9 -> 7
	in, err := ComputeRequiredInput(big.NewInt(23), big.NewInt(3), big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if in.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("expected ceil 7, got %s", in)
	}

	// Exact division stays exact.
	in, err = ComputeRequiredInput(big.NewInt(20), big.NewInt(3), big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if in.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("expected exact 6, got %s", in)
	}
}

func TestComputeRequiredInput_ZeroReserves(t *testing.T) {
	_, err := ComputeRequiredInput(big.NewInt(10), big.NewInt(0), big.NewInt(10))
	if !errors.Is(err, ErrPoolIlliquid) {
		t.Fatalf("expected ErrPoolIlliquid, got %v", err)
	}
}

func TestApplySlippage_Bounds(t *testing.T) {
	out := big.NewInt(1000000)

	for _, bps := range []int{0, 1, 50, 100, 5000, 9999, 10000} {
		min, err := ApplySlippage(out, bps)
		if err != nil {
			t.Fatalf("bps=%d: %v", bps, err)
		}
		if min.Cmp(out) > 0 {
			t.Fatalf("bps=%d: slippage-adjusted %s exceeds %s", bps, min, out)
		}
		if bps == 0 && min.Cmp(out) != 0 {
			t.Fatalf("bps=0 must be identity, got %s", min)
		}
		if bps == 10000 && min.Sign() != 0 {
			t.Fatalf("bps=10000 must zero the output, got %s", min)
		}
	}
}

func TestApplySlippage_OutOfRange(t *testing.T) {
	if _, err := ApplySlippage(big.NewInt(100), -1); err == nil {
		t.Fatal("expected error for negative bps")
	}
	if _, err := ApplySlippage(big.NewInt(100), 10001); err == nil {
		t.Fatal("expected error for bps > 10000")
	}
}
