package repository_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
	"github.com/aslanlabs/aslan-auto-trader/internal/repository"
	"github.com/aslanlabs/aslan-auto-trader/internal/testutil"
)

// ---------- ExecutionRepo ----------

func TestExecutionRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewExecutionRepo(pool)
	ctx := context.Background()

	user := "0x00000000000000000000000000000000000000F1"
	txHash := "0xdeadbeef"
	gas := int64(90000)

	rec := &models.ExecutionRecord{
		AttemptID:   uuid.NewString(),
		Timestamp:   time.Now(),
		UserAddress: user,
		Action:      models.ActionBuy,
		InputToken:  "ASL",
		OutputToken: "AUSD",
		AmountIn:    "10000000000000000000",
		AmountOut:   "5000000",
		TxHash:      &txHash,
		GasUsed:     &gas,
		Success:     true,
	}

	recorded, err := repo.Record(ctx, rec)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if recorded.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if recorded.AmountIn != "10000000000000000000" {
		t.Fatalf("amount in mismatch: got %s", recorded.AmountIn)
	}
	t.Logf("Recorded execution: id=%d day=%s tx=%s", recorded.ID, recorded.TradingDay, *recorded.TxHash)

	// A failed attempt for the same user
	code, reason := models.ErrSwapReverted, "swap transaction reverted"
	failed := &models.ExecutionRecord{
		AttemptID:   uuid.NewString(),
		Timestamp:   time.Now(),
		UserAddress: user,
		Action:      models.ActionSell,
		InputToken:  "AUSD",
		OutputToken: "ASL",
		AmountIn:    "100000000",
		ErrorCode:   &code,
		ErrorReason: &reason,
	}
	if _, err := repo.Record(ctx, failed); err != nil {
		t.Fatalf("Record(failed): %v", err)
	}

	// GetByDay
	byDay, err := repo.GetByDay(ctx, user, recorded.TradingDay, nil)
	if err != nil {
		t.Fatalf("GetByDay: %v", err)
	}
	if len(byDay) == 0 {
		t.Fatal("expected attempts for trading day")
	}
	t.Logf("GetByDay(%s): %d rows", recorded.TradingDay, len(byDay))

	// GetAll filtered to confirmed only
	confirmed := true
	ok, err := repo.GetAll(ctx, user, 10, &confirmed)
	if err != nil {
		t.Fatalf("GetAll(confirmed): %v", err)
	}
	for _, e := range ok {
		if !e.Success {
			t.Fatalf("expected confirmed execution, got failure id=%d", e.ID)
		}
	}
	t.Logf("GetAll(confirmed): %d rows", len(ok))

	// GetStats
	stats, err := repo.GetStats(ctx, user)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalAttempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", stats.TotalAttempts)
	}
	t.Logf("Stats: total=%d confirmed=%d failed=%d", stats.TotalAttempts, stats.Confirmed, stats.Failed)

	// CountToday counts confirmed only
	count, err := repo.CountToday(ctx, user)
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count < 1 {
		t.Fatal("expected at least one confirmed execution today")
	}
	t.Logf("CountToday: %d", count)
}

// ---------- PolicyRepo ----------

func TestPolicyRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewPolicyRepo(pool)
	ctx := context.Background()

	user := common.HexToAddress("0x00000000000000000000000000000000000000F2")
	token := common.HexToAddress("0x0000000000000000000000000000000000000002")

	spend, _ := new(big.Int).SetString("50000000000000000000", 10)
	cfg := &models.PolicyConfig{
		Enabled:        true,
		MinConfidence:  70,
		MaxDailyTrades: 5,
		MaxDailySpend:  spend,
		MaxSingleTrade: big.NewInt(1_000_000),
		ApprovedTokens: map[common.Address]*big.Int{
			token: big.NewInt(500_000),
		},
	}

	if err := repo.Upsert(ctx, user, cfg); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Upsert again with a change; the row must be replaced, not duplicated
	cfg.Enabled = false
	if err := repo.Upsert(ctx, user, cfg); err != nil {
		t.Fatalf("Upsert(update): %v", err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	got, ok := all[user]
	if !ok {
		t.Fatal("expected config for user")
	}
	if got.Enabled {
		t.Fatal("update did not take: still enabled")
	}
	if got.MaxDailySpend.Cmp(spend) != 0 {
		t.Fatalf("daily spend mismatch: got %s", got.MaxDailySpend)
	}
	if allowance, ok := got.TokenApproved(token); !ok || allowance.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("approved token did not round-trip: %v (ok=%v)", allowance, ok)
	}
	t.Logf("Round-tripped policy for %s: %d approved tokens", user.Hex(), len(got.ApprovedTokens))
}
