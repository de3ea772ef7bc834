package policy

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var user = common.HexToAddress("0x00000000000000000000000000000000000000f1")

func trackerAt(ts time.Time) (*Tracker, *time.Time) {
	now := ts
	tr := NewTracker()
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestTracker_MonotoneWithinDay(t *testing.T) {
	tr, _ := trackerAt(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))

	prevCount := 0
	prevSpent := new(big.Int)
	for i := 0; i < 5; i++ {
		tr.RecordTrade(user, big.NewInt(100))
		st := tr.Stats(user)
		if st.TradeCount < prevCount {
			t.Fatalf("tradeCount decreased: %d -> %d", prevCount, st.TradeCount)
		}
		if st.DailySpent.Cmp(prevSpent) < 0 {
			t.Fatalf("dailySpent decreased: %s -> %s", prevSpent, st.DailySpent)
		}
		prevCount = st.TradeCount
		prevSpent = st.DailySpent
	}

	st := tr.Stats(user)
	if st.TradeCount != 5 || st.DailySpent.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected 5 trades / 500 spent, got %d / %s", st.TradeCount, st.DailySpent)
	}
}

func TestTracker_LazyRolloverAtUTCMidnight(t *testing.T) {
	tr, now := trackerAt(time.Date(2026, 8, 24, 23, 59, 0, 0, time.UTC))

	tr.RecordTrade(user, big.NewInt(250))
	st := tr.Stats(user)
	if st.TradeCount != 1 || st.LastResetDay != "2026-08-24" {
		t.Fatalf("unexpected pre-rollover state: %+v", st)
	}

	// Cross UTC midnight: first read zeroes the state, exactly once.
	*now = time.Date(2026, 8, 25, 0, 1, 0, 0, time.UTC)
	st = tr.Stats(user)
	if st.TradeCount != 0 || st.DailySpent.Sign() != 0 {
		t.Fatalf("expected zeroed state after day boundary, got %+v", st)
	}
	if st.LastResetDay != "2026-08-25" {
		t.Fatalf("expected lastResetDay 2026-08-25, got %s", st.LastResetDay)
	}

	// No second reset within the same day.
	tr.RecordTrade(user, big.NewInt(40))
	*now = time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)
	st = tr.Stats(user)
	if st.TradeCount != 1 || st.DailySpent.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("state reset more than once within a day: %+v", st)
	}
}

func TestTracker_RolloverIsLocalWallclockIndependent(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 UTC next day; the boundary must follow UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	tr, _ := trackerAt(time.Date(2026, 8, 24, 23, 30, 0, 0, loc))

	st := tr.Stats(user)
	if st.LastResetDay != "2026-08-25" {
		t.Fatalf("expected UTC trading day 2026-08-25, got %s", st.LastResetDay)
	}
}

func TestTracker_ManualReset(t *testing.T) {
	tr, _ := trackerAt(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))

	tr.RecordTrade(user, big.NewInt(999))
	tr.ResetDailyStats(user)

	st := tr.Stats(user)
	if st.TradeCount != 0 || st.DailySpent.Sign() != 0 {
		t.Fatalf("manual reset did not zero state: %+v", st)
	}
}

func TestTracker_UsersIsolated(t *testing.T) {
	other := common.HexToAddress("0x00000000000000000000000000000000000000f2")
	tr, _ := trackerAt(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))

	tr.RecordTrade(user, big.NewInt(10))
	if st := tr.Stats(other); st.TradeCount != 0 {
		t.Fatalf("budget state leaked across users: %+v", st)
	}
}
