package policy

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// Tracker owns per-user daily budget state. The day rolls over lazily:
// state is zeroed on the first read or write whose trading day differs
// from lastResetDay, never by a timer.
type Tracker struct {
	mu    sync.Mutex
	state map[common.Address]*models.DailyBudgetState
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		state: make(map[common.Address]*models.DailyBudgetState),
		now:   time.Now,
	}
}

// Stats returns a copy of the user's state for the current trading day,
// rolling it over first if the day has changed.
func (t *Tracker) Stats(user common.Address) models.DailyBudgetState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.rolled(user)
	return models.DailyBudgetState{
		DailySpent:   new(big.Int).Set(st.DailySpent),
		TradeCount:   st.TradeCount,
		LastResetDay: st.LastResetDay,
		DailyLossPct: st.DailyLossPct,
	}
}

// RecordTrade commits one confirmed trade against the budget. Called only
// after a successful on-chain confirmation; an unconfirmed trade must
// never consume daily budget.
func (t *Tracker) RecordTrade(user common.Address, spent *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.rolled(user)
	st.TradeCount++
	if spent != nil {
		st.DailySpent.Add(st.DailySpent, spent)
	}
}

// ResetDailyStats is the explicit manual override.
func (t *Tracker) ResetDailyStats(user common.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[user] = t.fresh()
}

// rolled returns the user's state for today, zeroing it if the trading day
// has advanced since the last touch. Caller holds the lock.
func (t *Tracker) rolled(user common.Address) *models.DailyBudgetState {
	today := models.TradingDay(t.now())
	st, ok := t.state[user]
	if !ok || st.LastResetDay != today {
		st = t.fresh()
		t.state[user] = st
	}
	return st
}

func (t *Tracker) fresh() *models.DailyBudgetState {
	return &models.DailyBudgetState{
		DailySpent:   new(big.Int),
		LastResetDay: models.TradingDay(t.now()),
	}
}
