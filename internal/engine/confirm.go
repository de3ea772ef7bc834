package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// ConfirmRequest carries the operator's explicit consent for a manual
// execution. The phrase match is exact and case-sensitive.
type ConfirmRequest struct {
	Phrase             string `json:"phrase"`
	RiskAcknowledged   bool   `json:"risk_acknowledged"`
	AmountAcknowledged bool   `json:"amount_acknowledged"`
}

// Gate fronts the coordinator for manually confirmed executions. Each user
// may have at most one confirmed execution in flight; a second submission
// while the first runs is refused rather than queued.
type Gate struct {
	coord *Coordinator

	mu       sync.Mutex
	inflight map[common.Address]bool
}

func NewGate(coord *Coordinator) *Gate {
	return &Gate{
		coord:    coord,
		inflight: make(map[common.Address]bool),
	}
}

// ConfirmPhrase returns the phrase required to confirm the signal.
func ConfirmPhrase(sig *models.TradingSignal) string {
	return "EXECUTE " + strings.ToUpper(sig.Action)
}

// Submit validates the confirmation and delegates to the coordinator
// exactly once. Validation failures return an error without touching the
// coordinator; the execution outcome itself comes back as a result.
func (g *Gate) Submit(ctx context.Context, user common.Address, sig *models.TradingSignal, req ConfirmRequest) (*models.ExecutionResult, error) {
	if sig == nil {
		return nil, fmt.Errorf("no signal to confirm")
	}
	if want := ConfirmPhrase(sig); req.Phrase != want {
		return nil, fmt.Errorf("confirmation phrase must be exactly %q", want)
	}
	if !req.RiskAcknowledged {
		return nil, fmt.Errorf("risk acknowledgment required")
	}
	if !req.AmountAcknowledged {
		return nil, fmt.Errorf("amount acknowledgment required")
	}

	g.mu.Lock()
	if g.inflight[user] {
		g.mu.Unlock()
		return nil, fmt.Errorf("an execution for this user is already in flight")
	}
	g.inflight[user] = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inflight, user)
		g.mu.Unlock()
	}()

	return g.coord.Execute(ctx, user, sig), nil
}
