package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// SignalSource provides the next trading recommendation.
type SignalSource interface {
	Latest(ctx context.Context) (*models.TradingSignal, error)
}

// Executor runs one gated execution attempt.
type Executor interface {
	Execute(ctx context.Context, user common.Address, sig *models.TradingSignal) *models.ExecutionResult
}

// Notifier receives operator-facing status lines. Nil disables it.
type Notifier interface {
	Send(msg string)
}

// Options tune the polling loop.
type Options struct {
	PollInterval time.Duration
	Cooldown     time.Duration
}

// Service owns the automated trading loop: poll the signal source, hand
// each actionable signal to the executor, cool down after a confirmed
// trade. The policy gate decides whether anything actually executes.
type Service struct {
	mu     sync.Mutex
	runner *runner
}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Start(ctx context.Context, source SignalSource, exec Executor, notify Notifier, operator common.Address, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner != nil && s.runner.isRunning() {
		fmt.Println("[TRADER] Already running")
		return nil
	}
	if opts.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	if notify != nil {
		notify.Send(fmt.Sprintf("Starting automated trading loop for %s (poll every %s)", operator.Hex(), opts.PollInterval))
	}

	r := &runner{
		source:   source,
		exec:     exec,
		operator: operator,
		opts:     opts,
		stopCh:   make(chan struct{}),
	}
	s.runner = r
	r.running = true

	go func() {
		r.run(ctx)
		fmt.Println("[TRADER] Poll loop exited")
	}()

	fmt.Println("[TRADER] Started successfully")
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner != nil {
		s.runner.stop()
		s.runner = nil
	}
	fmt.Println("[TRADER] Stopped")
}

type runner struct {
	source   SignalSource
	exec     Executor
	operator common.Address
	opts     Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func (r *runner) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		close(r.stopCh)
		r.running = false
	}
}

func (r *runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

func (r *runner) poll(ctx context.Context) {
	sig, err := r.source.Latest(ctx)
	if err != nil {
		fmt.Printf("[TRADER] Signal fetch failed: %v\n", err)
		return
	}

	// Holds are the common case; skip them without burning an attempt.
	if sig.Action == models.ActionHold {
		fmt.Printf("[TRADER] Hold signal (confidence %d), nothing to do\n", sig.Confidence)
		return
	}

	fmt.Printf("[TRADER] Actionable signal: %s %.6f %s (confidence %d, risk %s)\n",
		sig.Action, sig.Amount, sig.Token, sig.Confidence, sig.RiskAssessment)

	res := r.exec.Execute(ctx, r.operator, sig)
	if res.Success && r.opts.Cooldown > 0 {
		fmt.Printf("[TRADER] Trade confirmed, cooling down %s\n", r.opts.Cooldown)
		select {
		case <-ctx.Done():
		case <-r.stopCh:
		case <-time.After(r.opts.Cooldown):
		}
	}
}
