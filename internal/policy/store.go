package policy

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// ConfigPersister is the durable backing for policies. Nil is allowed; the
// store then runs memory-only (used by tests).
type ConfigPersister interface {
	Upsert(ctx context.Context, user common.Address, cfg *models.PolicyConfig) error
	GetAll(ctx context.Context) (map[common.Address]*models.PolicyConfig, error)
}

// Store owns every user's PolicyConfig. It is an explicitly constructed,
// injectable instance; there is deliberately no package-level singleton.
type Store struct {
	mu      sync.RWMutex
	configs map[common.Address]*models.PolicyConfig
	repo    ConfigPersister
}

func NewStore(repo ConfigPersister) *Store {
	return &Store{
		configs: make(map[common.Address]*models.PolicyConfig),
		repo:    repo,
	}
}

// Load warms the in-memory map from the persister.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}
	s.mu.Lock()
	s.configs = all
	s.mu.Unlock()
	fmt.Printf("[POLICY] Loaded %d policy configs from database\n", len(all))
	return nil
}

// Get returns a copy of the user's config, or false if the user never
// configured automation.
func (s *Store) Get(user common.Address) (*models.PolicyConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[user]
	if !ok {
		return nil, false
	}
	return copyConfig(cfg), true
}

// Upsert replaces the user's config wholesale.
func (s *Store) Upsert(ctx context.Context, user common.Address, cfg *models.PolicyConfig) error {
	s.mu.Lock()
	s.configs[user] = copyConfig(cfg)
	s.mu.Unlock()
	return s.persist(ctx, user, cfg)
}

// SetEnabled flips the enablement flag for an existing config.
func (s *Store) SetEnabled(ctx context.Context, user common.Address, enabled bool) error {
	s.mu.Lock()
	cfg, ok := s.configs[user]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no policy configured for %s", user.Hex())
	}
	cfg.Enabled = enabled
	snapshot := copyConfig(cfg)
	s.mu.Unlock()
	return s.persist(ctx, user, snapshot)
}

// EmergencyStop disables automation immediately. The coordinator re-checks
// this flag at the swap-submission boundary, so a stop issued while an
// execution is mid-flight still takes effect before broadcast.
func (s *Store) EmergencyStop(ctx context.Context, user common.Address) error {
	fmt.Printf("[POLICY] EMERGENCY STOP for %s\n", user.Hex())
	return s.SetEnabled(ctx, user, false)
}

// SetApprovedToken adds or updates one token's allowance cap.
func (s *Store) SetApprovedToken(ctx context.Context, user, token common.Address, allowance *big.Int) error {
	s.mu.Lock()
	cfg, ok := s.configs[user]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no policy configured for %s", user.Hex())
	}
	if cfg.ApprovedTokens == nil {
		cfg.ApprovedTokens = make(map[common.Address]*big.Int)
	}
	cfg.ApprovedTokens[token] = new(big.Int).Set(allowance)
	snapshot := copyConfig(cfg)
	s.mu.Unlock()
	return s.persist(ctx, user, snapshot)
}

// RemoveApprovedToken drops one token from the approved set.
func (s *Store) RemoveApprovedToken(ctx context.Context, user, token common.Address) error {
	s.mu.Lock()
	cfg, ok := s.configs[user]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no policy configured for %s", user.Hex())
	}
	delete(cfg.ApprovedTokens, token)
	snapshot := copyConfig(cfg)
	s.mu.Unlock()
	return s.persist(ctx, user, snapshot)
}

// SetSpendingLimits updates the two spend ceilings.
func (s *Store) SetSpendingLimits(ctx context.Context, user common.Address, maxDailySpend, maxSingleTrade *big.Int) error {
	s.mu.Lock()
	cfg, ok := s.configs[user]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no policy configured for %s", user.Hex())
	}
	cfg.MaxDailySpend = new(big.Int).Set(maxDailySpend)
	cfg.MaxSingleTrade = new(big.Int).Set(maxSingleTrade)
	snapshot := copyConfig(cfg)
	s.mu.Unlock()
	return s.persist(ctx, user, snapshot)
}

func (s *Store) persist(ctx context.Context, user common.Address, cfg *models.PolicyConfig) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Upsert(ctx, user, cfg); err != nil {
		return fmt.Errorf("persist policy: %w", err)
	}
	return nil
}

func copyConfig(cfg *models.PolicyConfig) *models.PolicyConfig {
	out := &models.PolicyConfig{
		Enabled:         cfg.Enabled,
		MinConfidence:   cfg.MinConfidence,
		MaxDailyTrades:  cfg.MaxDailyTrades,
		MaxDailyLossPct: cfg.MaxDailyLossPct,
	}
	if cfg.MaxDailySpend != nil {
		out.MaxDailySpend = new(big.Int).Set(cfg.MaxDailySpend)
	}
	if cfg.MaxSingleTrade != nil {
		out.MaxSingleTrade = new(big.Int).Set(cfg.MaxSingleTrade)
	}
	if cfg.ApprovedTokens != nil {
		out.ApprovedTokens = make(map[common.Address]*big.Int, len(cfg.ApprovedTokens))
		for token, allowance := range cfg.ApprovedTokens {
			out.ApprovedTokens[token] = new(big.Int).Set(allowance)
		}
	}
	return out
}
