package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// PolicyRepo persists per-user policy configs. Spend limits travel as
// decimal strings so base-unit integers survive the round trip unclipped;
// the approved-token set rides in a JSONB column.
type PolicyRepo struct {
	pool *pgxpool.Pool
}

func NewPolicyRepo(pool *pgxpool.Pool) *PolicyRepo {
	return &PolicyRepo{pool: pool}
}

func (r *PolicyRepo) Upsert(ctx context.Context, user common.Address, cfg *models.PolicyConfig) error {
	tokens, err := encodeApprovedTokens(cfg.ApprovedTokens)
	if err != nil {
		return fmt.Errorf("encode approved tokens: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO policy_configs
		 (user_address, enabled, min_confidence, max_daily_trades, max_daily_loss_pct,
		  max_daily_spend, max_single_trade, approved_tokens, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
		 ON CONFLICT (user_address) DO UPDATE SET
		   enabled = EXCLUDED.enabled,
		   min_confidence = EXCLUDED.min_confidence,
		   max_daily_trades = EXCLUDED.max_daily_trades,
		   max_daily_loss_pct = EXCLUDED.max_daily_loss_pct,
		   max_daily_spend = EXCLUDED.max_daily_spend,
		   max_single_trade = EXCLUDED.max_single_trade,
		   approved_tokens = EXCLUDED.approved_tokens,
		   updated_at = NOW()`,
		user.Hex(), cfg.Enabled, cfg.MinConfidence, cfg.MaxDailyTrades, cfg.MaxDailyLossPct,
		bigString(cfg.MaxDailySpend), bigString(cfg.MaxSingleTrade), tokens,
	)
	return err
}

func (r *PolicyRepo) GetAll(ctx context.Context) (map[common.Address]*models.PolicyConfig, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_address, enabled, min_confidence, max_daily_trades, max_daily_loss_pct,
		        max_daily_spend, max_single_trade, approved_tokens
		 FROM policy_configs`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[common.Address]*models.PolicyConfig)
	for rows.Next() {
		var (
			addr          string
			cfg           models.PolicyConfig
			dailySpend    *string
			singleTrade   *string
			rawTokens     []byte
		)
		if err := rows.Scan(&addr, &cfg.Enabled, &cfg.MinConfidence, &cfg.MaxDailyTrades,
			&cfg.MaxDailyLossPct, &dailySpend, &singleTrade, &rawTokens); err != nil {
			return nil, err
		}
		if cfg.MaxDailySpend, err = parseBig(dailySpend); err != nil {
			return nil, fmt.Errorf("policy for %s: %w", addr, err)
		}
		if cfg.MaxSingleTrade, err = parseBig(singleTrade); err != nil {
			return nil, fmt.Errorf("policy for %s: %w", addr, err)
		}
		if cfg.ApprovedTokens, err = decodeApprovedTokens(rawTokens); err != nil {
			return nil, fmt.Errorf("policy for %s: %w", addr, err)
		}
		out[common.HexToAddress(addr)] = &cfg
	}
	return out, rows.Err()
}

// --- encoding helpers ---

func encodeApprovedTokens(tokens map[common.Address]*big.Int) ([]byte, error) {
	m := make(map[string]string, len(tokens))
	for addr, allowance := range tokens {
		m[addr.Hex()] = allowance.String()
	}
	return json.Marshal(m)
}

func decodeApprovedTokens(raw []byte) (map[common.Address]*big.Int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[common.Address]*big.Int, len(m))
	for addr, allowance := range m {
		v, ok := new(big.Int).SetString(allowance, 10)
		if !ok {
			return nil, fmt.Errorf("bad allowance %q for token %s", allowance, addr)
		}
		out[common.HexToAddress(addr)] = v
	}
	return out, nil
}

func bigString(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func parseBig(s *string) (*big.Int, error) {
	if s == nil {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return nil, fmt.Errorf("bad integer %q", *s)
	}
	return v, nil
}
