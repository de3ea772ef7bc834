package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

type ExecutionRepo struct {
	pool *pgxpool.Pool
}

func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

func (r *ExecutionRepo) Record(ctx context.Context, rec *models.ExecutionRecord) (*models.ExecutionRecord, error) {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	td := models.TradingDay(ts)

	row := r.pool.QueryRow(ctx,
		`INSERT INTO executed_trades
		 (attempt_id, timestamp, trading_day, user_address, action,
		  input_token, output_token, amount_in, amount_out,
		  tx_hash, gas_used, success, error_code, error_reason)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 RETURNING *`,
		rec.AttemptID, ts, td, rec.UserAddress, rec.Action,
		rec.InputToken, rec.OutputToken, rec.AmountIn, rec.AmountOut,
		rec.TxHash, rec.GasUsed, rec.Success, rec.ErrorCode, rec.ErrorReason,
	)
	return scanExecution(row)
}

// GetByDay returns a user's attempts for one trading day.
// If successOnly is non-nil, filters by outcome.
func (r *ExecutionRepo) GetByDay(ctx context.Context, user, tradingDay string, successOnly *bool) ([]models.ExecutionRecord, error) {
	query, args := buildFilteredQuery(
		`SELECT * FROM executed_trades WHERE user_address = $1 AND trading_day = $2`,
		[]any{user, tradingDay},
		successOnly,
	)
	query += " ORDER BY timestamp ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExecutions(rows)
}

// GetAll returns a user's most recent attempts.
// If successOnly is non-nil, filters by outcome.
func (r *ExecutionRepo) GetAll(ctx context.Context, user string, limit int, successOnly *bool) ([]models.ExecutionRecord, error) {
	query, args := buildFilteredQuery(
		`SELECT * FROM executed_trades WHERE user_address = $1`,
		[]any{user},
		successOnly,
	)
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExecutions(rows)
}

// GetStats aggregates a user's execution history.
func (r *ExecutionRepo) GetStats(ctx context.Context, user string) (*models.ExecutionStats, error) {
	var s models.ExecutionStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(CASE WHEN success THEN 1 END),
			COUNT(CASE WHEN NOT success THEN 1 END),
			MIN(timestamp),
			MAX(timestamp)
		 FROM executed_trades WHERE user_address = $1`,
		user,
	).Scan(&s.TotalAttempts, &s.Confirmed, &s.Failed, &s.FirstAttempt, &s.LastAttempt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountToday counts a user's confirmed executions for the current day.
func (r *ExecutionRepo) CountToday(ctx context.Context, user string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM executed_trades
		 WHERE user_address = $1 AND trading_day = $2 AND success`,
		user, models.TradingDayNow(),
	).Scan(&count)
	return count, err
}

// buildFilteredQuery appends a success clause when successOnly is non-nil.
func buildFilteredQuery(baseQuery string, baseArgs []any, successOnly *bool) (string, []any) {
	if successOnly == nil {
		return baseQuery, baseArgs
	}
	args := append(baseArgs, *successOnly)
	return baseQuery + fmt.Sprintf(" AND success = $%d", len(args)), args
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanExecution(row scannable) (*models.ExecutionRecord, error) {
	var rec models.ExecutionRecord
	var td time.Time
	err := row.Scan(
		&rec.ID, &rec.AttemptID, &rec.Timestamp, &td, &rec.UserAddress, &rec.Action,
		&rec.InputToken, &rec.OutputToken, &rec.AmountIn, &rec.AmountOut,
		&rec.TxHash, &rec.GasUsed, &rec.Success, &rec.ErrorCode, &rec.ErrorReason,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.TradingDay = td.Format("2006-01-02")
	return &rec, nil
}

func collectExecutions(rows rowsIter) ([]models.ExecutionRecord, error) {
	var out []models.ExecutionRecord
	for rows.Next() {
		var rec models.ExecutionRecord
		var td time.Time
		if err := rows.Scan(
			&rec.ID, &rec.AttemptID, &rec.Timestamp, &td, &rec.UserAddress, &rec.Action,
			&rec.InputToken, &rec.OutputToken, &rec.AmountIn, &rec.AmountOut,
			&rec.TxHash, &rec.GasUsed, &rec.Success, &rec.ErrorCode, &rec.ErrorReason,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.TradingDay = td.Format("2006-01-02")
		out = append(out, rec)
	}
	return out, rows.Err()
}
