package backtest

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BacktestState records the closed round trips of a simulation run in an
// in-memory DuckDB table so they can be queried and summarized after the
// run. It is an optional sink; the simulator's arithmetic never depends on
// it.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewBacktestState opens an in-memory DuckDB database for trade recording.
func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open database", err)
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the trades table.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			side TEXT,
			quantity DOUBLE,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			fees DOUBLE,
			pnl DOUBLE,
			exit_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create trades table", err)
	}

	return nil
}

// RecordTrade inserts one closed round trip. A missing trade ID is assigned.
func (b *BacktestState) RecordTrade(trade types.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	query, args, err := b.sq.Insert("trades").
		Columns("id", "side", "quantity", "entry_time", "entry_price",
			"exit_time", "exit_price", "fees", "pnl", "exit_reason").
		Values(trade.ID, string(trade.Side), trade.Quantity, trade.EntryTime, trade.EntryPrice,
			trade.ExitTime, trade.ExitPrice, trade.Fees, trade.PnL, trade.ExitReason).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to build trade insert", err)
	}

	if _, err := b.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to insert trade", err)
	}

	return nil
}

// Trades returns all recorded trades in entry-time order.
func (b *BacktestState) Trades() ([]types.Trade, error) {
	query, args, err := b.sq.Select("id", "side", "quantity", "entry_time", "entry_price",
		"exit_time", "exit_price", "fees", "pnl", "exit_reason").
		From("trades").
		OrderBy("entry_time").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trades query", err)
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		var side string

		if err := rows.Scan(&trade.ID, &side, &trade.Quantity, &trade.EntryTime, &trade.EntryPrice,
			&trade.ExitTime, &trade.ExitPrice, &trade.Fees, &trade.PnL, &trade.ExitReason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.Side = types.PositionType(side)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate trades", err)
	}

	return trades, nil
}

// TradeResult aggregates the recorded trades into a summary. Fee and pnl
// totals are accumulated as decimals to avoid drift over long trade logs.
func (b *BacktestState) TradeResult() (types.TradeResult, error) {
	trades, err := b.Trades()
	if err != nil {
		return types.TradeResult{}, err
	}

	result := types.TradeResult{}
	totalFees := decimal.Zero

	for _, trade := range trades {
		result.NumberOfTrades++

		if trade.PnL > 0 {
			result.NumberOfWinningTrades++
		} else if trade.PnL < 0 {
			result.NumberOfLosingTrades++
		}

		totalFees = totalFees.Add(decimal.NewFromFloat(trade.Fees))
	}

	if result.NumberOfTrades > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(result.NumberOfTrades)
	}

	result.TotalFees = totalFees.InexactFloat64()

	return result, nil
}

// Cleanup drops all recorded trades so the state can be reused by the next
// run.
func (b *BacktestState) Cleanup() error {
	if _, err := b.db.Exec(`DELETE FROM trades`); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to clear trades", err)
	}

	return nil
}

// Close releases the underlying database.
func (b *BacktestState) Close() error {
	if b.db == nil {
		return nil
	}

	if err := b.db.Close(); err != nil {
		b.logger.Error("failed to close state database", zap.Error(err))

		return fmt.Errorf("failed to close state database: %w", err)
	}

	return nil
}
