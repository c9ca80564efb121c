package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source backed by the database at
// the given path. Use ":memory:" for an in-memory database. This is distinct
// from Initialize() which loads candle data into the database.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize implements DataSource. It builds a cleaned market_data view over
// the CSV file at path: header names are normalized to lowercase snake case,
// rows whose timestamp cannot be parsed are dropped, duplicate timestamps
// keep the first occurrence in file order, and the view is read back in
// chronological order.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	escaped := strings.ReplaceAll(path, "'", "''")

	columns, err := d.csvColumns(escaped)
	if err != nil {
		return err
	}

	timeColumn, err := pickColumn(columns, "date", "time", "timestamp")
	if err != nil {
		return err
	}

	volumeColumn, err := pickColumn(columns, "volume", "volume_usdt")
	if err != nil {
		return err
	}

	for _, required := range []string{"open", "high", "low", "close"} {
		if !columns[required] {
			return errors.Newf(errors.ErrCodeDataNotFound, "required column %q not found in %s", required, path)
		}
	}

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Raw SQL because squirrel does not support CREATE VIEW. Timestamps are
	// strings in day-first format; anything unparseable becomes NULL and is
	// filtered out.
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		WITH raw AS (
			SELECT *, row_number() OVER () AS row_order
			FROM read_csv_auto('%s', normalize_names=true, all_varchar=true)
		),
		parsed AS (
			SELECT
				coalesce(try_strptime(%s, '%%d/%%m/%%Y %%H:%%M'), try_cast(%s AS TIMESTAMP)) AS time,
				try_cast(open AS DOUBLE) AS open,
				try_cast(high AS DOUBLE) AS high,
				try_cast(low AS DOUBLE) AS low,
				try_cast(close AS DOUBLE) AS close,
				try_cast(%s AS DOUBLE) AS volume,
				row_order
			FROM raw
		),
		deduped AS (
			SELECT *, row_number() OVER (PARTITION BY time ORDER BY row_order) AS occurrence
			FROM parsed
			WHERE time IS NOT NULL
		)
		SELECT time, open, high, low, close, volume
		FROM deduped
		WHERE occurrence = 1
	`, escaped, timeColumn, timeColumn, volumeColumn)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create market data view", err)
	}

	var rawCount int
	if err := d.db.QueryRow(fmt.Sprintf(
		`SELECT COUNT(*) FROM read_csv_auto('%s', normalize_names=true, all_varchar=true)`, escaped,
	)).Scan(&rawCount); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to count raw rows", err)
	}

	cleanCount, err := d.Count(nil, nil)
	if err != nil {
		return err
	}

	if dropped := rawCount - cleanCount; dropped > 0 {
		d.logger.Info("dropped invalid or duplicate rows",
			zap.Int("dropped", dropped),
			zap.Int("kept", cleanCount),
		)
	}

	return nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.MarketData, error) {
	builder := d.sq.Select("time", "open", "high", "low", "close", "volume").
		From("market_data").
		OrderBy("time ASC")
	builder = applyRange(builder, start, end)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build candles query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query candles", err)
	}
	defer rows.Close()

	var bars []types.MarketData

	for rows.Next() {
		var bar types.MarketData

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan candle", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate candles", err)
	}

	return bars, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("market_data")
	builder = applyRange(builder, start, end)

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count candles", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db == nil {
		return nil
	}

	if err := d.db.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to close database", err)
	}

	return nil
}

// csvColumns returns the normalized header names of the CSV file.
func (d *DuckDBDataSource) csvColumns(escapedPath string) (map[string]bool, error) {
	rows, err := d.db.Query(fmt.Sprintf(
		`SELECT column_name FROM (DESCRIBE SELECT * FROM read_csv_auto('%s', normalize_names=true, all_varchar=true))`,
		escapedPath,
	))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to describe csv file", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate column names", err)
	}

	return columns, nil
}

// pickColumn returns the first candidate present in columns.
func pickColumn(columns map[string]bool, candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if columns[candidate] {
			return candidate, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeDataNotFound, "none of the columns %v found in csv file", candidates)
}

func applyRange(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder
}
