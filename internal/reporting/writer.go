package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-optimizer/internal/types"
)

// ResultWriter defines the interface for writing optimizer results
type ResultWriter interface {
	// WriteEquityCurve writes one phase's equity curve and returns the path
	// of the written file
	WriteEquityCurve(phase string, curve types.EquityCurve) (string, error)

	// WriteTrades writes one phase's closed trades
	WriteTrades(phase string, trades []types.Trade) error

	// WriteStats writes the collected run statistics
	WriteStats(stats []types.BacktestStats) error

	// RunDir returns the directory this run writes into
	RunDir() string
}

// CSVWriter implements ResultWriter by writing CSV files plus a yaml stats
// summary into a timestamped run directory.
type CSVWriter struct {
	baseDir string
	runDir  string
}

// NewCSVWriter creates a new CSVWriter with the given base directory
func NewCSVWriter(baseDir string) (ResultWriter, error) {
	// Create a directory for this run using current timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	runDir := filepath.Join(baseDir, timestamp)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	return &CSVWriter{
		baseDir: baseDir,
		runDir:  runDir,
	}, nil
}

// RunDir implements ResultWriter.
func (w *CSVWriter) RunDir() string {
	return w.runDir
}

// WriteEquityCurve implements ResultWriter.
func (w *CSVWriter) WriteEquityCurve(phase string, curve types.EquityCurve) (string, error) {
	path := filepath.Join(w.runDir, fmt.Sprintf("%s_equity_curve.csv", phase))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create equity curve file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"timestamp", "equity"}); err != nil {
		return "", fmt.Errorf("failed to write equity curve header: %w", err)
	}

	for _, point := range curve {
		record := []string{
			point.Time.Format(time.RFC3339),
			fmt.Sprintf("%f", point.Value),
		}

		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write equity curve point: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush equity curve: %w", err)
	}

	return path, nil
}

// WriteTrades implements ResultWriter.
func (w *CSVWriter) WriteTrades(phase string, trades []types.Trade) error {
	path := filepath.Join(w.runDir, fmt.Sprintf("%s_trades.csv", phase))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trades file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{
		"id", "side", "quantity", "entry_time", "entry_price",
		"exit_time", "exit_price", "fees", "pnl", "exit_reason",
	}); err != nil {
		return fmt.Errorf("failed to write trades header: %w", err)
	}

	for _, trade := range trades {
		record := []string{
			trade.ID,
			string(trade.Side),
			fmt.Sprintf("%f", trade.Quantity),
			trade.EntryTime.Format(time.RFC3339),
			fmt.Sprintf("%f", trade.EntryPrice),
			trade.ExitTime.Format(time.RFC3339),
			fmt.Sprintf("%f", trade.ExitPrice),
			fmt.Sprintf("%f", trade.Fees),
			fmt.Sprintf("%f", trade.PnL),
			trade.ExitReason,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush trades: %w", err)
	}

	return nil
}

// WriteStats implements ResultWriter.
func (w *CSVWriter) WriteStats(stats []types.BacktestStats) error {
	return types.WriteBacktestStats(filepath.Join(w.runDir, "stats.yaml"), stats)
}
