package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TradeResult summarizes the closed trades of one backtest run.
type TradeResult struct {
	// Count of all closed trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of winning trades that have positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of losing trades that have negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
	// Total commission paid across all legs.
	TotalFees float64 `yaml:"total_fees"`
}

// BacktestStats is the yaml-serializable summary written next to the equity
// curve after each evaluation phase.
type BacktestStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp"`
	// Phase names the dataset the run covered (train, validation, test).
	Phase string `yaml:"phase"`
	// InitialCapital is the cash the simulation started with.
	InitialCapital float64 `yaml:"initial_capital"`
	// FinalValue is the last point of the equity curve.
	FinalValue float64 `yaml:"final_value"`
	// TotalReturn is the fractional return over the run.
	TotalReturn float64 `yaml:"total_return"`
	// AnnualizedReturn is the return compounded to a 8760-hour year.
	AnnualizedReturn float64 `yaml:"annualized_return"`
	// MaxDrawdown is the largest peak-to-trough decline observed.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// CalmarRatio is AnnualizedReturn / MaxDrawdown (0 when suppressed).
	CalmarRatio float64 `yaml:"calmar_ratio"`
	// TradeResult summarizes the recorded trades, when a state recorder
	// was attached to the run.
	TradeResult TradeResult `yaml:"trade_result"`
	// Params is the parameter set the run used.
	Params StrategyParams `yaml:"params"`
	// DataPath is the path to the market data file used for this backtest.
	DataPath string `yaml:"data_path"`
	// EquityCurvePath is the path to the written equity curve CSV.
	EquityCurvePath string `yaml:"equity_curve_path"`
}

// WriteBacktestStats writes the stats of one or more runs to a yaml file.
func WriteBacktestStats(path string, stats []BacktestStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest stats to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest stats to file: %w", err)
	}

	return nil
}
