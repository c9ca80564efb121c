package types

import "time"

type PositionType string

const (
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"
)

const (
	ExitReasonStopLoss   string = "stop_loss"
	ExitReasonTakeProfit string = "take_profit"
)

// Trade is one closed round trip recorded by the backtest state.
type Trade struct {
	ID         string       `csv:"id"`
	Side       PositionType `csv:"side"`
	Quantity   float64      `csv:"quantity"`
	EntryTime  time.Time    `csv:"entry_time"`
	EntryPrice float64      `csv:"entry_price"`
	ExitTime   time.Time    `csv:"exit_time"`
	ExitPrice  float64      `csv:"exit_price"`
	// Fees is the commission paid across both legs.
	Fees float64 `csv:"fees"`
	// PnL is the realized cash delta of the round trip, net of fees.
	PnL float64 `csv:"pnl"`
	// ExitReason is which risk limit forced the exit.
	ExitReason string `csv:"exit_reason"`
}
