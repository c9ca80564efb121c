// Package backtest contains the simulation core: the per-bar position state
// machine, the Calmar-style objective metric and the walk-forward evaluator
// that scores candidate parameter sets.
package backtest

import (
	"time"

	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"go.uber.org/zap"
)

// PositionSimulator advances the Flat/Long/Short state machine bar by bar and
// produces the portfolio value series. Each instance owns its state for the
// duration of one Run call; runs do not share state, so a single simulator
// may be reused sequentially but not concurrently.
type PositionSimulator struct {
	initialCapital float64
	commission     commission_fee.CommissionFee
	log            *logger.Logger
	state          *BacktestState
}

// NewPositionSimulator creates a simulator with the given starting cash and
// commission model.
func NewPositionSimulator(initialCapital float64, commission commission_fee.CommissionFee, log *logger.Logger) *PositionSimulator {
	return &PositionSimulator{
		initialCapital: initialCapital,
		commission:     commission,
		log:            log,
		state:          nil,
	}
}

// SetState attaches an optional trade recorder. Closed round trips are
// written to it during Run; the simulation arithmetic is unaffected.
func (s *PositionSimulator) SetState(state *BacktestState) {
	s.state = state
}

// Run simulates the signal series over the bars and returns the portfolio
// value at every bar after the first. Per bar, in this order: risk-limit
// exits are checked first, then entries (a position closed this bar may be
// replaced the same bar at the same price), then the mark-to-market value is
// appended. Fewer than 2 bars yield an empty curve.
func (s *PositionSimulator) Run(bars []types.MarketData, signals types.SignalSeries, params types.StrategyParams) (types.EquityCurve, error) {
	if signals.Len() != len(bars) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"signals must be aligned with bars, got %d signals for %d bars", signals.Len(), len(bars))
	}

	curve := make(types.EquityCurve, 0, max(len(bars)-1, 0))

	cash := s.initialCapital
	position := 0.0 // asset quantity, > 0 long, < 0 short
	entryPrice := 0.0

	var open openPosition

	for i := 1; i < len(bars); i++ {
		price := bars[i].Close

		// 1. Risk-limit exit, evaluated before any entry at this bar's price.
		if position > 0 {
			stopPrice := entryPrice * (1 - params.StopLoss)
			targetPrice := entryPrice * (1 + params.TakeProfit)

			if price <= stopPrice || price >= targetPrice {
				notional := position * price
				exitFee := s.commission.Calculate(notional)
				cash += notional - exitFee

				reason := types.ExitReasonTakeProfit
				if price <= stopPrice {
					reason = types.ExitReasonStopLoss
				}

				s.recordClose(open, bars[i], price, exitFee, reason, notional-exitFee-open.outlay)

				position = 0.0
			}
		} else if position < 0 {
			stopPrice := entryPrice * (1 + params.StopLoss)
			targetPrice := entryPrice * (1 - params.TakeProfit)

			if price >= stopPrice || price <= targetPrice {
				notional := -position * price
				exitFee := s.commission.Calculate(notional)
				cash -= notional + exitFee

				reason := types.ExitReasonTakeProfit
				if price >= stopPrice {
					reason = types.ExitReasonStopLoss
				}

				s.recordClose(open, bars[i], price, exitFee, reason, open.outlay-notional-exitFee)

				position = 0.0
			}
		}

		// 2. Entry. Buy takes precedence when both signals fire. A long entry
		// is skipped silently when cash cannot cover the outlay; a short entry
		// has no capital check, mirroring the modeled exchange's margin rules.
		if position == 0 {
			if signals.Buy[i] {
				investment := cash * params.PositionFraction
				entryFee := s.commission.Calculate(investment)
				outlay := investment + entryFee

				if cash > outlay {
					cash -= outlay
					position = investment / price
					entryPrice = price
					open = openPosition{
						side:     types.PositionTypeLong,
						quantity: position,
						time:     bars[i].Time,
						price:    price,
						fee:      entryFee,
						outlay:   outlay,
					}
				}
			} else if signals.Sell[i] {
				investment := cash * params.PositionFraction
				entryFee := s.commission.Calculate(investment)
				cash += investment - entryFee
				position = -(investment / price)
				entryPrice = price
				open = openPosition{
					side:     types.PositionTypeShort,
					quantity: -position,
					time:     bars[i].Time,
					price:    price,
					fee:      entryFee,
					outlay:   investment - entryFee,
				}
			}
		}

		// 3. Mark to market. A short is valued as cash minus the liability to
		// buy the position back, not cash plus a notional holding.
		value := cash
		if position > 0 {
			value += position * price
		} else if position < 0 {
			value = cash - (-position * price)
		}

		curve = append(curve, types.EquityPoint{Time: bars[i].Time, Value: value})
	}

	return curve, nil
}

// FinalValue runs the simulation and returns only the ending portfolio
// value, defaulting to the initial capital when fewer than 2 bars were
// available.
func (s *PositionSimulator) FinalValue(bars []types.MarketData, signals types.SignalSeries, params types.StrategyParams) (float64, error) {
	curve, err := s.Run(bars, signals, params)
	if err != nil {
		return 0, err
	}

	if len(curve) == 0 {
		return s.initialCapital, nil
	}

	return curve.Last().Value, nil
}

// openPosition carries the entry leg of the current position so the round
// trip can be recorded when it closes.
type openPosition struct {
	side     types.PositionType
	quantity float64
	time     time.Time
	price    float64
	fee      float64
	outlay   float64
}

func (s *PositionSimulator) recordClose(open openPosition, bar types.MarketData, price, exitFee float64, reason string, pnl float64) {
	if s.state == nil {
		return
	}

	trade := types.Trade{
		Side:       open.side,
		Quantity:   open.quantity,
		EntryTime:  open.time,
		EntryPrice: open.price,
		ExitTime:   bar.Time,
		ExitPrice:  price,
		Fees:       open.fee + exitFee,
		PnL:        pnl,
		ExitReason: reason,
	}

	if err := s.state.RecordTrade(trade); err != nil {
		s.log.Warn("failed to record trade", zap.Error(err))
	}
}
