package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// StrategyParams holds one candidate parameter set for the trend-following
// strategy. Constructed once per trial and read-only afterwards.
//
// MomentumFast >= MomentumSlow is representable on purpose: the walk-forward
// evaluator scores such a set with the rejection penalty instead of erroring,
// so a black-box searcher can propose it freely.
type StrategyParams struct {
	// TrendLength is the EMA period used for the trend condition.
	TrendLength int `yaml:"trend_length" validate:"required,gt=0"`
	// StrengthLength is the ADX period used for the trend-strength condition.
	StrengthLength int `yaml:"strength_length" validate:"required,gt=0"`
	// StrengthThreshold is the ADX level above which the trend counts as strong.
	StrengthThreshold float64 `yaml:"strength_threshold" validate:"required,gt=0"`
	// MomentumFast, MomentumSlow and MomentumSignal are the MACD periods.
	MomentumFast   int `yaml:"momentum_fast" validate:"required,gt=0"`
	MomentumSlow   int `yaml:"momentum_slow" validate:"required,gt=0"`
	MomentumSignal int `yaml:"momentum_signal" validate:"required,gt=0"`
	// StopLoss is the fractional distance below (long) or above (short) the
	// entry price that forces an exit.
	StopLoss float64 `yaml:"stop_loss" validate:"required,gt=0,lt=1"`
	// TakeProfit is the fractional distance that locks in a gain.
	TakeProfit float64 `yaml:"take_profit" validate:"required,gt=0,lt=1"`
	// PositionFraction is the fraction of available cash committed per entry.
	PositionFraction float64 `yaml:"position_fraction" validate:"required,gt=0,lte=1"`
}

// Validate validates the StrategyParams struct.
func (p *StrategyParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy params", err)
	}

	return nil
}
