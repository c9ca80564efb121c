package engine

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config drives one optimization run.
type Config struct {
	// InitialCapital is the starting cash for every simulated phase.
	InitialCapital float64 `yaml:"initial_capital" validate:"gt=0"`
	// Broker selects the commission model.
	Broker commission_fee.Broker `yaml:"broker"`
	// CommissionRate is the per-leg rate used by the flat rate broker.
	CommissionRate float64 `yaml:"commission_rate" validate:"gte=0,lt=1"`
	// Trials is the number of parameter sets the optimizer evaluates.
	Trials int `yaml:"trials" validate:"gt=0"`
	// Seed fixes the search's random source. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
	// TrainFraction is the leading share of candles used for optimization.
	TrainFraction float64 `yaml:"train_fraction" validate:"gt=0,lt=1"`
	// ValidationFraction is the share following the training set. The
	// remainder is the final test set.
	ValidationFraction float64 `yaml:"validation_fraction" validate:"gt=0,lt=1"`
	// StartTime and EndTime optionally bound the candles read from the
	// data source.
	StartTime optional.Option[time.Time] `yaml:"start_time"`
	EndTime   optional.Option[time.Time] `yaml:"end_time"`
}

// UnmarshalYAML implements custom unmarshaling for Config.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCapital     float64               `yaml:"initial_capital"`
		Broker             commission_fee.Broker `yaml:"broker"`
		CommissionRate     float64               `yaml:"commission_rate"`
		Trials             int                   `yaml:"trials"`
		Seed               int64                 `yaml:"seed"`
		TrainFraction      float64               `yaml:"train_fraction"`
		ValidationFraction float64               `yaml:"validation_fraction"`
		StartTime          *time.Time            `yaml:"start_time"`
		EndTime            *time.Time            `yaml:"end_time"`
	}

	// Seed the plain struct with the current values so fields absent from
	// the yaml keep their defaults.
	config := plainConfig{
		InitialCapital:     c.InitialCapital,
		Broker:             c.Broker,
		CommissionRate:     c.CommissionRate,
		Trials:             c.Trials,
		Seed:               c.Seed,
		TrainFraction:      c.TrainFraction,
		ValidationFraction: c.ValidationFraction,
	}
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = config.InitialCapital
	c.Broker = config.Broker
	c.CommissionRate = config.CommissionRate
	c.Trials = config.Trials
	c.Seed = config.Seed
	c.TrainFraction = config.TrainFraction
	c.ValidationFraction = config.ValidationFraction

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the config after unmarshaling.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.TrainFraction+c.ValidationFraction >= 1 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"train_fraction (%v) plus validation_fraction (%v) must leave room for a test set",
			c.TrainFraction, c.ValidationFraction)
	}

	return nil
}

// ParseConfig unmarshals and validates a yaml config. Fields missing from
// the yaml keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() Config {
	return Config{
		InitialCapital:     1_000_000,
		Broker:             commission_fee.BrokerFlatRate,
		CommissionRate:     commission_fee.DefaultFlatRate,
		Trials:             50,
		Seed:               0,
		TrainFraction:      0.6,
		ValidationFraction: 0.2,
		StartTime:          optional.None[time.Time](),
		EndTime:            optional.None[time.Time](),
	}
}
