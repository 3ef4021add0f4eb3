package screen

import (
	"EquityScreener/internal/calculator"
	"EquityScreener/internal/fundamental"
	"EquityScreener/internal/signal"
	"EquityScreener/internal/strategy"

	"github.com/go-playground/validator/v10"
)

// Params holds every engine threshold. It maps onto the `screen:` section
// of the config file.
type Params struct {
	Periods      calculator.Periods `yaml:",inline"`
	Signals      signal.Thresholds  `yaml:",inline"`
	Fundamentals fundamental.Policy `yaml:",inline"`
	Classifier   strategy.Options   `yaml:"classifier"`
}

// DefaultParams returns the stock engine configuration.
func DefaultParams() Params {
	return Params{
		Periods:      calculator.DefaultPeriods(),
		Signals:      signal.DefaultThresholds(),
		Fundamentals: fundamental.DefaultPolicy(),
	}
}

var validate = validator.New()

// Validate checks every threshold. Failures are KindConfig errors.
func (p *Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return &Error{Kind: KindConfig, Err: err}
	}
	return nil
}
