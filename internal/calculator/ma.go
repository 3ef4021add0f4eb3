package calculator

import (
	"errors"

	"EquityScreener/internal/model"
)

var errPeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the last period values.
// Returns model.None when fewer than period values are available.
func CalculateSMA(values []float64, period int) (model.Float, error) {
	if period <= 0 {
		return model.None, errPeriod
	}
	if len(values) < period {
		return model.None, nil
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return model.Some(sum / float64(period)), nil
}

// SMASeries returns the simple moving average ending at every index.
// Indices before period-1 are model.None.
func SMASeries(values []float64, period int) ([]model.Float, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := make([]model.Float, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = model.Some(sum / float64(period))
		}
	}
	return out, nil
}

// CalculateAverageVolume returns the mean of the last period volumes.
func CalculateAverageVolume(series *model.BarSeries, period int) (model.Float, error) {
	return CalculateSMA(series.Volumes(), period)
}
