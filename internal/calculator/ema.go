package calculator

import "EquityScreener/internal/model"

// EMASeries returns the exponential moving average at every index.
// The first defined value, at index period-1, is the SMA of the first
// period values; after that EMA_t = v_t*k + EMA_{t-1}*(1-k), k = 2/(period+1).
func EMASeries(values []float64, period int) ([]model.Float, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := make([]model.Float, len(values))
	if len(values) < period {
		return out, nil
	}
	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = model.Some(ema)

	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = model.Some(ema)
	}
	return out, nil
}
