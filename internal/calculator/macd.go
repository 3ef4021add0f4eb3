package calculator

import (
	"fmt"

	"EquityScreener/internal/model"
)

// MACDSeries holds the MACD line, signal line and histogram per bar.
type MACDSeries struct {
	Line      []model.Float
	Signal    []model.Float
	Histogram []model.Float
}

// CalculateMACD computes EMA(fast) - EMA(slow), its EMA(signal), and the
// histogram. The line is defined from bar slow onwards; the signal line
// is seeded with the SMA of the first signal defined line values, so it
// is defined from bar slow+signal-1. For 12/26/9 the seed covers line
// values 25..33, so 34 closes define the signal, not 35.
func CalculateMACD(closes []float64, fast, slow, signal int) (*MACDSeries, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, errPeriod
	}
	if fast >= slow {
		return nil, fmt.Errorf("macd fast period %d must be below slow period %d", fast, slow)
	}

	emaFast, err := EMASeries(closes, fast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := EMASeries(closes, slow)
	if err != nil {
		return nil, err
	}

	n := len(closes)
	res := &MACDSeries{
		Line:      make([]model.Float, n),
		Signal:    make([]model.Float, n),
		Histogram: make([]model.Float, n),
	}
	if n < slow {
		return res, nil
	}

	start := slow - 1
	defined := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		v := emaFast[i].V - emaSlow[i].V
		res.Line[i] = model.Some(v)
		defined = append(defined, v)
	}

	sig, err := EMASeries(defined, signal)
	if err != nil {
		return nil, err
	}
	for j, s := range sig {
		if !s.Valid {
			continue
		}
		i := start + j
		res.Signal[i] = s
		res.Histogram[i] = model.Some(res.Line[i].V - s.V)
	}
	return res, nil
}
