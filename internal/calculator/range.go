package calculator

import (
	"math"

	"EquityScreener/internal/model"
)

// CalculateLow scans the most recent window bars and returns the lowest low.
// Shorter histories use every bar available; an empty series yields model.None.
func CalculateLow(bars []model.Bar, window int) (model.Float, error) {
	if window <= 0 {
		return model.None, errPeriod
	}
	n := len(bars)
	if n == 0 {
		return model.None, nil
	}
	start := n - window
	if start < 0 {
		start = 0
	}
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return model.Some(low), nil
}

// PeakAbovePct returns the largest percentage by which values sat above
// ref over indices [from, to). Indices where ref is undefined are ignored;
// if none is defined the result is model.None.
func PeakAbovePct(values []float64, ref []model.Float, from, to int) model.Float {
	if from < 0 {
		from = 0
	}
	peak := model.None
	for i := from; i < to && i < len(values); i++ {
		if !ref[i].Valid || ref[i].V == 0 {
			continue
		}
		pct := (values[i] - ref[i].V) / ref[i].V * 100
		if !peak.Valid || pct > peak.V {
			peak = model.Some(pct)
		}
	}
	return peak
}
