// Package signal turns an indicator snapshot into named three-state signals.
//
// Most signals describe a sustained state on the latest bar. golden_cross
// and macd_bullish_cross are transitions: they are true only on the bar
// where the condition first holds after failing on the prior bar.
// retest_200 is a state evaluated over the retest lookback window.
package signal

import "EquityScreener/internal/model"

// Thresholds configures the signal cut-offs. Percentages are in percent
// units (5 means 5%).
type Thresholds struct {
	RSIOverbought         float64 `yaml:"rsi_overbought" validate:"gt=0,lte=100"`
	RSIOversold           float64 `yaml:"rsi_oversold" validate:"gte=0,ltfield=RSIOverbought"`
	RSIMomentumMin        float64 `yaml:"rsi_momentum_min" validate:"gte=0,lte=100"`
	RSIMomentumMax        float64 `yaml:"rsi_momentum_max" validate:"gtfield=RSIMomentumMin,lte=100"`
	RetestBandPct         float64 `yaml:"retest_band_pct" validate:"gt=0"`
	RetestMinExcursionPct float64 `yaml:"retest_min_excursion_pct" validate:"gtfield=RetestBandPct"`
	VolumeSurgeMultiple   float64 `yaml:"volume_surge_multiple" validate:"gt=0"`
}

// DefaultThresholds returns the stock cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought:         70,
		RSIOversold:           30,
		RSIMomentumMin:        50,
		RSIMomentumMax:        80,
		RetestBandPct:         5,
		RetestMinExcursionPct: 10,
		VolumeSurgeMultiple:   1.5,
	}
}

// Derive evaluates every signal against the snapshot. A signal whose
// inputs are absent is model.Unknown.
func Derive(s *model.Snapshot, t Thresholds) model.Signals {
	closeNow := model.Some(s.Close)
	golden := greater(s.SMAShort, s.SMALong)
	macdBull := greater(s.MACD, s.MACDSignal)

	return model.Signals{
		model.SignalAboveSMAShort:    greater(closeNow, s.SMAShort),
		model.SignalAboveSMALong:     greater(closeNow, s.SMALong),
		model.SignalGoldenTrend:      golden,
		model.SignalGoldenCross:      transition(golden, greater(s.PrevSMAShort, s.PrevSMALong)),
		model.SignalRetestLong:       retest(s, t),
		model.SignalRSIOverbought:    greater(s.RSI, model.Some(t.RSIOverbought)),
		model.SignalRSIOversold:      greater(model.Some(t.RSIOversold), s.RSI),
		model.SignalRSIMomentum:      and(greater(s.RSI, model.Some(t.RSIMomentumMin)), greater(model.Some(t.RSIMomentumMax), s.RSI)),
		model.SignalMACDBullish:      macdBull,
		model.SignalMACDBullishCross: transition(macdBull, greater(s.PrevMACD, s.PrevMACDSignal)),
		model.SignalVolumeSurge:      volumeSurge(s, t.VolumeSurgeMultiple),
		model.SignalAbove52wLow:      greater(closeNow, s.Low52w),
	}
}

// retest is true when the close sits on or just above the long SMA, within
// the band, after having been at least the minimum excursion above it
// during the lookback window.
func retest(s *model.Snapshot, t Thresholds) model.Tri {
	if !s.SMALong.Valid || !s.PeakAboveLongPct.Valid || s.SMALong.V == 0 {
		return model.Unknown
	}
	dist := (s.Close - s.SMALong.V) / s.SMALong.V * 100
	inBand := dist >= 0 && dist <= t.RetestBandPct
	return model.TriOf(inBand && s.PeakAboveLongPct.V >= t.RetestMinExcursionPct)
}

func volumeSurge(s *model.Snapshot, multiple float64) model.Tri {
	if !s.AvgVolume.Valid {
		return model.Unknown
	}
	return model.TriOf(float64(s.Volume) > multiple*s.AvgVolume.V)
}

func greater(a, b model.Float) model.Tri {
	if !a.Valid || !b.Valid {
		return model.Unknown
	}
	return model.TriOf(a.V > b.V)
}

func and(a, b model.Tri) model.Tri {
	if a == model.False || b == model.False {
		return model.False
	}
	if a == model.Unknown || b == model.Unknown {
		return model.Unknown
	}
	return model.True
}

// transition is true when now holds and prev did not.
func transition(now, prev model.Tri) model.Tri {
	if now == model.Unknown || prev == model.Unknown {
		return model.Unknown
	}
	return model.TriOf(now == model.True && prev == model.False)
}
