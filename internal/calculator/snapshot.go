package calculator

import (
	"errors"
	"fmt"

	"EquityScreener/internal/model"
)

var (
	// ErrNoBars is returned when a series has no bars at all.
	ErrNoBars = errors.New("series has no bars")
	// ErrNonFinite is returned when a computed value is NaN or infinite.
	ErrNonFinite = errors.New("indicator produced a non-finite value")
)

// Periods configures the indicator lookbacks.
type Periods struct {
	SMAShort       int `yaml:"sma_short" validate:"gt=0"`
	SMALong        int `yaml:"sma_long" validate:"gtfield=SMAShort"`
	RSI            int `yaml:"rsi_period" validate:"gt=1"`
	MACDFast       int `yaml:"macd_fast" validate:"gt=0"`
	MACDSlow       int `yaml:"macd_slow" validate:"gtfield=MACDFast"`
	MACDSignal     int `yaml:"macd_signal" validate:"gt=0"`
	VolumeAvg      int `yaml:"volume_avg_period" validate:"gt=0"`
	RetestLookback int `yaml:"retest_lookback" validate:"gt=0"`
	LowWindow      int `yaml:"low_window" validate:"gt=0"`
}

// DefaultPeriods returns the standard daily lookbacks.
func DefaultPeriods() Periods {
	return Periods{
		SMAShort:       50,
		SMALong:        200,
		RSI:            14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		VolumeAvg:      20,
		RetestLookback: 40,
		LowWindow:      252,
	}
}

// Compute derives the indicator snapshot for the latest bar of series.
// Indicators whose lookback exceeds the history are left absent.
func Compute(series *model.BarSeries, p Periods) (*model.Snapshot, error) {
	n := series.Len()
	if n == 0 {
		return nil, ErrNoBars
	}
	closes := series.Closes()
	last := n - 1
	latest := series.Bars[last]

	smaShort, err := SMASeries(closes, p.SMAShort)
	if err != nil {
		return nil, fmt.Errorf("sma short: %w", err)
	}
	smaLong, err := SMASeries(closes, p.SMALong)
	if err != nil {
		return nil, fmt.Errorf("sma long: %w", err)
	}
	rsi, err := CalculateRSI(closes, p.RSI)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, err := CalculateMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	avgVol, err := CalculateAverageVolume(series, p.VolumeAvg)
	if err != nil {
		return nil, fmt.Errorf("average volume: %w", err)
	}
	low, err := CalculateLow(series.Bars, p.LowWindow)
	if err != nil {
		return nil, fmt.Errorf("low: %w", err)
	}

	snap := &model.Snapshot{
		Close:      latest.Close,
		High:       latest.High,
		Volume:     latest.Volume,
		SMAShort:   smaShort[last],
		SMALong:    smaLong[last],
		RSI:        rsi,
		MACD:       macd.Line[last],
		MACDSignal: macd.Signal[last],
		MACDHist:   macd.Histogram[last],
		AvgVolume:  avgVol,
		Low52w:     low,
	}
	if n >= 2 {
		prev := last - 1
		snap.PrevClose = model.Some(series.Bars[prev].Close)
		snap.PrevHigh = model.Some(series.Bars[prev].High)
		snap.PrevSMAShort = smaShort[prev]
		snap.PrevSMALong = smaLong[prev]
		snap.PrevMACD = macd.Line[prev]
		snap.PrevMACDSignal = macd.Signal[prev]
	}
	snap.PeakAboveLongPct = PeakAbovePct(closes, smaLong, last-p.RetestLookback, last)

	if !snap.Finite() {
		return nil, fmt.Errorf("%w: %s", ErrNonFinite, series.Symbol)
	}
	return snap, nil
}
