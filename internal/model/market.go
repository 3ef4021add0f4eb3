package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSeries is returned by BarSeries.Validate for malformed input.
var ErrInvalidSeries = errors.New("invalid bar series")

// Bar represents one trading day for one ticker.
// Date is the calendar day in the market-local time zone.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// BarSeries holds the daily bars of a single ticker, oldest first.
type BarSeries struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s *BarSeries) Len() int { return len(s.Bars) }

// Closes returns the closing prices in order.
func (s *BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the traded volumes in order, as floats for averaging.
func (s *BarSeries) Volumes() []float64 {
	vols := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// Validate checks the series invariants: a symbol, strictly increasing
// unique dates, positive open/high/low, a non-negative close and
// non-negative volume. Gaps between dates are allowed.
func (s *BarSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidSeries)
	}
	for i, b := range s.Bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return fmt.Errorf("%w: %s bar %d (%s) has non-positive price", ErrInvalidSeries, s.Symbol, i, b.Date.Format("2006-01-02"))
		}
		if b.Close < 0 {
			return fmt.Errorf("%w: %s bar %d (%s) has negative close", ErrInvalidSeries, s.Symbol, i, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: %s bar %d has negative volume", ErrInvalidSeries, s.Symbol, i)
		}
		if i > 0 && !b.Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%w: %s dates not strictly increasing at bar %d (%s)", ErrInvalidSeries, s.Symbol, i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
