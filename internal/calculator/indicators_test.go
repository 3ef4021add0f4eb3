package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityScreener/internal/model"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.Equal(t, model.Some(4), got)

	got, err = CalculateSMA([]float64{1, 2}, 3)
	require.NoError(t, err)
	assert.False(t, got.Valid, "short history must be absent, not zero")

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestSMASeries(t *testing.T) {
	got, err := SMASeries([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.Float{model.None, model.Some(1.5), model.Some(2.5), model.Some(3.5)}, got)
}

func TestSMA_LongPeriodNeedsFullHistory(t *testing.T) {
	closes := make([]float64, 199)
	for i := range closes {
		closes[i] = 100
	}
	got, err := CalculateSMA(closes, 200)
	require.NoError(t, err)
	assert.False(t, got.Valid)

	got, err = CalculateSMA(append(closes, 100), 200)
	require.NoError(t, err)
	assert.Equal(t, model.Some(100), got)
}

func TestEMASeries_SeededWithSMA(t *testing.T) {
	got, err := EMASeries([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 2.0, got[2].V, 1e-12)
	assert.InDelta(t, 3.0, got[3].V, 1e-12)
	assert.InDelta(t, 4.0, got[4].V, 1e-12)
}

var wilderCloses = []float64{
	44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
	45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
}

func TestCalculateRSI(t *testing.T) {
	got, err := CalculateRSI(wilderCloses[:15], 14)
	require.NoError(t, err)
	require.True(t, got.Valid)
	assert.InDelta(t, 70.464135, got.V, 1e-5)

	got, err = CalculateRSI(wilderCloses, 14)
	require.NoError(t, err)
	assert.InDelta(t, 57.915021, got.V, 1e-5)
}

func TestCalculateRSI_Edges(t *testing.T) {
	got, err := CalculateRSI(wilderCloses[:14], 14)
	require.NoError(t, err)
	assert.False(t, got.Valid, "14 closes give only 13 deltas")

	rising := make([]float64, 30)
	falling := make([]float64, 30)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 100 - float64(i)
	}
	got, _ = CalculateRSI(rising, 14)
	assert.Equal(t, model.Some(100), got)
	got, _ = CalculateRSI(falling, 14)
	assert.Equal(t, model.Some(0), got)
}

func TestCalculateRSI_Bounded(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + 20*math.Sin(float64(i)/7) + float64(i%5)
	}
	for n := 15; n <= len(closes); n += 17 {
		got, err := CalculateRSI(closes[:n], 14)
		require.NoError(t, err)
		require.True(t, got.Valid)
		assert.GreaterOrEqual(t, got.V, 0.0)
		assert.LessOrEqual(t, got.V, 100.0)
	}
}

func TestCalculateMACD_Availability(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + float64(i%3)
	}

	m, err := CalculateMACD(closes[:33], 12, 26, 9)
	require.NoError(t, err)
	assert.False(t, m.Line[24].Valid)
	assert.True(t, m.Line[25].Valid, "line is defined once the slow EMA is")
	assert.False(t, m.Signal[32].Valid)

	m, err = CalculateMACD(closes[:34], 12, 26, 9)
	require.NoError(t, err)
	assert.True(t, m.Signal[33].Valid, "signal is defined at bar slow+signal-1")

	m, err = CalculateMACD(closes, 12, 26, 9)
	require.NoError(t, err)
	for i := range closes {
		if !m.Signal[i].Valid {
			assert.False(t, m.Histogram[i].Valid)
			continue
		}
		assert.InDelta(t, m.Line[i].V-m.Signal[i].V, m.Histogram[i].V, 1e-12)
	}
}

func TestCalculateMACD_RejectsBadPeriods(t *testing.T) {
	_, err := CalculateMACD([]float64{1, 2, 3}, 26, 12, 9)
	assert.Error(t, err)
	_, err = CalculateMACD([]float64{1, 2, 3}, 12, 26, 0)
	assert.Error(t, err)
}

func TestCalculateLow(t *testing.T) {
	bars := []model.Bar{{Low: 5}, {Low: 3}, {Low: 4}, {Low: 6}}
	got, err := CalculateLow(bars, 2)
	require.NoError(t, err)
	assert.Equal(t, model.Some(4), got)

	got, err = CalculateLow(bars, 10)
	require.NoError(t, err)
	assert.Equal(t, model.Some(3), got)

	got, err = CalculateLow(nil, 10)
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestPeakAbovePct(t *testing.T) {
	values := []float64{100, 120, 110, 105}
	ref := []model.Float{model.None, model.Some(100), model.Some(100), model.Some(100)}

	got := PeakAbovePct(values, ref, 0, 3)
	assert.InDelta(t, 20.0, got.V, 1e-12)

	got = PeakAbovePct(values, ref, 0, 1)
	assert.False(t, got.Valid)
}

func series(closes []float64) *model.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return &model.BarSeries{Symbol: "TEST", Bars: bars}
}

func TestCompute_ShortHistory(t *testing.T) {
	snap, err := Compute(series([]float64{100}), DefaultPeriods())
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Close)
	assert.False(t, snap.SMAShort.Valid)
	assert.False(t, snap.SMALong.Valid)
	assert.False(t, snap.RSI.Valid)
	assert.False(t, snap.MACD.Valid)
	assert.False(t, snap.PrevClose.Valid)
	assert.True(t, snap.Low52w.Valid)

	_, err = Compute(&model.BarSeries{Symbol: "EMPTY"}, DefaultPeriods())
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestCompute_FullHistory(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i)*50/299
	}
	snap, err := Compute(series(closes), DefaultPeriods())
	require.NoError(t, err)

	want, _ := CalculateSMA(closes, 200)
	require.True(t, snap.SMALong.Valid)
	assert.InDelta(t, want.V, snap.SMALong.V, 1e-9)
	assert.True(t, snap.SMAShort.V > snap.SMALong.V)
	assert.True(t, snap.MACDSignal.Valid)
	assert.Equal(t, model.Some(1000), snap.AvgVolume)
	assert.True(t, snap.PrevSMALong.Valid)
	assert.True(t, snap.PeakAboveLongPct.Valid)
}

func TestCompute_NonFinite(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	closes[30] = math.Inf(1)
	_, err := Compute(series(closes), DefaultPeriods())
	assert.ErrorIs(t, err, ErrNonFinite)
}
