package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"EquityScreener/internal/metrics"
	"EquityScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols missing from Series get a generated gently rising series.
type MockFetcher struct {
	Series       map[string][]model.Bar
	Fundamentals map[string]*model.Fundamentals
	Errors       map[string]error // returned for the symbol on every call
	BasePrice    float64
	Start        time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) (*model.BarSeries, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	bars, ok := m.Series[symbol]
	if !ok {
		bars = GenerateBars(m.BasePrice, m.Start, days)
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return &model.BarSeries{Symbol: symbol, Bars: bars}, nil
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	rec, ok := m.Fundamentals[symbol]
	if !ok {
		return nil, ErrUnavailable
	}
	return rec, nil
}

// GenerateBars builds count weekday bars starting at start, drifting up
// 0.1% per bar from basePrice.
func GenerateBars(basePrice float64, start time.Time, count int) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	bars := make([]model.Bar, count)
	day := start
	for i := 0; i < count; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   day,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

// Merged queries several fundamentals providers in order and fills each
// field from the first provider that has it.
type Merged []FundamentalsProvider

func (m Merged) Name() string {
	names := make([]string, len(m))
	for i, p := range m {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

// FetchFundamentals returns ErrUnavailable only when every provider is
// unavailable; other provider failures are logged when a peer succeeds.
func (m Merged) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	var merged *model.Fundamentals
	var errs []error
	for _, p := range m {
		rec, err := p.FetchFundamentals(ctx, symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if merged == nil {
			merged = &model.Fundamentals{Symbol: symbol}
		}
		merged.Merge(rec)
	}
	if merged != nil {
		for _, err := range errs {
			log.Printf("[WARN] fundamentals %s partial: %v", symbol, err)
		}
		return merged, nil
	}
	if len(errs) == 0 {
		return nil, ErrUnavailable
	}
	return nil, errors.Join(errs...)
}

// Collector fetches everything one ticker needs, with retries.
type Collector struct {
	Bars         BarProvider
	Fundamentals FundamentalsProvider // optional
	Retry        RetryPolicy
	LookbackDays int
	Metrics      *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(bars BarProvider, funds FundamentalsProvider, retry RetryPolicy, lookbackDays int) *Collector {
	return &Collector{Bars: bars, Fundamentals: funds, Retry: retry, LookbackDays: lookbackDays}
}

// Collect fetches the bar series and fundamentals for symbol. Bar errors
// are returned. Fundamentals are best effort: an unavailable record is
// nil, any other failure yields an empty record carrying FetchError.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.BarSeries, *model.Fundamentals, error) {
	series, err := Retry(ctx, c.Retry, "fetch bars "+symbol, func() { c.Metrics.IncRetry("bars") },
		func(ctx context.Context) (*model.BarSeries, error) {
			return c.Bars.FetchDailyBars(ctx, symbol, c.LookbackDays)
		})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if series == nil {
		return nil, nil, fmt.Errorf("fetch daily bars: %s returned no series: %w", c.Bars.Name(), ErrUnavailable)
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}

	if c.Fundamentals == nil {
		return series, nil, nil
	}
	rec, err := Retry(ctx, c.Retry, "fetch fundamentals "+symbol, func() { c.Metrics.IncRetry("fundamentals") },
		func(ctx context.Context) (*model.Fundamentals, error) {
			return c.Fundamentals.FetchFundamentals(ctx, symbol)
		})
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return series, nil, nil
		}
		log.Printf("[WARN] fundamentals %s: %v", symbol, err)
		return series, &model.Fundamentals{Symbol: symbol, FetchError: err.Error()}, nil
	}
	return series, rec, nil
}
