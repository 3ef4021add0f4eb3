package collector

import (
	"context"
	"errors"

	"EquityScreener/internal/model"
)

// ErrUnavailable is the explicit "no data for this symbol" result.
// It is never retried.
var ErrUnavailable = errors.New("data unavailable")

// BarProvider fetches daily price history.
type BarProvider interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) (*model.BarSeries, error)
	Name() string
}

// FundamentalsProvider fetches non-price attributes. Any subset of
// fields may come back populated.
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	Name() string
}
