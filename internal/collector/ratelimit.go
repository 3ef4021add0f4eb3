package collector

import (
	"context"

	"EquityScreener/internal/model"

	"golang.org/x/time/rate"
)

// RateLimited throttles a provider pair so concurrent workers respect
// the upstream's request budget. Both providers share one limiter.
type RateLimited struct {
	bars    BarProvider
	funds   FundamentalsProvider
	limiter *rate.Limiter
}

// NewRateLimited wraps the providers with a shared requests-per-second
// limit. Either provider may be nil.
func NewRateLimited(bars BarProvider, funds FundamentalsProvider, requestsPerSecond float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		bars:    bars,
		funds:   funds,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Bars returns the throttled bar provider.
func (r *RateLimited) Bars() BarProvider { return limitedBars{r} }

// Fundamentals returns the throttled fundamentals provider, or nil.
func (r *RateLimited) Fundamentals() FundamentalsProvider {
	if r.funds == nil {
		return nil
	}
	return limitedFunds{r}
}

type limitedBars struct{ r *RateLimited }

func (l limitedBars) Name() string { return l.r.bars.Name() }

func (l limitedBars) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.BarSeries, error) {
	if err := l.r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.r.bars.FetchDailyBars(ctx, symbol, days)
}

type limitedFunds struct{ r *RateLimited }

func (l limitedFunds) Name() string { return l.r.funds.Name() }

func (l limitedFunds) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	if err := l.r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.r.funds.FetchFundamentals(ctx, symbol)
}
