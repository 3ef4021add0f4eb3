package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"EquityScreener/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements BarProvider and FundamentalsProvider using the
// Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL  string
	Client   *http.Client
	Location *time.Location // market-local zone when the response has none
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, loc *time.Location) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Location: loc,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func (f *YahooFetcher) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("yahoo: %w", ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// FetchDailyBars returns up to days daily bars, oldest first. Null bars
// (holidays, suspensions) are skipped rather than filled.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.BarSeries, error) {
	rng := "2y"
	if days <= 30 {
		rng = "1mo"
	} else if days <= 90 {
		rng = "3mo"
	} else if days <= 180 {
		rng = "6mo"
	} else if days <= 250 {
		rng = "1y"
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", f.BaseURL, url.PathEscape(symbol), rng)

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, ErrUnavailable)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned: %w", ErrUnavailable)
	}

	result := chart.Chart.Result[0]
	loc := f.Location
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip null bars (holidays etc.)
		}
		v, _ := at(quote.Volume, i)
		t := time.Unix(ts, 0).In(loc)
		bars = append(bars, model.Bar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(v),
		})
	}

	bars = normalizeBars(bars)
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: only null bars for %s: %w", symbol, ErrUnavailable)
	}
	return &model.BarSeries{Symbol: symbol, Bars: bars}, nil
}

// normalizeBars sorts by date and keeps the last bar of any repeated day,
// which is how Yahoo reports the live session next to the prior close.
func normalizeBars(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

func (r yahooRaw) float(scale float64) model.Float {
	if r.Raw == nil {
		return model.None
	}
	return model.Some(*r.Raw * scale)
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				MarketCap    yahooRaw `json:"marketCap"`
				TrailingPE   yahooRaw `json:"trailingPE"`
				ForwardPE    yahooRaw `json:"forwardPE"`
				PriceToSales yahooRaw `json:"priceToSalesTrailing12Months"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				PEGRatio           yahooRaw `json:"pegRatio"`
				EnterpriseToEbitda yahooRaw `json:"enterpriseToEbitda"`
				HeldPercentInsider yahooRaw `json:"heldPercentInsiders"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				DebtToEquity     yahooRaw `json:"debtToEquity"`
				OperatingMargins yahooRaw `json:"operatingMargins"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals reads valuation and ownership fields from the
// quoteSummary endpoint. Yahoo does not publish pledged shares or
// five-year ROE; those fields stay absent.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail,defaultKeyStatistics,financialData",
		f.BaseURL, url.PathEscape(symbol))

	var sum yahooSummary
	if err := f.get(ctx, u, &sum); err != nil {
		return nil, err
	}
	if sum.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", sum.QuoteSummary.Error.Description, ErrUnavailable)
	}
	if len(sum.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no fundamentals: %w", ErrUnavailable)
	}
	r := sum.QuoteSummary.Result[0]
	rec := &model.Fundamentals{
		Symbol:       symbol,
		MarketCap:    r.SummaryDetail.MarketCap.float(1),
		PEG:          r.DefaultKeyStatistics.PEGRatio.float(1),
		PE:           r.SummaryDetail.TrailingPE.float(1),
		PriceToSales: r.SummaryDetail.PriceToSales.float(1),
		EVToEBITDA:   r.DefaultKeyStatistics.EnterpriseToEbitda.float(1),
		PromoterPct:  r.DefaultKeyStatistics.HeldPercentInsider.float(100),
		// Yahoo reports debt/equity as a percentage.
		DebtToEquity: r.FinancialData.DebtToEquity.float(0.01),
		OPM:          r.FinancialData.OperatingMargins.float(100),
	}
	if !rec.PE.Valid {
		rec.PE = r.SummaryDetail.ForwardPE.float(1)
	}
	return rec, nil
}
