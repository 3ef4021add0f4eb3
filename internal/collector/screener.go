package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"EquityScreener/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// DefaultScreenerBaseURL is the screener.in company page host.
const DefaultScreenerBaseURL = "https://www.screener.in"

// ScreenerFetcher scrapes fundamentals for NSE/BSE listings from
// screener.in company pages. It fills the ownership and growth fields
// Yahoo does not carry.
type ScreenerFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewScreenerFetcher creates a screener.in fetcher with optional proxy support.
func NewScreenerFetcher(proxyURL string) *ScreenerFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ScreenerFetcher{
		BaseURL: DefaultScreenerBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *ScreenerFetcher) Name() string { return "screener.in" }

// screenerSymbol strips the exchange suffix: RELIANCE.NS -> RELIANCE.
func screenerSymbol(symbol string) string {
	for _, suffix := range []string{".NS", ".BO"} {
		if strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix)
		}
	}
	return symbol
}

// ratioFields maps screener.in ratio labels (lower-cased) onto record fields.
// Market cap is published in crore.
var ratioFields = map[string]struct {
	field func(*model.Fundamentals) *model.Float
	scale float64
}{
	"market cap":                      {func(r *model.Fundamentals) *model.Float { return &r.MarketCap }, crore},
	"stock p/e":                       {func(r *model.Fundamentals) *model.Float { return &r.PE }, 1},
	"peg ratio":                       {func(r *model.Fundamentals) *model.Float { return &r.PEG }, 1},
	"ev / ebitda":                     {func(r *model.Fundamentals) *model.Float { return &r.EVToEBITDA }, 1},
	"ev/ebitda":                       {func(r *model.Fundamentals) *model.Float { return &r.EVToEBITDA }, 1},
	"price to sales":                  {func(r *model.Fundamentals) *model.Float { return &r.PriceToSales }, 1},
	"average return on equity 5years": {func(r *model.Fundamentals) *model.Float { return &r.ROE5Y }, 1},
	"roe 5yr":                         {func(r *model.Fundamentals) *model.Float { return &r.ROE5Y }, 1},
	"promoter holding":                {func(r *model.Fundamentals) *model.Float { return &r.PromoterPct }, 1},
	"pledged percentage":              {func(r *model.Fundamentals) *model.Float { return &r.PledgedPct }, 1},
	"debt to equity":                  {func(r *model.Fundamentals) *model.Float { return &r.DebtToEquity }, 1},
	"sales growth 3years":             {func(r *model.Fundamentals) *model.Float { return &r.SalesGrowth3Y }, 1},
	"profit growth 5years":            {func(r *model.Fundamentals) *model.Float { return &r.ProfitGrowth5Y }, 1},
	"opm":                             {func(r *model.Fundamentals) *model.Float { return &r.OPM }, 1},
}

const crore = 1e7

// FetchFundamentals downloads the consolidated company page and reads the
// top ratios list and the latest promoter shareholding.
func (f *ScreenerFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	u := fmt.Sprintf("%s/company/%s/consolidated/", f.BaseURL, url.PathEscape(screenerSymbol(symbol)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screener fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("screener: %s: %w", symbol, ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("screener: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseScreenerPage(symbol, resp.Body)
}

func parseScreenerPage(symbol string, r io.Reader) (*model.Fundamentals, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("screener parse: %w", err)
	}

	rec := &model.Fundamentals{Symbol: symbol}
	doc.Find("#top-ratios li").Each(func(_ int, li *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(li.Find(".name").Text()))
		spec, ok := ratioFields[name]
		if !ok {
			return
		}
		v, ok := parseNumber(li.Find(".number").First().Text())
		if !ok {
			return
		}
		*spec.field(rec) = model.Some(v * spec.scale)
	})

	if !rec.PromoterPct.Valid {
		doc.Find("#shareholding table tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			label := strings.ToLower(strings.TrimSpace(tr.Find("td").First().Text()))
			if !strings.HasPrefix(label, "promoters") {
				return true
			}
			if v, ok := parseNumber(tr.Find("td").Last().Text()); ok {
				rec.PromoterPct = model.Some(v)
			}
			return false
		})
	}

	if rec.Empty() {
		return nil, fmt.Errorf("screener: no ratios on page for %s: %w", symbol, ErrUnavailable)
	}
	return rec, nil
}

// parseNumber reads figures such as "1,23,456", "24.5 %" or "₹ 2,950".
func parseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
