package model

// Fundamentals holds a ticker's non-price attributes. Any field may be
// absent; providers fill what they can.
type Fundamentals struct {
	Symbol         string `json:"symbol"`
	MarketCap      Float  `json:"market_cap"` // in rupees
	PEG            Float  `json:"peg"`
	PE             Float  `json:"pe"`
	PriceToSales   Float  `json:"price_to_sales"`
	EVToEBITDA     Float  `json:"ev_to_ebitda"`
	ROE5Y          Float  `json:"roe_5y"`
	PromoterPct    Float  `json:"promoter_pct"`
	PledgedPct     Float  `json:"pledged_pct"`
	DebtToEquity   Float  `json:"debt_to_equity"`
	SalesGrowth3Y  Float  `json:"sales_growth_3y"`
	ProfitGrowth5Y Float  `json:"profit_growth_5y"`
	OPM            Float  `json:"opm"`

	// FetchError is set when the provider failed rather than had no data.
	FetchError string `json:"fetch_error,omitempty"`
}

// Merge fills every absent field of f from other. Present fields win.
func (f *Fundamentals) Merge(other *Fundamentals) {
	if other == nil {
		return
	}
	fill := func(dst *Float, src Float) {
		if !dst.Valid && src.Valid {
			*dst = src
		}
	}
	fill(&f.MarketCap, other.MarketCap)
	fill(&f.PEG, other.PEG)
	fill(&f.PE, other.PE)
	fill(&f.PriceToSales, other.PriceToSales)
	fill(&f.EVToEBITDA, other.EVToEBITDA)
	fill(&f.ROE5Y, other.ROE5Y)
	fill(&f.PromoterPct, other.PromoterPct)
	fill(&f.PledgedPct, other.PledgedPct)
	fill(&f.DebtToEquity, other.DebtToEquity)
	fill(&f.SalesGrowth3Y, other.SalesGrowth3Y)
	fill(&f.ProfitGrowth5Y, other.ProfitGrowth5Y)
	fill(&f.OPM, other.OPM)
}

// Empty reports whether no numeric field is present.
func (f *Fundamentals) Empty() bool {
	var probe Fundamentals
	probe.Merge(f)
	return probe == Fundamentals{}
}
