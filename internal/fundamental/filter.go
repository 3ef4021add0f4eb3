// Package fundamental checks a ticker's fundamentals against thresholds.
package fundamental

import (
	"fmt"

	"EquityScreener/internal/model"
)

// Mode decides how missing data affects the overall verdict.
type Mode string

const (
	// Permissive passes when every check with data passes.
	Permissive Mode = "permissive"
	// Strict fails when any enabled check lacks data.
	Strict Mode = "strict"
)

// crore is ten million, the unit of MarketCapMinCrore.
const crore = 1e7

// Thresholds are optional; a nil threshold disables its check.
type Thresholds struct {
	MarketCapMinCrore *float64 `yaml:"market_cap_min_crore" validate:"omitempty,gte=0"`
	PEGMax            *float64 `yaml:"peg_max" validate:"omitempty,gt=0"`
	PEMax             *float64 `yaml:"pe_max" validate:"omitempty,gt=0"`
	PriceToSalesMax   *float64 `yaml:"price_to_sales_max" validate:"omitempty,gt=0"`
	EVToEBITDAMax     *float64 `yaml:"ev_ebitda_max" validate:"omitempty,gt=0"`
	ROE5YMin          *float64 `yaml:"roe5y_min"`
	PromoterMin       *float64 `yaml:"promoter_min" validate:"omitempty,gte=0,lte=100"`
	PledgedMax        *float64 `yaml:"pledged_max" validate:"omitempty,gte=0,lte=100"`
	DebtToEquityMax   *float64 `yaml:"debt_equity_max" validate:"omitempty,gte=0"`
	SalesGrowth3YMin  *float64 `yaml:"sales_growth_3y_min"`
	ProfitGrowth5YMin *float64 `yaml:"profit_growth_5y_min"`
	OPMMin            *float64 `yaml:"opm_min"`
}

// Policy is the full filter configuration.
type Policy struct {
	Mode       Mode       `yaml:"fundamentals_mode" validate:"oneof=strict permissive"`
	Thresholds Thresholds `yaml:"fundamentals_thresholds"`
}

// DefaultPolicy enables the PEG, ROE, promoter and pledge checks in
// permissive mode.
func DefaultPolicy() Policy {
	return Policy{
		Mode: Permissive,
		Thresholds: Thresholds{
			PEGMax:      ptr(1.0),
			ROE5YMin:    ptr(15),
			PromoterMin: ptr(50),
			PledgedMax:  ptr(1),
		},
	}
}

// Check is the verdict of a single threshold.
type Check struct {
	Name    string
	Verdict model.Verdict
	Detail  string
}

// Result is the overall verdict plus every enabled check.
type Result struct {
	Verdict    model.Verdict
	Checks     []Check
	FetchError string // provider failure behind the missing data
}

// Reason summarises failing and unknown checks.
func (r *Result) Reason() string {
	var failed, unknown []string
	for _, c := range r.Checks {
		switch c.Verdict {
		case model.VerdictFail:
			failed = append(failed, c.Detail)
		case model.VerdictUnknown:
			unknown = append(unknown, c.Name)
		}
	}
	switch {
	case len(failed) > 0:
		return fmt.Sprintf("fundamentals fail: %v", failed)
	case r.FetchError != "":
		return fmt.Sprintf("fundamentals fetch failed: %s", r.FetchError)
	case len(unknown) > 0:
		return fmt.Sprintf("fundamentals missing: %v", unknown)
	default:
		return ""
	}
}

type rule struct {
	name      string
	threshold *float64
	value     func(*model.Fundamentals) model.Float
	pass      func(v, limit float64) bool
	scale     float64
}

func (p Policy) rules() []rule {
	t := p.Thresholds
	below := func(v, limit float64) bool { return v <= limit }
	strictlyBelow := func(v, limit float64) bool { return v < limit }
	atLeast := func(v, limit float64) bool { return v >= limit }
	return []rule{
		{"market_cap_min_crore", t.MarketCapMinCrore, func(f *model.Fundamentals) model.Float { return f.MarketCap }, atLeast, crore},
		{"peg_max", t.PEGMax, func(f *model.Fundamentals) model.Float { return f.PEG }, strictlyBelow, 1},
		{"pe_max", t.PEMax, func(f *model.Fundamentals) model.Float { return f.PE }, below, 1},
		{"price_to_sales_max", t.PriceToSalesMax, func(f *model.Fundamentals) model.Float { return f.PriceToSales }, below, 1},
		{"ev_ebitda_max", t.EVToEBITDAMax, func(f *model.Fundamentals) model.Float { return f.EVToEBITDA }, below, 1},
		{"roe5y_min", t.ROE5YMin, func(f *model.Fundamentals) model.Float { return f.ROE5Y }, atLeast, 1},
		{"promoter_min", t.PromoterMin, func(f *model.Fundamentals) model.Float { return f.PromoterPct }, atLeast, 1},
		{"pledged_max", t.PledgedMax, func(f *model.Fundamentals) model.Float { return f.PledgedPct }, below, 1},
		{"debt_equity_max", t.DebtToEquityMax, func(f *model.Fundamentals) model.Float { return f.DebtToEquity }, below, 1},
		{"sales_growth_3y_min", t.SalesGrowth3YMin, func(f *model.Fundamentals) model.Float { return f.SalesGrowth3Y }, atLeast, 1},
		{"profit_growth_5y_min", t.ProfitGrowth5YMin, func(f *model.Fundamentals) model.Float { return f.ProfitGrowth5Y }, atLeast, 1},
		{"opm_min", t.OPMMin, func(f *model.Fundamentals) model.Float { return f.OPM }, atLeast, 1},
	}
}

// Evaluate runs every enabled check against rec. A nil rec means the
// provider had nothing; every check is then unknown. Strict mode fails on
// any unknown check, and on an empty record even with no check enabled.
func Evaluate(rec *model.Fundamentals, p Policy) Result {
	if rec == nil {
		rec = &model.Fundamentals{}
	}
	res := Result{FetchError: rec.FetchError}
	anyFail, anyUnknown := false, false
	for _, r := range p.rules() {
		if r.threshold == nil {
			continue
		}
		v := r.value(rec)
		limit := *r.threshold
		c := Check{Name: r.name}
		switch {
		case !v.Valid:
			c.Verdict = model.VerdictUnknown
			anyUnknown = true
		case r.pass(v.V/r.scale, limit):
			c.Verdict = model.VerdictPass
		default:
			c.Verdict = model.VerdictFail
			c.Detail = fmt.Sprintf("%s=%.2f (limit %.2f)", r.name, v.V/r.scale, limit)
			anyFail = true
		}
		res.Checks = append(res.Checks, c)
	}

	switch {
	case anyFail:
		res.Verdict = model.VerdictFail
	case p.Mode == Strict && (anyUnknown || rec.Empty()):
		res.Verdict = model.VerdictFail
	default:
		res.Verdict = model.VerdictPass
	}
	return res
}

func ptr(v float64) *float64 { return &v }
