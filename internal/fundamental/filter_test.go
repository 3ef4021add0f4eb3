package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityScreener/internal/model"
)

func strong() *model.Fundamentals {
	return &model.Fundamentals{
		Symbol:      "GOOD.NS",
		MarketCap:   model.Some(5000 * crore),
		PEG:         model.Some(0.8),
		ROE5Y:       model.Some(22),
		PromoterPct: model.Some(60),
		PledgedPct:  model.Some(0),
	}
}

func TestEvaluate_Pass(t *testing.T) {
	res := Evaluate(strong(), DefaultPolicy())
	assert.Equal(t, model.VerdictPass, res.Verdict)
	require.Len(t, res.Checks, 4)
	for _, c := range res.Checks {
		assert.Equal(t, model.VerdictPass, c.Verdict, c.Name)
	}
	assert.Empty(t, res.Reason())
}

func TestEvaluate_Fail(t *testing.T) {
	rec := strong()
	rec.PledgedPct = model.Some(12)
	res := Evaluate(rec, DefaultPolicy())
	assert.Equal(t, model.VerdictFail, res.Verdict)
	assert.Contains(t, res.Reason(), "pledged_max=12.00")
}

func TestEvaluate_PEGIsStrict(t *testing.T) {
	rec := strong()
	rec.PEG = model.Some(1)
	assert.Equal(t, model.VerdictFail, Evaluate(rec, DefaultPolicy()).Verdict)
}

func TestEvaluate_ZeroIsAValue(t *testing.T) {
	p := DefaultPolicy()
	rec := strong()
	rec.PromoterPct = model.Some(0)
	assert.Equal(t, model.VerdictFail, Evaluate(rec, p).Verdict, "0% promoter is a real, failing value")
}

func TestEvaluate_MissingFields(t *testing.T) {
	permissive := DefaultPolicy()
	strict := DefaultPolicy()
	strict.Mode = Strict

	tests := []struct {
		name   string
		rec    *model.Fundamentals
		policy Policy
		expect model.Verdict
	}{
		{"nil record permissive", nil, permissive, model.VerdictPass},
		{"nil record strict", nil, strict, model.VerdictFail},
		{"empty record permissive", &model.Fundamentals{Symbol: "X"}, permissive, model.VerdictPass},
		{"empty record strict", &model.Fundamentals{Symbol: "X"}, strict, model.VerdictFail},
		{"empty record strict no checks", &model.Fundamentals{Symbol: "X"}, Policy{Mode: Strict}, model.VerdictFail},
		{"partial record strict", &model.Fundamentals{PEG: model.Some(0.5)}, strict, model.VerdictFail},
		{"partial record permissive", &model.Fundamentals{PEG: model.Some(0.5)}, permissive, model.VerdictPass},
		{"fail beats unknown", &model.Fundamentals{PEG: model.Some(3)}, permissive, model.VerdictFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Evaluate(tt.rec, tt.policy).Verdict)
		})
	}
}

func TestEvaluate_UnknownChecksReported(t *testing.T) {
	res := Evaluate(&model.Fundamentals{PEG: model.Some(0.5)}, DefaultPolicy())
	var unknown []string
	for _, c := range res.Checks {
		if c.Verdict == model.VerdictUnknown {
			unknown = append(unknown, c.Name)
		}
	}
	assert.Equal(t, []string{"roe5y_min", "promoter_min", "pledged_max"}, unknown)
	assert.Contains(t, res.Reason(), "fundamentals missing")
}

func TestEvaluate_MarketCapInCrore(t *testing.T) {
	p := Policy{Mode: Permissive, Thresholds: Thresholds{MarketCapMinCrore: ptr(1000)}}
	small := &model.Fundamentals{MarketCap: model.Some(500 * crore)}
	big := &model.Fundamentals{MarketCap: model.Some(1500 * crore)}
	assert.Equal(t, model.VerdictFail, Evaluate(small, p).Verdict)
	assert.Equal(t, model.VerdictPass, Evaluate(big, p).Verdict)
}

func TestEvaluate_DisabledChecksIgnored(t *testing.T) {
	p := Policy{Mode: Strict, Thresholds: Thresholds{PEGMax: ptr(1)}}
	rec := &model.Fundamentals{PEG: model.Some(0.5), PledgedPct: model.Some(90)}
	res := Evaluate(rec, p)
	assert.Equal(t, model.VerdictPass, res.Verdict)
	assert.Len(t, res.Checks, 1)
}

func TestEvaluate_FetchErrorReported(t *testing.T) {
	rec := &model.Fundamentals{Symbol: "X.NS", FetchError: "status 503"}

	strict := DefaultPolicy()
	strict.Mode = Strict
	res := Evaluate(rec, strict)
	assert.Equal(t, model.VerdictFail, res.Verdict)
	assert.Equal(t, "fundamentals fetch failed: status 503", res.Reason())

	res = Evaluate(rec, DefaultPolicy())
	assert.Equal(t, model.VerdictPass, res.Verdict)
	assert.Contains(t, res.Reason(), "fetch failed")

	res = Evaluate(&model.Fundamentals{Symbol: "X.NS"}, DefaultPolicy())
	assert.Contains(t, res.Reason(), "fundamentals missing")
}
