package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityScreener/internal/model"
)

func signals(pairs map[string]model.Tri) model.Signals {
	sig := model.Signals{}
	for _, name := range []string{
		model.SignalAboveSMAShort, model.SignalAboveSMALong, model.SignalGoldenTrend,
		model.SignalGoldenCross, model.SignalRetestLong, model.SignalRSIOverbought,
		model.SignalRSIOversold, model.SignalRSIMomentum, model.SignalMACDBullish,
		model.SignalMACDBullishCross, model.SignalVolumeSurge, model.SignalAbove52wLow,
	} {
		sig[name] = model.False
	}
	for k, v := range pairs {
		sig[k] = v
	}
	return sig
}

func TestClassify_Precedence(t *testing.T) {
	c := NewClassifier(Options{})
	tests := []struct {
		name   string
		sig    model.Signals
		fund   model.Verdict
		expect model.Category
	}{
		{
			name: "retest wins over trending",
			sig: signals(map[string]model.Tri{
				model.SignalRetestLong:    model.True,
				model.SignalGoldenTrend:   model.True,
				model.SignalAboveSMAShort: model.True,
			}),
			fund:   model.VerdictPass,
			expect: model.CategoryRetest200,
		},
		{
			name: "trending",
			sig: signals(map[string]model.Tri{
				model.SignalGoldenTrend:   model.True,
				model.SignalAboveSMAShort: model.True,
				model.SignalRSIOverbought: model.True,
			}),
			fund:   model.VerdictPass,
			expect: model.CategoryTrending,
		},
		{
			name: "failed fundamentals fall through to overbought",
			sig: signals(map[string]model.Tri{
				model.SignalGoldenTrend:   model.True,
				model.SignalAboveSMAShort: model.True,
				model.SignalRSIOverbought: model.True,
			}),
			fund:   model.VerdictFail,
			expect: model.CategoryOverbought,
		},
		{
			name:   "oversold",
			sig:    signals(map[string]model.Tri{model.SignalRSIOversold: model.True}),
			fund:   model.VerdictFail,
			expect: model.CategoryOversold,
		},
		{
			name:   "nothing fired",
			sig:    signals(nil),
			fund:   model.VerdictPass,
			expect: model.CategoryNone,
		},
		{
			name: "unknown fundamentals do not block",
			sig: signals(map[string]model.Tri{
				model.SignalGoldenTrend:   model.True,
				model.SignalAboveSMAShort: model.True,
			}),
			fund:   model.VerdictUnknown,
			expect: model.CategoryTrending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Classify(tt.sig, tt.fund)
			assert.Equal(t, tt.expect, d.Category)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestClassify_UnknownSkipsRule(t *testing.T) {
	c := NewClassifier(Options{})
	sig := signals(map[string]model.Tri{
		model.SignalRetestLong:    model.Unknown,
		model.SignalGoldenTrend:   model.Unknown,
		model.SignalAboveSMAShort: model.True,
		model.SignalRSIOversold:   model.True,
	})
	d := c.Classify(sig, model.VerdictPass)
	assert.Equal(t, model.CategoryOversold, d.Category)
}

func TestClassify_AllUnknownIsNone(t *testing.T) {
	c := NewClassifier(Options{})
	sig := model.Signals{}
	for name := range signals(nil) {
		sig[name] = model.Unknown
	}
	d := c.Classify(sig, model.VerdictPass)
	assert.Equal(t, model.CategoryNone, d.Category)
	assert.Contains(t, d.Reason, "unknown: ")
	assert.Contains(t, d.Reason, model.SignalGoldenTrend)
}

func TestClassify_MissingSignalIsUnknown(t *testing.T) {
	c := NewClassifier(Options{})
	d := c.Classify(model.Signals{model.SignalGoldenTrend: model.True}, model.VerdictPass)
	assert.Equal(t, model.CategoryNone, d.Category)
}

func TestNewClassifier_Confirmations(t *testing.T) {
	c := NewClassifier(Options{Confirm: map[model.Category][]string{
		model.CategoryTrending: {model.SignalVolumeSurge},
	}})
	rules := c.Rules()
	require.Len(t, rules, 4)
	assert.Equal(t, model.CategoryRetest200, rules[0].Category)
	assert.Equal(t, []string{model.SignalGoldenTrend, model.SignalAboveSMAShort, model.SignalVolumeSurge}, rules[1].Requires)

	trend := signals(map[string]model.Tri{
		model.SignalGoldenTrend:   model.True,
		model.SignalAboveSMAShort: model.True,
	})
	assert.Equal(t, model.CategoryNone, c.Classify(trend, model.VerdictPass).Category)

	trend[model.SignalVolumeSurge] = model.True
	assert.Equal(t, model.CategoryTrending, c.Classify(trend, model.VerdictPass).Category)

	// package table is untouched
	assert.Len(t, Rules[1].Requires, 2)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(Options{})
	sig := signals(map[string]model.Tri{model.SignalRSIOverbought: model.True})
	first := c.Classify(sig, model.VerdictPass)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(sig, model.VerdictPass))
	}
}
