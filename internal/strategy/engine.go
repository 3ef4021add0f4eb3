package strategy

import (
	"fmt"
	"sort"
	"strings"

	"EquityScreener/internal/model"
)

// Rule maps a set of required signals to a category. Lower Priority is
// evaluated first.
type Rule struct {
	Priority          int
	Category          model.Category
	Requires          []string
	NeedsFundamentals bool // fundamentals verdict must not be fail
}

// Rules defines the default precedence. A ticker can satisfy several
// categories at once; the first matching rule wins.
var Rules = []Rule{
	{1, model.CategoryRetest200, []string{model.SignalRetestLong}, true},
	{2, model.CategoryTrending, []string{model.SignalGoldenTrend, model.SignalAboveSMAShort}, true},
	{3, model.CategoryOverbought, []string{model.SignalRSIOverbought}, false},
	{4, model.CategoryOversold, []string{model.SignalRSIOversold}, false},
}

// Options adds confirmation signals per category on top of Rules.
type Options struct {
	Confirm map[model.Category][]string `yaml:"confirm" validate:"dive,keys,oneof=Retest200 Trending Overbought Oversold,endkeys,dive,oneof=above_sma50 above_sma200 golden_trend golden_cross retest_200 rsi_overbought rsi_oversold rsi_momentum macd_bullish macd_bullish_cross volume_surge above_52w_low"`
}

// Decision is the classifier output for one ticker.
type Decision struct {
	Category model.Category
	Reason   string
}

// Classifier evaluates an ordered rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the rule table from Rules plus the configured
// confirmations.
func NewClassifier(opts Options) *Classifier {
	rules := make([]Rule, len(Rules))
	for i, r := range Rules {
		req := append([]string(nil), r.Requires...)
		req = append(req, opts.Confirm[r.Category]...)
		rules[i] = Rule{Priority: r.Priority, Category: r.Category, Requires: req, NeedsFundamentals: r.NeedsFundamentals}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return &Classifier{rules: rules}
}

// Rules returns the effective rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Matches reports whether a single rule matches. An unknown required
// signal never matches.
func (r *Rule) Matches(sig model.Signals, fundamentals model.Verdict) bool {
	if r.NeedsFundamentals && fundamentals == model.VerdictFail {
		return false
	}
	for _, name := range r.Requires {
		if sig.Get(name) != model.True {
			return false
		}
	}
	return true
}

// Classify returns the category of the first matching rule, or None.
func (c *Classifier) Classify(sig model.Signals, fundamentals model.Verdict) Decision {
	for i := range c.rules {
		r := &c.rules[i]
		if r.Matches(sig, fundamentals) {
			return Decision{
				Category: r.Category,
				Reason:   fmt.Sprintf("%s: %s", r.Category, strings.Join(r.Requires, " & ")),
			}
		}
	}
	return Decision{Category: model.CategoryNone, Reason: noMatchReason(sig)}
}

// noMatchReason lists the unknown signals, which is usually why a
// ticker with short history lands in None.
func noMatchReason(sig model.Signals) string {
	var unknown []string
	for name, v := range sig {
		if v == model.Unknown {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return "no rule matched"
	}
	sort.Strings(unknown)
	return "no rule matched; unknown: " + strings.Join(unknown, ", ")
}
