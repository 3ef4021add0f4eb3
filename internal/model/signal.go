package model

import (
	"encoding/json"
	"sort"
)

// Tri is a three-state truth value. Unknown means the inputs needed to
// evaluate a signal were not available.
type Tri int8

const (
	Unknown Tri = iota
	False
	True
)

// TriOf converts a bool into a known Tri.
func TriOf(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (t *Tri) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if b == nil {
		*t = Unknown
	} else {
		*t = TriOf(*b)
	}
	return nil
}

// Signal names produced by signal derivation.
const (
	SignalAboveSMAShort    = "above_sma50"
	SignalAboveSMALong     = "above_sma200"
	SignalGoldenTrend      = "golden_trend"
	SignalGoldenCross      = "golden_cross"
	SignalRetestLong       = "retest_200"
	SignalRSIOverbought    = "rsi_overbought"
	SignalRSIOversold      = "rsi_oversold"
	SignalRSIMomentum      = "rsi_momentum"
	SignalMACDBullish      = "macd_bullish"
	SignalMACDBullishCross = "macd_bullish_cross"
	SignalVolumeSurge      = "volume_surge"
	SignalAbove52wLow      = "above_52w_low"
)

// Signals maps signal names to their evaluated state.
type Signals map[string]Tri

// Get returns the state of a signal; names never derived are Unknown.
func (s Signals) Get(name string) Tri {
	return s[name]
}

// Fired returns the sorted names of signals that evaluated to True.
func (s Signals) Fired() []string {
	names := make([]string, 0, len(s))
	for name, v := range s {
		if v == True {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
