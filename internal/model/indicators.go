package model

// Snapshot holds one ticker's indicator values for the most recent bar,
// plus the prior-bar values needed to detect one-step transitions.
type Snapshot struct {
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Volume int64   `json:"volume"`

	SMAShort   Float `json:"sma_short"`
	SMALong    Float `json:"sma_long"`
	RSI        Float `json:"rsi"`
	MACD       Float `json:"macd"`
	MACDSignal Float `json:"macd_signal"`
	MACDHist   Float `json:"macd_hist"`
	AvgVolume  Float `json:"avg_volume"`
	Low52w     Float `json:"low_52w"`

	PrevClose      Float `json:"prev_close"`
	PrevHigh       Float `json:"prev_high"`
	PrevSMAShort   Float `json:"prev_sma_short"`
	PrevSMALong    Float `json:"prev_sma_long"`
	PrevMACD       Float `json:"prev_macd"`
	PrevMACDSignal Float `json:"prev_macd_signal"`

	// PeakAboveLongPct is the largest percentage by which the close sat
	// above SMALong during the retest lookback window, latest bar excluded.
	PeakAboveLongPct Float `json:"peak_above_long_pct"`
}

// Finite reports whether every defined value is an ordinary number.
func (s *Snapshot) Finite() bool {
	for _, f := range []Float{
		Some(s.Close), Some(s.High),
		s.SMAShort, s.SMALong, s.RSI, s.MACD, s.MACDSignal, s.MACDHist, s.AvgVolume, s.Low52w,
		s.PrevClose, s.PrevHigh, s.PrevSMAShort, s.PrevSMALong, s.PrevMACD, s.PrevMACDSignal,
		s.PeakAboveLongPct,
	} {
		if !f.Finite() {
			return false
		}
	}
	return true
}
