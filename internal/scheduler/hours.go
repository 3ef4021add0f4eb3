package scheduler

import (
	"fmt"
	"time"
)

// MarketHours is the weekday trading session in the market time zone.
type MarketHours struct {
	Location *time.Location
	Open     time.Duration // offset from midnight
	Close    time.Duration
}

// ParseMarketHours builds a session from "HH:MM" bounds.
func ParseMarketHours(loc *time.Location, open, closeAt string) (MarketHours, error) {
	o, err := clock(open)
	if err != nil {
		return MarketHours{}, fmt.Errorf("market open: %w", err)
	}
	c, err := clock(closeAt)
	if err != nil {
		return MarketHours{}, fmt.Errorf("market close: %w", err)
	}
	if c <= o {
		return MarketHours{}, fmt.Errorf("market close %s is not after open %s", closeAt, open)
	}
	return MarketHours{Location: loc, Open: o, Close: c}, nil
}

func clock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether t falls inside the session, bounds included.
// A zero MarketHours contains every instant.
func (h MarketHours) Contains(t time.Time) bool {
	if h.Close == 0 {
		return true
	}
	if h.Location != nil {
		t = t.In(h.Location)
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	since := t.Sub(midnight)
	return since >= h.Open && since <= h.Close
}
