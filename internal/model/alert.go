package model

import "time"

// RunSummary is the condensed result of one screen run.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Tickers    int              `json:"tickers"`
	ByStatus   map[Status]int   `json:"by_status"`
	ByCategory map[Category]int `json:"by_category"`
	Alerted    int              `json:"alerted"`
}

// AlertState tracks which symbols were already alerted per category.
type AlertState struct {
	Alerted   map[Category][]string `json:"alerted"`
	LastRun   *RunSummary           `json:"last_run,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}
