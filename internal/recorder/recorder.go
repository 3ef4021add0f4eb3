package recorder

import (
	"time"

	"EquityScreener/internal/model"
)

// RunRecord holds everything produced by one screen run.
type RunRecord struct {
	ID         string
	Source     string // "cron", "manual" or "startup"
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []model.Outcome
}

// AlertEvent records symbols sent to the chat for one category.
type AlertEvent struct {
	RunID    string
	Category model.Category
	Symbols  []string
}

// Recorder persists run history for later review.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordAlerts(evt *AlertEvent) error
	Close() error
}
