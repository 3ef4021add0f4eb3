package model

// Category is the classification assigned to a ticker.
type Category string

const (
	CategoryRetest200  Category = "Retest200"
	CategoryTrending   Category = "Trending"
	CategoryOverbought Category = "Overbought"
	CategoryOversold   Category = "Oversold"
	CategoryNone       Category = "None"
)

// Status tells whether a ticker was evaluated, and if not, why.
type Status string

const (
	StatusOK               Status = "OK"
	StatusDataUnavailable  Status = "DataUnavailable"
	StatusProviderError    Status = "ProviderError"
	StatusComputationError Status = "ComputationError"
	StatusSkipped          Status = "Skipped"
)

// Verdict is the outcome of a fundamentals check.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictUnknown Verdict = "unknown"
)

// Outcome is the per-ticker result of a screen run. Outcomes with a
// non-OK status carry Category None and an Error message.
type Outcome struct {
	Symbol       string    `json:"symbol"`
	Status       Status    `json:"status"`
	Category     Category  `json:"category"`
	Snapshot     *Snapshot `json:"snapshot,omitempty"`
	Signals      Signals   `json:"signals,omitempty"`
	Fired        []string  `json:"fired,omitempty"`
	Fundamentals Verdict   `json:"fundamentals,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Alertable reports whether the outcome belongs in the alert set.
func (o *Outcome) Alertable() bool {
	return o.Status == StatusOK && (o.Category == CategoryRetest200 || o.Category == CategoryTrending)
}
