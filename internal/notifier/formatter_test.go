package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"EquityScreener/internal/model"
)

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(AlertBatch{
		Trending:  []string{"M&M.NS", "TCS.NS"},
		Retest200: []string{"INFY.NS"},
	}, "https://example.com/report")

	assert.Equal(t, "<b>Trending</b> (2):\nM&amp;M.NS\nTCS.NS\n\n<b>Retest200</b> (1):\nINFY.NS\n\nReport: https://example.com/report", msg)
}

func TestFormatAlert_OmitsEmptySections(t *testing.T) {
	msg := FormatAlert(AlertBatch{Retest200: []string{"INFY.NS"}}, "")
	assert.Equal(t, "<b>Retest200</b> (1):\nINFY.NS", msg)
	assert.NotContains(t, msg, "Trending")
}

func TestAlertBatch(t *testing.T) {
	assert.True(t, AlertBatch{}.Empty())
	b := AlertBatch{Trending: []string{"A"}, Retest200: []string{"B", "C"}}
	assert.False(t, b.Empty())
	assert.Equal(t, 3, b.Count())
}

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	msg := FormatRunSummary(model.RunSummary{
		RunID:      "abc",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Tickers:    5,
		ByStatus: map[model.Status]int{
			model.StatusOK:              3,
			model.StatusSkipped:         1,
			model.StatusDataUnavailable: 1,
		},
		ByCategory: map[model.Category]int{model.CategoryTrending: 2, model.CategoryNone: 1},
		Alerted:    2,
	})

	assert.Contains(t, msg, "2024-06-10 10:01")
	assert.Contains(t, msg, "Run: abc\n")
	assert.Contains(t, msg, "Tickers: 5\n")
	assert.Contains(t, msg, "Duration: 1m30s\n")
	assert.Contains(t, msg, "  Trending: 2\n")
	assert.Contains(t, msg, "  Retest200: 0\n")
	assert.True(t, strings.Index(msg, "DataUnavailable: 1") < strings.Index(msg, "Skipped: 1"), "statuses are sorted")
	assert.NotContains(t, msg, "OK:")
	assert.True(t, strings.HasSuffix(msg, "New alerts: 2"))
}

func TestFormatRunSummary_AllOK(t *testing.T) {
	msg := FormatRunSummary(model.RunSummary{ByStatus: map[model.Status]int{model.StatusOK: 1}})
	assert.NotContains(t, msg, "Not screened")
}

func TestFormatHelp(t *testing.T) {
	help := FormatHelp()
	assert.Contains(t, help, "/scan")
	assert.Contains(t, help, "/status")
}
