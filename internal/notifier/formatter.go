package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"EquityScreener/internal/model"
)

// AlertBatch holds the newly matched symbols of one run per alerting category.
type AlertBatch struct {
	Trending  []string
	Retest200 []string
}

// Empty reports whether there is nothing to send.
func (a AlertBatch) Empty() bool {
	return len(a.Trending) == 0 && len(a.Retest200) == 0
}

// Count returns the number of symbols in the batch.
func (a AlertBatch) Count() int {
	return len(a.Trending) + len(a.Retest200)
}

// FormatAlert formats new matches into a Telegram message. Empty sections
// are omitted; reportURL is appended when set.
func FormatAlert(batch AlertBatch, reportURL string) string {
	var b strings.Builder
	section := func(title string, symbols []string) {
		if len(symbols) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("<b>%s</b> (%d):\n", title, len(symbols)))
		for _, s := range symbols {
			b.WriteString(html.EscapeString(s))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	section(string(model.CategoryTrending), batch.Trending)
	section(string(model.CategoryRetest200), batch.Retest200)
	if reportURL != "" {
		b.WriteString(fmt.Sprintf("Report: %s", html.EscapeString(reportURL)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatRunSummary formats a run summary for /status and post-run reports.
func FormatRunSummary(sum model.RunSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Screen run</b> | %s\n\n", sum.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run: %s\n", sum.RunID))
	b.WriteString(fmt.Sprintf("Tickers: %d\n", sum.Tickers))
	b.WriteString(fmt.Sprintf("Duration: %s\n", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Second)))

	b.WriteString("\n<b>Categories:</b>\n")
	for _, c := range []model.Category{
		model.CategoryRetest200, model.CategoryTrending,
		model.CategoryOverbought, model.CategoryOversold, model.CategoryNone,
	} {
		b.WriteString(fmt.Sprintf("  %s: %d\n", c, sum.ByCategory[c]))
	}

	statuses := make([]string, 0, len(sum.ByStatus))
	for s := range sum.ByStatus {
		if s != model.StatusOK {
			statuses = append(statuses, string(s))
		}
	}
	sort.Strings(statuses)
	if len(statuses) > 0 {
		b.WriteString("\n<b>Not screened:</b>\n")
		for _, s := range statuses {
			b.WriteString(fmt.Sprintf("  %s: %d\n", s, sum.ByStatus[model.Status(s)]))
		}
	}
	b.WriteString(fmt.Sprintf("\nNew alerts: %d", sum.Alerted))
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Commands:\n/scan - run the screener now\n/status - show the last run"
}
