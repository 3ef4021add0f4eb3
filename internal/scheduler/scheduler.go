package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"EquityScreener/internal/alert"
	"EquityScreener/internal/metrics"
	"EquityScreener/internal/model"
	"EquityScreener/internal/notifier"
	"EquityScreener/internal/recorder"
	"EquityScreener/internal/screen"
	"EquityScreener/internal/universe"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Trigger sources recorded with each run.
const (
	SourceCron    = "cron"
	SourceManual  = "manual"
	SourceStartup = "startup"
)

// ErrBusy is returned when a run is requested while another is in progress.
var ErrBusy = errors.New("a screen run is already in progress")

// Scheduler manages the scan cron task and the post-run pipeline.
type Scheduler struct {
	Cron         *cron.Cron
	Runner       *screen.Runner
	UniversePath string
	Quarantine   *universe.Quarantine
	Alerts       *alert.Store
	Notifier     *notifier.TelegramNotifier
	Recorder     recorder.Recorder
	Metrics      *metrics.Metrics
	Hours        MarketHours
	ReportURL    string
	Ctx          context.Context

	// Now is the clock; tests replace it.
	Now func() time.Time

	running sync.Mutex
}

// NewScheduler creates a new Scheduler whose cron fires in hours' time zone.
func NewScheduler(ctx context.Context, runner *screen.Runner, universePath string, q *universe.Quarantine,
	store *alert.Store, tn *notifier.TelegramNotifier, rec recorder.Recorder, hours MarketHours) *Scheduler {
	loc := hours.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner:       runner,
		UniversePath: universePath,
		Quarantine:   q,
		Alerts:       store,
		Notifier:     tn,
		Recorder:     rec,
		Metrics:      runner.Metrics,
		Hours:        hours,
		Ctx:          ctx,
		Now:          time.Now,
	}
}

// RegisterAll registers the scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) scanTask() {
	now := s.Now()
	if !s.Hours.Contains(now) {
		log.Printf("[INFO] outside market hours at %s, skipping scan", now.In(s.location()).Format("Mon 15:04"))
		return
	}
	if _, err := s.RunNow(s.Ctx, SourceCron); err != nil {
		log.Printf("[ERROR] scheduled scan: %v", err)
		if !errors.Is(err, ErrBusy) {
			s.trySend(fmt.Sprintf("❌ Screen run failed: %v", err))
		}
	}
}

func (s *Scheduler) location() *time.Location {
	if s.Hours.Location != nil {
		return s.Hours.Location
	}
	return time.Local
}

// RunNow screens the universe once, records the run and sends alerts for
// symbols not alerted before. Manual triggers bypass the market-hours
// guard.
func (s *Scheduler) RunNow(ctx context.Context, source string) (*model.RunSummary, error) {
	if !s.running.TryLock() {
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	runID := uuid.NewString()
	started := s.Now()
	log.Printf("[INFO] running %s scan %s", source, runID)

	tickers, err := universe.Load(s.UniversePath, s.Quarantine, started)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	report, err := s.Runner.Run(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	finished := s.Now()

	s.quarantine(report, finished)

	if err := s.Recorder.RecordRun(&recorder.RunRecord{
		ID:         runID,
		Source:     source,
		StartedAt:  started,
		FinishedAt: finished,
		Outcomes:   report.Outcomes,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	sent := s.dispatch(ctx, runID, report)

	sum := summarize(report, runID, started, finished)
	sum.Alerted = sent
	if s.Alerts != nil {
		if err := s.Alerts.SetLastRun(sum); err != nil {
			log.Printf("[ERROR] save last run: %v", err)
		}
	}
	return &sum, nil
}

// quarantine marks symbols whose provider had no data.
func (s *Scheduler) quarantine(report *screen.Report, now time.Time) {
	for _, e := range report.Errors {
		if e.Kind != screen.KindDataUnavailable {
			continue
		}
		if err := s.Quarantine.Mark(e.Symbol, e.Error(), now); err != nil {
			log.Printf("[WARN] quarantine %s: %v", e.Symbol, err)
		}
	}
}

// dispatch sends the new Trending and Retest200 matches and returns how
// many symbols were alerted. Symbols are marked only after a successful
// send so a failed delivery is retried on the next run.
func (s *Scheduler) dispatch(ctx context.Context, runID string, report *screen.Report) int {
	if s.Alerts == nil {
		return 0
	}
	batch := notifier.AlertBatch{
		Trending:  s.Alerts.Fresh(model.CategoryTrending, report.ByCategory(model.CategoryTrending)),
		Retest200: s.Alerts.Fresh(model.CategoryRetest200, report.ByCategory(model.CategoryRetest200)),
	}
	if batch.Empty() {
		log.Println("[INFO] no new alerts")
		return 0
	}
	if err := s.Notifier.SendWithRetry(ctx, notifier.FormatAlert(batch, s.ReportURL), 3); err != nil {
		log.Printf("[ERROR] send alerts: %v", err)
		return 0
	}
	s.Metrics.IncAlerts()

	for c, symbols := range map[model.Category][]string{
		model.CategoryTrending:  batch.Trending,
		model.CategoryRetest200: batch.Retest200,
	} {
		if err := s.Alerts.Mark(c, symbols); err != nil {
			log.Printf("[ERROR] save alert state: %v", err)
		}
		if len(symbols) == 0 {
			continue
		}
		if err := s.Recorder.RecordAlerts(&recorder.AlertEvent{RunID: runID, Category: c, Symbols: symbols}); err != nil {
			log.Printf("[ERROR] record alerts: %v", err)
		}
	}
	return batch.Count()
}

func summarize(report *screen.Report, runID string, started, finished time.Time) model.RunSummary {
	sum := model.RunSummary{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: finished,
		Tickers:    len(report.Outcomes),
		ByStatus:   make(map[model.Status]int),
		ByCategory: make(map[model.Category]int),
	}
	for _, o := range report.Outcomes {
		sum.ByStatus[o.Status]++
		if o.Status == model.StatusOK {
			sum.ByCategory[o.Category]++
		}
	}
	return sum
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	// "/scan@MyBot" in group chats
	command, _, _ = strings.Cut(strings.TrimSpace(command), "@")
	switch strings.ToLower(command) {
	case "/scan":
		sum, err := s.RunNow(ctx, SourceManual)
		if err != nil {
			return fmt.Sprintf("❌ Screen run failed: %v", err)
		}
		return notifier.FormatRunSummary(*sum)
	case "/status":
		if s.Alerts == nil {
			return "No run recorded yet."
		}
		sum, ok := s.Alerts.LastRun()
		if !ok {
			return "No run recorded yet."
		}
		return notifier.FormatRunSummary(sum)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
