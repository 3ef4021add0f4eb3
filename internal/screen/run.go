// Package screen runs the indicator and classification engine across a
// ticker universe.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"EquityScreener/internal/calculator"
	"EquityScreener/internal/collector"
	"EquityScreener/internal/fundamental"
	"EquityScreener/internal/metrics"
	"EquityScreener/internal/model"
	"EquityScreener/internal/signal"
	"EquityScreener/internal/strategy"
)

// Source supplies the inputs for one ticker. collector.Collector is the
// production implementation.
type Source interface {
	Collect(ctx context.Context, symbol string) (*model.BarSeries, *model.Fundamentals, error)
}

// Runner screens a universe. The zero Workers value runs sequentially.
type Runner struct {
	Source   Source
	Params   Params
	Workers  int
	Deadline time.Duration // 0 means no run deadline
	Metrics  *metrics.Metrics
}

// Report is the ordered result of a run: one outcome per unique input
// ticker, in input order, plus the per-ticker errors in the same order.
type Report struct {
	Outcomes []model.Outcome
	Errors   []*Error
}

// Alertable returns the outcomes that belong in alerts, in report order.
func (r *Report) Alertable() []model.Outcome {
	var out []model.Outcome
	for _, o := range r.Outcomes {
		if o.Alertable() {
			out = append(out, o)
		}
	}
	return out
}

// ByCategory returns the symbols classified into c, in report order.
func (r *Report) ByCategory(c model.Category) []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == model.StatusOK && o.Category == c {
			out = append(out, o.Symbol)
		}
	}
	return out
}

// Dedupe trims symbols, drops blanks and keeps the first occurrence of
// each symbol.
func Dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Run validates the parameters and screens every ticker. Only a
// configuration error aborts the run; every other failure is recorded on
// the ticker's outcome. When the deadline passes no new tickers are
// admitted and the remainder are reported as skipped.
func (r *Runner) Run(ctx context.Context, tickers []string) (*Report, error) {
	if err := r.Params.Validate(); err != nil {
		return nil, err
	}
	if r.Source == nil {
		return nil, &Error{Kind: KindConfig, Err: errors.New("no data source")}
	}
	classifier := strategy.NewClassifier(r.Params.Classifier)
	symbols := Dedupe(tickers)

	runCtx := ctx
	if r.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Deadline)
		defer cancel()
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(symbols) && len(symbols) > 0 {
		workers = len(symbols)
	}

	started := time.Now()
	log.Printf("[INFO] screen run: %d tickers, %d workers", len(symbols), workers)

	// One slot per ticker; each slot is written by exactly one worker.
	outcomes := make([]model.Outcome, len(symbols))
	done := make([]bool, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.screenOne(runCtx, symbols[i], classifier)
				done[i] = true
			}
		}()
	}

admit:
	for i := range symbols {
		if runCtx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break admit
		}
	}
	close(jobs)
	wg.Wait()

	report := &Report{Outcomes: outcomes}
	for i, sym := range symbols {
		if !done[i] {
			outcomes[i] = errorOutcome(&Error{Kind: KindDeadline, Symbol: sym, Err: errors.New("run deadline exceeded before ticker was admitted")})
		}
		o := &outcomes[i]
		r.Metrics.ObserveOutcome(string(o.Status), string(o.Category))
		if o.Status != model.StatusOK {
			report.Errors = append(report.Errors, outcomeError(o))
		}
	}

	alertable := len(report.Alertable())
	r.Metrics.ObserveRun(time.Since(started), len(symbols), alertable)
	log.Printf("[INFO] screen run finished in %v: %d outcomes, %d alertable, %d errors",
		time.Since(started).Round(time.Millisecond), len(outcomes), alertable, len(report.Errors))
	return report, nil
}

// screenOne never panics; a panic in the source becomes a
// ComputationError outcome for this ticker only.
func (r *Runner) screenOne(ctx context.Context, symbol string, c *strategy.Classifier) (out model.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = errorOutcome(&Error{Kind: KindComputation, Symbol: symbol, Err: fmt.Errorf("panic: %v", rec)})
			log.Printf("[ERROR] %s: recovered %v", symbol, rec)
		}
	}()

	series, funds, err := r.Source.Collect(ctx, symbol)
	if err != nil {
		e := &Error{Kind: KindProvider, Symbol: symbol, Err: err}
		switch {
		case errors.Is(err, collector.ErrUnavailable):
			e.Kind = KindDataUnavailable
		case ctx.Err() != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
			e.Kind = KindDeadline
		}
		log.Printf("[WARN] %v", e)
		return errorOutcome(e)
	}

	start := time.Now()
	out = Evaluate(symbol, series, funds, r.Params, c)
	r.Metrics.ObserveCompute(time.Since(start))
	if out.Status != model.StatusOK {
		log.Printf("[WARN] %s %s: %s", out.Status, symbol, out.Error)
	}
	return out
}

// Evaluate runs indicators, signals, the fundamentals filter and the
// classifier for one ticker. It is a pure function of its inputs; panics
// and non-finite numbers become ComputationError outcomes.
func Evaluate(symbol string, series *model.BarSeries, funds *model.Fundamentals, p Params, c *strategy.Classifier) (out model.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = errorOutcome(&Error{Kind: KindComputation, Symbol: symbol, Err: fmt.Errorf("panic: %v", rec)})
		}
	}()

	if series == nil {
		return errorOutcome(&Error{Kind: KindDataUnavailable, Symbol: symbol, Err: calculator.ErrNoBars})
	}
	if series.Symbol == "" {
		named := *series
		named.Symbol = symbol
		series = &named
	}
	if err := series.Validate(); err != nil {
		return errorOutcome(&Error{Kind: KindDataUnavailable, Symbol: symbol, Err: err})
	}

	snap, err := calculator.Compute(series, p.Periods)
	if err != nil {
		kind := KindComputation
		if errors.Is(err, calculator.ErrNoBars) {
			kind = KindDataUnavailable
		}
		return errorOutcome(&Error{Kind: kind, Symbol: symbol, Err: err})
	}

	sig := signal.Derive(snap, p.Signals)
	fres := fundamental.Evaluate(funds, p.Fundamentals)
	decision := c.Classify(sig, fres.Verdict)

	reason := decision.Reason
	if fr := fres.Reason(); fr != "" {
		reason += "; " + fr
	}
	return model.Outcome{
		Symbol:       symbol,
		Status:       model.StatusOK,
		Category:     decision.Category,
		Snapshot:     snap,
		Signals:      sig,
		Fired:        sig.Fired(),
		Fundamentals: fres.Verdict,
		Reason:       reason,
	}
}

func errorOutcome(e *Error) model.Outcome {
	return model.Outcome{
		Symbol:   e.Symbol,
		Status:   e.Kind.status(),
		Category: model.CategoryNone,
		Error:    e.Err.Error(),
	}
}

func outcomeError(o *model.Outcome) *Error {
	kind := KindComputation
	switch o.Status {
	case model.StatusDataUnavailable:
		kind = KindDataUnavailable
	case model.StatusProviderError:
		kind = KindProvider
	case model.StatusSkipped:
		kind = KindDeadline
	}
	return &Error{Kind: kind, Symbol: o.Symbol, Err: errors.New(o.Error)}
}
