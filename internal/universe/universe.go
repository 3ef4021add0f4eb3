// Package universe loads the ticker list and maintains the quarantine of
// symbols that recently returned no data.
package universe

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// Quarantine is an append-only file of SYMBOL|YYYY-MM-DD lines.
type Quarantine struct {
	mu         sync.Mutex
	path       string
	retryAfter time.Duration
}

// NewQuarantine creates a quarantine backed by path. Symbols are
// retried retryAfterDays after they were last marked.
func NewQuarantine(path string, retryAfterDays int) *Quarantine {
	return &Quarantine{path: path, retryAfter: time.Duration(retryAfterDays) * 24 * time.Hour}
}

// Mark records symbol as bad on the day of now.
func (q *Quarantine) Mark(symbol, reason string, now time.Time) error {
	if q == nil || q.path == "" {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if dir := filepath.Dir(q.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create quarantine dir: %w", err)
		}
	}
	f, err := os.OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open quarantine: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s|%s\n", symbol, now.Format(dateLayout)); err != nil {
		return fmt.Errorf("write quarantine: %w", err)
	}
	log.Printf("[INFO] marked %s as bad symbol (%s)", symbol, reason)
	return nil
}

// active returns the symbols still inside the retry window at now. The
// latest mark of a symbol wins; lines without a parsable date count as
// marked today.
func (q *Quarantine) active(now time.Time) (map[string]bool, error) {
	if q == nil || q.path == "" {
		return nil, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	f, err := os.Open(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open quarantine: %w", err)
	}
	defer f.Close()

	marks := make(map[string]time.Time)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		sym, date, _ := strings.Cut(line, "|")
		at, err := time.ParseInLocation(dateLayout, date, now.Location())
		if err != nil {
			at = now
		}
		if prev, ok := marks[sym]; !ok || at.After(prev) {
			marks[sym] = at
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read quarantine: %w", err)
	}

	active := make(map[string]bool, len(marks))
	for sym, at := range marks {
		if now.Sub(at) < q.retryAfter {
			active[sym] = true
		}
	}
	return active, nil
}

// Load reads one symbol per line from path, skipping blanks, duplicates
// and quarantined symbols. If the quarantine would leave nothing, the
// full list is returned.
func Load(path string, q *Quarantine, now time.Time) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()

	var all []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sym := strings.TrimSpace(sc.Text())
		// universe.csv may carry a trailing comma or extra columns
		sym, _, _ = strings.Cut(sym, ",")
		sym = strings.TrimSpace(sym)
		if sym == "" || strings.HasPrefix(sym, "#") || seen[sym] {
			continue
		}
		seen[sym] = true
		all = append(all, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}

	bad, err := q.active(now)
	if err != nil {
		return nil, err
	}
	filtered := make([]string, 0, len(all))
	for _, sym := range all {
		if !bad[sym] {
			filtered = append(filtered, sym)
		}
	}
	log.Printf("[INFO] loaded %d tickers (skipped %d bad symbols)", len(filtered), len(all)-len(filtered))
	if len(filtered) == 0 {
		return all, nil
	}
	return filtered, nil
}
