// Package alert remembers which symbols were already sent so each match
// is alerted once per category.
package alert

import (
	"sync"

	"EquityScreener/internal/model"
)

// Store guards the alert state and persists it on every change.
type Store struct {
	mu       sync.Mutex
	state    *model.AlertState
	filePath string
}

// NewStore creates a Store, loading or initializing state from disk.
func NewStore(filePath string) (*Store, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	if state.Alerted == nil {
		state.Alerted = make(map[model.Category][]string)
	}
	return &Store{state: state, filePath: filePath}, nil
}

// Fresh returns the symbols of the category that were never alerted,
// keeping input order.
func (s *Store) Fresh(c model.Category, symbols []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.state.Alerted[c]))
	for _, sym := range s.state.Alerted[c] {
		seen[sym] = true
	}
	var fresh []string
	for _, sym := range symbols {
		if !seen[sym] {
			seen[sym] = true
			fresh = append(fresh, sym)
		}
	}
	return fresh
}

// Mark records symbols as alerted for the category.
func (s *Store) Mark(c model.Category, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Alerted[c] = append(s.state.Alerted[c], symbols...)
	return SaveState(s.filePath, s.state)
}

// SetLastRun stores the summary shown by /status.
func (s *Store) SetLastRun(sum model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastRun = &sum
	return SaveState(s.filePath, s.state)
}

// LastRun returns a copy of the last stored summary.
func (s *Store) LastRun() (model.RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.LastRun == nil {
		return model.RunSummary{}, false
	}
	return *s.state.LastRun, true
}
