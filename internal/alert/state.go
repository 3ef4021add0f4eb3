package alert

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"EquityScreener/internal/model"
)

// LoadState reads the alert state from a JSON file. A missing or corrupt
// file yields an empty state.
func LoadState(filePath string) (*model.AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.AlertState{}, nil
		}
		return nil, err
	}
	var state model.AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("[WARN] alert state %s is corrupt, starting empty: %v", filePath, err)
		return &model.AlertState{}, nil
	}
	return &state, nil
}

// SaveState writes the alert state to a JSON file.
func SaveState(filePath string, state *model.AlertState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
