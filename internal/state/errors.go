package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// History manages the append-only error history file. Entries are never
// deleted or rewritten, only appended.
type History struct {
	path string
}

// NewHistory creates a History for the given error_history.json path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads all recorded errors in chronological order. A missing file
// yields an empty history.
func (h *History) Load() ([]ErrorRecord, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read error history: %w", err)
	}

	var records []ErrorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return records, nil
}

// Append adds one record to the history. The rewrite is atomic so a
// crash cannot lose previously recorded errors.
func (h *History) Append(rec ErrorRecord) error {
	records, err := h.Load()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal error history: %w", err)
	}
	if err := writeFileAtomic(h.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write error history: %w", err)
	}
	return nil
}

// LogDecision appends a timestamped line to the decision log. Failures
// here are reported but never fatal to the calling operation.
func LogDecision(path, message string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open decision log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append decision log: %w", err)
	}
	return nil
}
