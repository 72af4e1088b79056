package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Error variables for history errors
var (
	// ErrHistoryCorrupted is returned when the history file cannot be parsed
	ErrHistoryCorrupted = errors.New("history file is corrupted")
	// ErrNoHistory is returned when no run has been recorded yet
	ErrNoHistory = errors.New("no recorded runs")
)

// DefaultHistoryLimit is the number of runs kept on disk
const DefaultHistoryLimit = 20

// historyFile represents the JSON structure stored on disk
type historyFile struct {
	Runs []Report `json:"runs"`
}

// History keeps the reports of recent runs.
// It persists them to disk and supports concurrent access.
type History struct {
	runs  []Report
	path  string
	limit int
	mu    sync.RWMutex
}

// HistoryOption is a functional option for configuring History
type HistoryOption func(*History)

// WithHistoryLimit sets how many runs are kept
func WithHistoryLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// NewHistory creates or loads the run history in stateDir.
// A corrupted file is replaced on the next Append.
func NewHistory(stateDir string, opts ...HistoryOption) (*History, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	h := &History{
		path:  filepath.Join(stateDir, "history.json"),
		limit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.load(); err != nil && !os.IsNotExist(err) {
		h.runs = nil
	}

	return h, nil
}

// load reads the history from disk
func (h *History) load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return err
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return fmt.Errorf("%w: %v", ErrHistoryCorrupted, err)
	}
	h.runs = hf.Runs
	return nil
}

// Append adds a report, drops the oldest beyond the limit, and saves
func (h *History) Append(r Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, r)
	if len(h.runs) > h.limit {
		h.runs = h.runs[len(h.runs)-h.limit:]
	}
	return h.saveUnsafe()
}

// Last returns the most recent report
func (h *History) Last() (*Report, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.runs) == 0 {
		return nil, ErrNoHistory
	}
	r := h.runs[len(h.runs)-1]
	return &r, nil
}

// Runs returns a copy of all stored reports, oldest first
func (h *History) Runs() []Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Report(nil), h.runs...)
}

// Path returns the history file path
func (h *History) Path() string {
	return h.path
}

// saveUnsafe persists the history without locking.
// Caller must hold the write lock.
func (h *History) saveUnsafe() error {
	data, err := json.MarshalIndent(historyFile{Runs: h.runs}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename history file: %w", err)
	}
	return nil
}
