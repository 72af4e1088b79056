package updater

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func sampleReport(minute int) Report {
	at := time.Date(2026, 10, 18, 4, minute, 0, 0, time.UTC)
	return Report{
		StartedAt:  at,
		FinishedAt: at.Add(30 * time.Second),
		Results: []Result{
			{Package: "flask", FromVersion: "2.3.0", ToVersion: "3.0.3", Action: ActionUpgrade, Outcome: OutcomeUpgraded},
			{Package: "numpy", FromVersion: "1.26.0", Action: ActionSkip, Outcome: OutcomeSkipped},
		},
	}
}

func TestNewHistoryCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state", "pip-updater")

	h, err := NewHistory(dir)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("state directory not created: %v", err)
	}
	if _, err := h.Last(); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

func TestHistoryPersists(t *testing.T) {
	dir := t.TempDir()

	h, err := NewHistory(dir)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	if err := h.Append(sampleReport(0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := h.Append(sampleReport(5)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	reloaded, err := NewHistory(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	last, err := reloaded.Last()
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if last.StartedAt.Minute() != 5 {
		t.Errorf("expected most recent run, got %v", last.StartedAt)
	}
	if len(last.Results) != 2 || last.Results[1].Outcome != OutcomeSkipped {
		t.Errorf("results not preserved: %+v", last.Results)
	}
	if len(reloaded.Runs()) != 2 {
		t.Errorf("expected 2 runs, got %d", len(reloaded.Runs()))
	}
}

func TestHistoryCorruptedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	h, err := NewHistory(dir)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	if len(h.Runs()) != 0 {
		t.Errorf("expected empty history, got %d runs", len(h.Runs()))
	}
	if err := h.Append(sampleReport(1)); err != nil {
		t.Fatalf("Append should overwrite corrupted file: %v", err)
	}
}

// TestHistoryLimit checks that only the newest runs are kept
func TestHistoryLimit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("history never exceeds its limit and keeps the newest", prop.ForAll(
		func(limit, appends int) bool {
			h, err := NewHistory(t.TempDir(), WithHistoryLimit(limit))
			if err != nil {
				return false
			}
			for i := 0; i < appends; i++ {
				if err := h.Append(sampleReport(i)); err != nil {
					return false
				}
			}

			runs := h.Runs()
			want := appends
			if want > limit {
				want = limit
			}
			if len(runs) != want {
				t.Logf("limit %d appends %d: got %d runs", limit, appends, len(runs))
				return false
			}
			last, err := h.Last()
			return err == nil && last.StartedAt.Minute() == appends-1
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
