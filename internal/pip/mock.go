package pip

import (
	"context"
	"sync"
)

// InstallCall records one Install or UpgradeSelf invocation on a MockRunner
type InstallCall struct {
	Name    string
	Version string
	Self    bool
}

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior.
type MockRunner struct {
	OutdatedFunc      func(ctx context.Context) ([]byte, error)
	OutdatedTableFunc func(ctx context.Context) (string, error)
	InstallFunc       func(ctx context.Context, name, version string) error
	UpgradeSelfFunc   func(ctx context.Context) error

	mu    sync.Mutex
	calls []InstallCall
}

// NewMockRunner creates a MockRunner that reports the given JSON inventory
func NewMockRunner(inventoryJSON string) *MockRunner {
	return &MockRunner{
		OutdatedFunc: func(ctx context.Context) ([]byte, error) {
			return []byte(inventoryJSON), nil
		},
	}
}

// Outdated returns the configured inventory
func (m *MockRunner) Outdated(ctx context.Context) ([]byte, error) {
	if m.OutdatedFunc != nil {
		return m.OutdatedFunc(ctx)
	}
	return []byte("[]"), nil
}

// OutdatedTable returns the configured table
func (m *MockRunner) OutdatedTable(ctx context.Context) (string, error) {
	if m.OutdatedTableFunc != nil {
		return m.OutdatedTableFunc(ctx)
	}
	return "", nil
}

// Install records the call and runs InstallFunc when set
func (m *MockRunner) Install(ctx context.Context, name, version string) error {
	m.mu.Lock()
	m.calls = append(m.calls, InstallCall{Name: name, Version: version})
	m.mu.Unlock()

	if m.InstallFunc != nil {
		return m.InstallFunc(ctx, name, version)
	}
	return nil
}

// UpgradeSelf records the call and runs UpgradeSelfFunc when set
func (m *MockRunner) UpgradeSelf(ctx context.Context) error {
	m.mu.Lock()
	m.calls = append(m.calls, InstallCall{Name: "pip", Self: true})
	m.mu.Unlock()

	if m.UpgradeSelfFunc != nil {
		return m.UpgradeSelfFunc(ctx)
	}
	return nil
}

// Calls returns a copy of the recorded install calls
func (m *MockRunner) Calls() []InstallCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InstallCall(nil), m.calls...)
}

// Ensure MockRunner implements Executor interface
var _ Executor = (*MockRunner)(nil)
