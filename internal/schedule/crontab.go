package schedule

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

var (
	ErrCrontabCommand = errors.New("crontab command failed")
)

// CrontabExecutor reads and replaces the current user's crontab.
// This interface allows for mocking crontab in tests.
type CrontabExecutor interface {
	// Read returns the current crontab, or "" when the user has none
	Read(ctx context.Context) (string, error)

	// Write replaces the crontab with content
	Write(ctx context.Context, content string) error
}

// CrontabRunner runs the system crontab binary
type CrontabRunner struct {
	binary string
}

// NewCrontabRunner creates a CrontabRunner using "crontab" from PATH
func NewCrontabRunner() *CrontabRunner {
	return &CrontabRunner{binary: "crontab"}
}

// Read runs `crontab -l`. A user without a crontab reads as empty.
func (c *CrontabRunner) Read(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, "-l")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "no crontab for") {
			return "", nil
		}
		if msg != "" {
			return "", errors.Join(ErrCrontabCommand, errors.New(msg))
		}
		return "", errors.Join(ErrCrontabCommand, err)
	}
	return stdout.String(), nil
}

// Write runs `crontab -` with content on stdin
func (c *CrontabRunner) Write(ctx context.Context, content string) error {
	cmd := exec.CommandContext(ctx, c.binary, "-")
	cmd.Stdin = strings.NewReader(content)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.Join(ErrCrontabCommand, errors.New(msg))
		}
		return errors.Join(ErrCrontabCommand, err)
	}
	return nil
}

// MockCrontab implements CrontabExecutor in memory for testing
type MockCrontab struct {
	Content  string
	ReadErr  error
	WriteErr error
	Writes   int
}

// Read returns the stored content
func (m *MockCrontab) Read(ctx context.Context) (string, error) {
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.Content, nil
}

// Write stores content
func (m *MockCrontab) Write(ctx context.Context, content string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Content = content
	m.Writes++
	return nil
}

// Ensure implementations satisfy CrontabExecutor
var (
	_ CrontabExecutor = (*CrontabRunner)(nil)
	_ CrontabExecutor = (*MockCrontab)(nil)
)
