package pip

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

var (
	ErrPipCommand      = errors.New("pip command failed")
	ErrInvalidArgument = errors.New("invalid package name or version")
)

// Runner executes pip through a configurable executable
type Runner struct {
	command []string
	python  string
}

// NewRunner creates a Runner. command may contain arguments, e.g.
// "python3 -m pip"; python is the interpreter used for UpgradeSelf.
func NewRunner(command, python string) *Runner {
	return &Runner{
		command: strings.Fields(command),
		python:  python,
	}
}

// Command returns the pip invocation as configured
func (r *Runner) Command() string {
	return strings.Join(r.command, " ")
}

// runCommand executes name with args and returns stdout, stderr, and any error
func runCommand(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		// Wrap the error with stderr for context
		if msg := strings.TrimSpace(stderr); msg != "" {
			err = errors.Join(ErrPipCommand, errors.New(msg))
		} else {
			err = errors.Join(ErrPipCommand, err)
		}
	}

	return stdout, stderr, err
}

// pip runs the configured pip command with extra args
func (r *Runner) pip(ctx context.Context, args ...string) (string, string, error) {
	if len(r.command) == 0 {
		return "", "", errors.Join(ErrPipCommand, errors.New("empty pip command"))
	}
	full := append(append([]string{}, r.command[1:]...), args...)
	return runCommand(ctx, r.command[0], full...)
}

// Outdated returns the raw JSON from `pip list --outdated --format=json`
func (r *Runner) Outdated(ctx context.Context) ([]byte, error) {
	stdout, _, err := r.pip(ctx, "list", "--outdated", "--format=json")
	if err != nil {
		return nil, err
	}
	return []byte(stdout), nil
}

// OutdatedTable returns the human-readable `pip list --outdated` table
func (r *Runner) OutdatedTable(ctx context.Context) (string, error) {
	stdout, _, err := r.pip(ctx, "list", "--outdated")
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// Install runs `pip install name==version`
func (r *Runner) Install(ctx context.Context, name, version string) error {
	if err := validateRequirement(name, version); err != nil {
		return err
	}
	_, _, err := r.pip(ctx, "install", name+"=="+version)
	return err
}

// UpgradeSelf runs `python3 -m pip install --upgrade pip`
func (r *Runner) UpgradeSelf(ctx context.Context) error {
	_, _, err := runCommand(ctx, r.python, "-m", "pip", "install", "--upgrade", "pip")
	return err
}

// validateRequirement rejects values that would be read as pip options or
// as a different requirement specifier
func validateRequirement(name, version string) error {
	if name == "" || version == "" {
		return ErrInvalidArgument
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(version, "-") {
		return ErrInvalidArgument
	}
	if strings.ContainsAny(name+version, " \t\n=<>!~;,") {
		return ErrInvalidArgument
	}
	return nil
}

// Ensure Runner implements Executor interface
var _ Executor = (*Runner)(nil)
