// Package schedule registers pip-updater as a recurring job in the user's
// crontab. The managed line is identified by a trailing marker comment so it
// can be replaced or removed without touching other entries.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

var (
	// ErrInvalidExpression is returned for expressions cron would reject
	ErrInvalidExpression = errors.New("invalid schedule expression")
	// ErrNotScheduled is returned when no managed job exists
	ErrNotScheduled = errors.New("no scheduled job found")
)

// Marker tags the crontab line managed by pip-updater
const Marker = "# pip-updater"

// Job is a scheduled invocation of the tool
type Job struct {
	Expression string
	Command    string
}

// Line renders the job as a crontab line
func (j Job) Line() string {
	return j.Expression + " " + j.Command + " " + Marker
}

// Validate checks a five-field cron expression or a crontab descriptor.
// Descriptors that only the Go scheduler understands (@every, TZ=) are
// rejected because crontab(5) does not support them.
func Validate(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}
	if expr == "@reboot" {
		return nil
	}
	if strings.HasPrefix(expr, "@every") || strings.HasPrefix(expr, "TZ=") || strings.HasPrefix(expr, "CRON_TZ=") {
		return fmt.Errorf("%w: %q is not supported by crontab", ErrInvalidExpression, expr)
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return nil
}

// BuildCommand renders the command line for the job, quoting the executable.
// Percent signs are escaped because cron turns a bare % into a newline,
// even inside quotes.
func BuildCommand(executable string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(executable))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.ReplaceAll(strings.Join(parts, " "), "%", `\%`)
}

// shellQuote single-quotes s when it contains characters the shell would split on
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// isManaged reports whether a crontab line carries the marker
func isManaged(line string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), Marker)
}

// Merge returns crontab content with the managed line replaced by job.
// Every other line is kept in place; a missing managed line is appended.
func Merge(content string, job Job) string {
	var lines []string
	replaced := false
	for _, line := range splitLines(content) {
		if isManaged(line) {
			if !replaced {
				lines = append(lines, job.Line())
				replaced = true
			}
			continue
		}
		lines = append(lines, line)
	}
	if !replaced {
		lines = append(lines, job.Line())
	}
	return strings.Join(lines, "\n") + "\n"
}

// Strip returns crontab content without the managed line
func Strip(content string) (string, bool) {
	var lines []string
	found := false
	for _, line := range splitLines(content) {
		if isManaged(line) {
			found = true
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", found
	}
	return strings.Join(lines, "\n") + "\n", found
}

// Find returns the managed job from crontab content
func Find(content string) (Job, bool) {
	for _, line := range splitLines(content) {
		if !isManaged(line) {
			continue
		}
		body := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), Marker))
		fields := strings.Fields(body)

		n := 5
		if len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
			n = 1
		}
		if len(fields) <= n {
			return Job{}, false
		}
		return Job{
			Expression: strings.Join(fields[:n], " "),
			Command:    strings.Join(fields[n:], " "),
		}, true
	}
	return Job{}, false
}

// splitLines splits content into lines, dropping a trailing empty line
func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// Registrar installs, shows and removes the scheduled job
type Registrar struct {
	tab CrontabExecutor
}

// NewRegistrar creates a Registrar over a crontab executor
func NewRegistrar(tab CrontabExecutor) *Registrar {
	return &Registrar{tab: tab}
}

// Install validates the job and writes it into the crontab,
// replacing any previously registered pip-updater line
func (r *Registrar) Install(ctx context.Context, job Job) error {
	if err := Validate(job.Expression); err != nil {
		return err
	}
	job.Expression = strings.Join(strings.Fields(job.Expression), " ")

	current, err := r.tab.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading crontab: %w", err)
	}
	if err := r.tab.Write(ctx, Merge(current, job)); err != nil {
		return fmt.Errorf("writing crontab: %w", err)
	}
	return nil
}

// Show returns the registered job
func (r *Registrar) Show(ctx context.Context) (Job, error) {
	current, err := r.tab.Read(ctx)
	if err != nil {
		return Job{}, fmt.Errorf("reading crontab: %w", err)
	}
	job, ok := Find(current)
	if !ok {
		return Job{}, ErrNotScheduled
	}
	return job, nil
}

// Remove deletes the registered job
func (r *Registrar) Remove(ctx context.Context) error {
	current, err := r.tab.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading crontab: %w", err)
	}
	stripped, found := Strip(current)
	if !found {
		return ErrNotScheduled
	}
	if err := r.tab.Write(ctx, stripped); err != nil {
		return fmt.Errorf("writing crontab: %w", err)
	}
	return nil
}
