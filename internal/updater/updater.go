package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/pip"
)

var (
	// ErrNoPrompter is returned when interactive mode has no way to ask
	ErrNoPrompter = errors.New("interactive mode requires a prompter")
	// ErrNotInteractive is returned when stdin cannot answer prompts
	ErrNotInteractive = errors.New("interactive mode needs a terminal on stdin")
)

// Outcome is the final state of one package after a run
type Outcome string

const (
	OutcomeUpgraded Outcome = "upgraded"
	OutcomeFrozen   Outcome = "frozen"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeDeclined Outcome = "declined"
	OutcomeFailed   Outcome = "failed"
	OutcomePlanned  Outcome = "planned"
)

// Result records what happened to one package
type Result struct {
	Package     string  `json:"package"`
	FromVersion string  `json:"from_version"`
	ToVersion   string  `json:"to_version,omitempty"`
	Action      Action  `json:"action"`
	Outcome     Outcome `json:"outcome"`
	Message     string  `json:"message"`
	Error       string  `json:"error,omitempty"`
}

// Report is the result of a whole run
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Results    []Result  `json:"results"`
}

// Count returns the number of results with the given outcome
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Updater applies decisions through a pip executor
type Updater struct {
	exec           pip.Executor
	lookup         ExceptionLookup
	exceptionsName string
	interactive    bool
	dryRun         bool
	prompter       Prompter
	out            io.Writer
	nowFunc        func() time.Time
}

// Option is a functional option for configuring Updater
type Option func(*Updater)

// WithExceptions enables the exception list. name is the file name shown
// in skip and freeze messages.
func WithExceptions(lookup ExceptionLookup, name string) Option {
	return func(u *Updater) {
		u.lookup = lookup
		u.exceptionsName = name
	}
}

// WithInteractive asks before each upgrade to latest
func WithInteractive(p Prompter) Option {
	return func(u *Updater) {
		u.interactive = true
		u.prompter = p
	}
}

// WithDryRun prints decisions without installing or prompting
func WithDryRun(dryRun bool) Option {
	return func(u *Updater) {
		u.dryRun = dryRun
	}
}

// WithOutput sets where progress messages are printed
func WithOutput(w io.Writer) Option {
	return func(u *Updater) {
		u.out = w
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(u *Updater) {
		u.nowFunc = fn
	}
}

// New creates an Updater around a pip executor
func New(exec pip.Executor, opts ...Option) (*Updater, error) {
	u := &Updater{
		exec:           exec,
		exceptionsName: "exceptions file",
		out:            os.Stdout,
		nowFunc:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}

	if u.interactive && u.prompter == nil && !u.dryRun {
		return nil, ErrNoPrompter
	}
	return u, nil
}

// Run collects the outdated packages and processes each one in order.
// A package that fails to install does not stop the run.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: u.nowFunc(), DryRun: u.dryRun}

	packages, err := pip.Collect(ctx, u.exec)
	if err != nil {
		return nil, err
	}

	if len(packages) == 0 {
		report.FinishedAt = u.nowFunc()
		return report, nil
	}

	logger.Debug("%d outdated package(s)", len(packages))
	logger.Record(logger.LevelInfo, "Updating packages")

	for _, d := range Plan(packages, u.lookup, u.interactive) {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = u.nowFunc()
			return report, err
		}

		res, err := u.apply(ctx, d)
		if err != nil {
			report.FinishedAt = u.nowFunc()
			return report, err
		}
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = u.nowFunc()
	return report, nil
}

// apply carries out a single decision.
// Only prompt I/O errors and cancellation abort the run.
func (u *Updater) apply(ctx context.Context, d Decision) (Result, error) {
	pkg := d.Package
	res := Result{
		Package:     pkg.Name,
		FromVersion: pkg.Version,
		ToVersion:   d.Target,
		Action:      d.Action,
	}

	if u.dryRun {
		return u.plan(d, res), nil
	}

	switch d.Action {
	case ActionSkip:
		res.Outcome = OutcomeSkipped
		res.Message = fmt.Sprintf("%s not updated - exception noted at %s", pkg.Name, u.exceptionsName)
		u.report(res, logger.LevelInfo)
		return res, nil

	case ActionFreeze:
		return u.freeze(ctx, d, res), nil

	case ActionPrompt:
		question := fmt.Sprintf("Update %s from %s to %s? (y/n): ", pkg.Name, pkg.Version, pkg.LatestVersion)
		ok, err := u.prompter.Confirm(question)
		if err != nil {
			return res, fmt.Errorf("reading answer for %s: %w", pkg.Name, err)
		}
		if !ok {
			res.Outcome = OutcomeDeclined
			res.Message = fmt.Sprintf("%s not updated - cancelled by user", pkg.Name)
			u.report(res, logger.LevelInfo)
			return res, nil
		}
		fmt.Fprintf(u.out, "Updating %s from %s to %s\n", pkg.Name, pkg.Version, pkg.LatestVersion)
		return u.upgrade(ctx, pkg, res), nil

	default:
		return u.upgrade(ctx, pkg, res), nil
	}
}

// freeze installs the pinned version unless it is already installed
func (u *Updater) freeze(ctx context.Context, d Decision, res Result) Result {
	pkg := d.Package
	// cmp stays 1 for pins that are not plain versions, so pip resolves them
	cmp, err := pip.CompareVersions(d.Target, pkg.Version)
	if err != nil {
		logger.Debug("%s: %v", pkg.Name, err)
		cmp = 1
	}

	note := ""
	if cmp < 0 {
		note = fmt.Sprintf(" (downgrade from %s)", pkg.Version)
	}
	fmt.Fprintf(u.out, "%s freezed at %s%s - exception noted at %s\n", pkg.Name, d.Target, note, u.exceptionsName)
	logger.Record(logger.LevelInfo, "%s freezed at %s%s - exception noted at %s", pkg.Name, d.Target, note, u.exceptionsName)

	if cmp == 0 {
		res.Outcome = OutcomeFrozen
		res.Message = fmt.Sprintf("%s already at %s", pkg.Name, d.Target)
		u.report(res, logger.LevelInfo)
		return res
	}

	if err := u.exec.Install(ctx, pkg.Name, d.Target); err != nil {
		res.Outcome = OutcomeFailed
		res.Message = fmt.Sprintf("Error when freezing %s to %s", pkg.Name, d.Target)
		res.Error = err.Error()
		u.report(res, logger.LevelError)
		return res
	}

	res.Outcome = OutcomeFrozen
	res.Message = fmt.Sprintf("Correctly installed: %s freezed at %s", pkg.Name, d.Target)
	u.report(res, logger.LevelInfo)
	return res
}

// upgrade installs the latest version; pip itself goes through UpgradeSelf
func (u *Updater) upgrade(ctx context.Context, pkg pip.OutdatedPackage, res Result) Result {
	var err error
	if pkg.IsSelf() {
		err = u.exec.UpgradeSelf(ctx)
	} else {
		err = u.exec.Install(ctx, pkg.Name, pkg.LatestVersion)
	}

	if err != nil {
		res.Outcome = OutcomeFailed
		res.Message = fmt.Sprintf("Error when upgrading %s from %s to %s", pkg.Name, pkg.Version, pkg.LatestVersion)
		res.Error = err.Error()
		u.report(res, logger.LevelError)
		return res
	}

	res.Outcome = OutcomeUpgraded
	res.Message = fmt.Sprintf("Correctly installed: %s from %s to %s", pkg.Name, pkg.Version, pkg.LatestVersion)
	u.report(res, logger.LevelInfo)
	return res
}

// plan describes a decision without acting on it
func (u *Updater) plan(d Decision, res Result) Result {
	pkg := d.Package
	res.Outcome = OutcomePlanned
	switch d.Action {
	case ActionSkip:
		res.Message = fmt.Sprintf("would skip %s - exception noted at %s", pkg.Name, u.exceptionsName)
	case ActionFreeze:
		res.Message = fmt.Sprintf("would freeze %s at %s", pkg.Name, d.Target)
	case ActionPrompt:
		res.Message = fmt.Sprintf("would ask to update %s from %s to %s", pkg.Name, pkg.Version, d.Target)
	default:
		res.Message = fmt.Sprintf("would update %s from %s to %s", pkg.Name, pkg.Version, d.Target)
	}
	fmt.Fprintln(u.out, output.Sprintf(output.Dim, "%s", res.Message))
	return res
}

// report prints a result line and records it in the log file
func (u *Updater) report(res Result, level logger.Level) {
	c := output.OutcomeColor(string(res.Outcome))
	fmt.Fprintln(u.out, output.Sprintf(c, "%s", res.Message))
	logger.Record(level, "%s", res.Message)

	if res.Error != "" {
		fmt.Fprintln(u.out, strings.TrimSpace(res.Error))
		logger.Record(level, "%s", strings.TrimSpace(res.Error))
	}
}
