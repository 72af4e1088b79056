package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// Outcome colors
	Upgraded = color.New(color.FgGreen)
	Frozen   = color.New(color.FgCyan)
	Skipped  = color.New(color.FgMagenta)
	Declined = color.New(color.FgYellow)
	Failed   = color.New(color.FgRed)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// IsInputTerminal returns true if stdin is a terminal
func IsInputTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// OutcomeColor returns the color for an update outcome
func OutcomeColor(outcome string) *color.Color {
	switch outcome {
	case "upgraded":
		return Upgraded
	case "frozen":
		return Frozen
	case "skipped":
		return Skipped
	case "declined":
		return Declined
	case "failed":
		return Failed
	default:
		return color.New(color.Reset)
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// FormatOutcome formats an outcome label with its color
func FormatOutcome(outcome string) string {
	return OutcomeColor(outcome).Sprintf("[%s]", outcome)
}

// FormatPackage formats a package name, with its version when given
func FormatPackage(name, version string) string {
	if version != "" {
		return Package.Sprintf("%s==%s", name, version)
	}
	return Package.Sprint(name)
}
