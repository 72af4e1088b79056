package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelQuiet // No output
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// DefaultLogName is the file name used when no log file is configured
const DefaultLogName = "pip-updater.log"

// Logger handles application logging.
// Terminal and file output have separate thresholds so that a quiet
// scheduled run still leaves a complete record in the log file.
type Logger struct {
	level      Level
	fileLevel  Level
	output     io.Writer
	fileOutput io.WriteCloser
	filePath   string
	mu         sync.Mutex
	nowFunc    func() time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the default logger instance
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// New creates a logger writing terminal output to w
func New(w io.Writer) *Logger {
	return &Logger{
		level:     LevelInfo,
		fileLevel: LevelInfo,
		output:    w,
		nowFunc:   time.Now,
	}
}

// SetLevel sets the terminal logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetVerbose enables debug output on the terminal and in the log file
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.mu.Lock()
		l.level = LevelDebug
		l.fileLevel = LevelDebug
		l.mu.Unlock()
	}
}

// SetQuiet disables all terminal output except errors.
// The log file keeps recording at its own level.
func (l *Logger) SetQuiet(quiet bool) {
	if quiet {
		l.SetLevel(LevelError)
	}
}

// EnableFileLogging appends log lines to path.
// An empty path selects DefaultLogPath.
func (l *Logger) EnableFileLogging(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if path == "" {
		p, err := DefaultLogPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if l.fileOutput != nil {
		l.fileOutput.Close()
	}
	l.fileOutput = f
	l.filePath = path
	return nil
}

// FilePath returns the active log file path, or "" when file logging is off
func (l *Logger) FilePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filePath
}

// Close closes the log file if open
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileOutput != nil {
		l.fileOutput.Close()
		l.fileOutput = nil
		l.filePath = ""
	}
}

// StateDir returns the pip-updater state directory
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	// Use XDG_STATE_HOME for logs (standard for runtime data)
	xdgState := os.Getenv("XDG_STATE_HOME")
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(xdgState, "pip-updater"), nil
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", DefaultLogName), nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if level >= l.level && l.output != nil {
		fmt.Fprint(l.output, msg+"\n")
	}

	if l.fileOutput != nil && level >= l.fileLevel {
		timestamp := l.nowFunc().Format("2006-01-02 15:04:05")
		fmt.Fprintf(l.fileOutput, "[%s] %s: %s\n", timestamp, levelNames[level], msg)
	}
}

// Record writes a message to the log file only.
// It is used for lines the caller already printed to stdout.
func (l *Logger) Record(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileOutput == nil || level < l.fileLevel {
		return
	}
	timestamp := l.nowFunc().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.fileOutput, "[%s] %s: %s\n", timestamp, levelNames[level], fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }
func Info(format string, args ...interface{})  { Default().Info(format, args...) }
func Warn(format string, args ...interface{})  { Default().Warn(format, args...) }
func Error(format string, args ...interface{}) { Default().Error(format, args...) }
func SetVerbose(v bool)                        { Default().SetVerbose(v) }
func SetQuiet(q bool)                          { Default().SetQuiet(q) }
func EnableFileLogging(path string) error      { return Default().EnableFileLogging(path) }
func Close()                                   { Default().Close() }

// Record writes a message to the default logger's file only
func Record(level Level, format string, args ...interface{}) {
	Default().Record(level, format, args...)
}
