// Package logger provides structured logging for drafter.
// Entries are key/value pairs rendered by charmbracelet/log, as text for
// terminals or as JSON for machines. When verbose mode is enabled via the
// --verbose flag, debug entries describing each generation attempt are
// printed to stderr; otherwise only errors are.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

// Logger is a structured, levelled logger.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)

	// With returns a logger that adds keyvals to every entry.
	With(keyvals ...any) Logger
}

// Config configures a standalone logger.
type Config struct {
	// Output receives log entries (default: os.Stderr).
	Output io.Writer

	// Verbose enables debug entries.
	Verbose bool

	// JSON renders entries as JSON objects instead of text.
	JSON bool

	// Prefix is printed ahead of every text entry.
	Prefix string
}

var (
	mu         sync.RWMutex
	verbose    bool
	jsonFormat bool
	output     io.Writer = os.Stderr
	base                 = newCharm(Config{Output: os.Stderr})
)

// New creates a standalone logger.
func New(cfg Config) Logger {
	return &charmLogger{l: newCharm(cfg)}
}

// Discard returns a logger that drops every entry. Useful for testing.
func Discard() Logger {
	return New(Config{Output: io.Discard})
}

// Default returns a logger backed by the package-level configuration.
// Changes made through SetVerbose, SetOutput and SetJSON apply to it.
func Default() Logger {
	return &defaultLogger{}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for log entries.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetJSON switches the package-level logger between text and JSON output.
func SetJSON(j bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonFormat = j
	rebuild()
}

// Debug logs a debug entry if verbose mode is enabled.
func Debug(msg string, keyvals ...any) {
	current().Debug(msg, keyvals...)
}

// Info logs an informational entry if verbose mode is enabled.
func Info(msg string, keyvals ...any) {
	current().Info(msg, keyvals...)
}

// Warn logs a warning entry if verbose mode is enabled.
func Warn(msg string, keyvals ...any) {
	current().Warn(msg, keyvals...)
}

// Error logs an error entry.
func Error(msg string, keyvals ...any) {
	current().Error(msg, keyvals...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && !jsonFormat {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// rebuild replaces the package-level charm logger (caller must hold lock).
func rebuild() {
	base = newCharm(Config{Output: output, Verbose: verbose, JSON: jsonFormat})
}

func current() *charmlog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func newCharm(cfg Config) *charmlog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := charmlog.ErrorLevel
	if cfg.Verbose {
		level = charmlog.DebugLevel
	}

	l := charmlog.NewWithOptions(cfg.Output, charmlog.Options{
		Level:           level,
		Prefix:          cfg.Prefix,
		ReportTimestamp: cfg.JSON,
		TimeFormat:      "15:04:05",
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
		l.SetStyles(styles())
	}
	return l
}

// styles returns level labels matching the CLI's colour scheme.
func styles() *charmlog.Styles {
	s := charmlog.DefaultStyles()
	s.Levels[charmlog.DebugLevel] = lipgloss.NewStyle().SetString("DEBUG").Foreground(lipgloss.Color("63"))
	s.Levels[charmlog.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Foreground(lipgloss.Color("86"))
	s.Levels[charmlog.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Foreground(lipgloss.Color("192"))
	s.Levels[charmlog.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Foreground(lipgloss.Color("204")).Bold(true)
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	s.Values["err"] = lipgloss.NewStyle().Bold(true)
	return s
}

// charmLogger adapts a charm logger to Logger.
type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// defaultLogger resolves the package-level logger on every entry.
type defaultLogger struct {
	keyvals []any
}

func (d *defaultLogger) resolve() *charmlog.Logger {
	l := current()
	if len(d.keyvals) > 0 {
		return l.With(d.keyvals...)
	}
	return l
}

func (d *defaultLogger) Debug(msg string, keyvals ...any) { d.resolve().Debug(msg, keyvals...) }
func (d *defaultLogger) Info(msg string, keyvals ...any)  { d.resolve().Info(msg, keyvals...) }
func (d *defaultLogger) Warn(msg string, keyvals ...any)  { d.resolve().Warn(msg, keyvals...) }
func (d *defaultLogger) Error(msg string, keyvals ...any) { d.resolve().Error(msg, keyvals...) }

func (d *defaultLogger) With(keyvals ...any) Logger {
	merged := make([]any, 0, len(d.keyvals)+len(keyvals))
	merged = append(merged, d.keyvals...)
	merged = append(merged, keyvals...)
	return &defaultLogger{keyvals: merged}
}
