// Package logger provides leveled logging for sermonindex.
// Debug, Info and Warn messages are only printed in verbose mode (the
// --verbose flag); Error messages are always printed. Output defaults to
// stderr so command output on stdout stays machine-readable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level identifies the severity of a log line.
type Level int

const (
	// LevelDebug is for pipeline tracing.
	LevelDebug Level = iota
	// LevelInfo is for run summaries and lifecycle events.
	LevelInfo
	// LevelWarn is for degraded but recoverable situations.
	LevelWarn
	// LevelError is for failures the user must see.
	LevelError
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(level Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level < LevelError && !verbose {
		return
	}
	fmt.Fprintf(output, "["+level.String()+"] "+prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { logf(LevelDebug, "", format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { logf(LevelInfo, "", format, args...) }

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) { logf(LevelWarn, "", format, args...) }

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) { logf(LevelError, "", format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scope is a logger that prefixes every line with a component name.
type Scope struct {
	prefix string
}

// For returns a Scope for the named component, e.g. "indexer".
func For(component string) Scope {
	return Scope{prefix: component + ": "}
}

// Debug prints a scoped debug message.
func (s Scope) Debug(format string, args ...any) { logf(LevelDebug, s.prefix, format, args...) }

// Info prints a scoped informational message.
func (s Scope) Info(format string, args ...any) { logf(LevelInfo, s.prefix, format, args...) }

// Warn prints a scoped warning.
func (s Scope) Warn(format string, args ...any) { logf(LevelWarn, s.prefix, format, args...) }

// Error prints a scoped error.
func (s Scope) Error(format string, args ...any) { logf(LevelError, s.prefix, format, args...) }
