// Package obslog provides the structured, subsystem-tagged logger used
// across the harness for diagnostics that are not part of a test's own
// narrated output.
//
// It mirrors the dual-mode design of a CLI logging package: a package-level
// slog.Logger configured once at startup, plus small helpers that tag every
// line with a subsystem so a `--debug` run can be grepped by component.
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level mirrors slog.Level but keeps the harness's public API independent
// of the standard library's naming.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Init configures the package-level logger. Safe to call more than once;
// the most recent call wins. A nil output defaults to os.Stderr so debug
// diagnostics never land on stdout and contaminate a stdio transport.
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()}))
}

// Discard silences all output. Used when the harness runs in a mode where
// any incidental stdout/stderr write could corrupt a protocol stream.
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return logger
}

func logInternal(level Level, subsystem string, err error, messageFmt string, args ...interface{}) {
	l := current()
	if !l.Enabled(context.Background(), level.slogLevel()) {
		return
	}
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug-level diagnostic tagged with subsystem.
func Debug(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an info-level diagnostic tagged with subsystem.
func Info(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning tagged with subsystem.
func Warn(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error tagged with subsystem, attaching err as a structured attribute.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// AuditEvent is a structured record for security-relevant occurrences, such
// as an authorization probe against an HTTP server under test.
type AuditEvent struct {
	Action  string
	Outcome string
	Target  string
	Details string
	Error   string
}

// Audit logs an AuditEvent at info level with a filterable [AUDIT] prefix.
func Audit(event AuditEvent) {
	parts := make([]string, 0, 5)
	parts = append(parts, "action="+event.Action)
	parts = append(parts, "outcome="+event.Outcome)
	if event.Target != "" {
		parts = append(parts, "target="+event.Target)
	}
	if event.Details != "" {
		parts = append(parts, "details="+event.Details)
	}
	if event.Error != "" {
		parts = append(parts, "error="+event.Error)
	}
	logInternal(LevelInfo, "AUDIT", nil, "[AUDIT] %s", strings.Join(parts, " "))
}
