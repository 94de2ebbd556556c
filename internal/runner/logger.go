package runner

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"mcpconform/internal/obslog"
)

// Logger narrates one run's progress by forwarding to obslog, tagged with a
// subsystem string. Gating on --debug/--verbose is obslog's job (the level
// configured once at startup via obslog.Init, per cmd/run.go): Logger keeps
// no verbose/debug state of its own, so there is exactly one implementation
// here rather than a CLI/silent pair that each re-derive the same gating
// obslog.Level already encodes.
type Logger struct {
	tag string
}

// NewLogger returns a Logger whose lines are tagged with subsystem tag.
func NewLogger(tag string) Logger { return Logger{tag: tag} }

// WithPrefix returns a Logger whose tag is l's tag further qualified by
// prefix, so a per-test prefix can be layered onto a run's base tag
// without needing a distinct wrapper type.
func (l Logger) WithPrefix(prefix string) Logger {
	if l.tag == "" {
		return Logger{tag: prefix}
	}
	return Logger{tag: l.tag + ":" + prefix}
}

func (l Logger) Debug(format string, args ...interface{}) {
	obslog.Debug(l.tag, format, args...)
}

func (l Logger) Info(format string, args ...interface{}) {
	obslog.Info(l.tag, format, args...)
}

func (l Logger) Error(format string, args ...interface{}) {
	obslog.Error(l.tag, nil, format, args...)
}

// GenerateTestPrefix derives a short, stable tag from a test name: three
// characters of the cleaned name plus three hex characters of a SHA256
// digest of the full name, so distinct tests with similar names stay
// distinguishable once their lines are interleaved.
func GenerateTestPrefix(testName string) string {
	name := testName
	for _, p := range []string{"test_tool_", "test_tools_", "test_"} {
		name = strings.TrimPrefix(name, p)
	}

	slug := strings.ToUpper(name)
	if len(slug) > 3 {
		slug = slug[:3]
	}
	for len(slug) < 3 {
		slug += "-"
	}

	hash := sha256.Sum256([]byte(testName))
	hashHex := fmt.Sprintf("%x", hash[:2])

	return fmt.Sprintf("%s-%s", slug, strings.ToUpper(hashHex[:3]))
}
