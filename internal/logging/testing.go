package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Observed is a logger whose entries can be inspected by tests.
type Observed struct {
	*zap.Logger
	logs *observer.ObservedLogs
}

// NewObserved captures every entry at debug level and above.
func NewObserved() *Observed {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Observed{Logger: zap.New(core), logs: logs}
}

// Entries returns everything logged so far.
func (o *Observed) Entries() []observer.LoggedEntry {
	return o.logs.All()
}

// Messages returns the messages logged at level.
func (o *Observed) Messages(level zapcore.Level) []string {
	var out []string
	for _, entry := range o.logs.FilterLevelExact(level).All() {
		out = append(out, entry.Message)
	}
	return out
}

// Find returns the entries whose message contains snippet.
func (o *Observed) Find(snippet string) []observer.LoggedEntry {
	return o.logs.FilterMessageSnippet(snippet).All()
}

// AssertLogged fails tb unless an entry at level contains snippet.
func (o *Observed) AssertLogged(tb testing.TB, level zapcore.Level, snippet string) {
	tb.Helper()
	for _, entry := range o.logs.All() {
		if entry.Level == level && strings.Contains(entry.Message, snippet) {
			return
		}
	}
	tb.Errorf("expected %v log containing %q, got %+v", level, snippet, o.logs.All())
}
