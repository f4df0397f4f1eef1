//go:build unit

package http

import (
	"context"
	"sync"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

type loggedEntry struct {
	level  log.Level
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries *[]loggedEntry
	fields  []log.Field
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]loggedEntry{}}
}

func (l *recordingLogger) Log(_ context.Context, level log.Level, msg string, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := make(map[string]any)
	for _, f := range append(append([]log.Field{}, l.fields...), fields...) {
		m[f.Key] = f.Value
	}

	*l.entries = append(*l.entries, loggedEntry{level: level, msg: msg, fields: m})
}

func (l *recordingLogger) With(fields ...log.Field) log.Logger {
	return &recordingLogger{entries: l.entries, fields: append(append([]log.Field{}, l.fields...), fields...)}
}

func (l *recordingLogger) WithGroup(_ string) log.Logger { return l }
func (l *recordingLogger) Enabled(_ log.Level) bool      { return true }
func (l *recordingLogger) Sync(_ context.Context) error  { return nil }

func (l *recordingLogger) all() []loggedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]loggedEntry, len(*l.entries))
	copy(cp, *l.entries)

	return cp
}
