//go:build unit || integration

package lifecycle_test

import (
	"context"
	"sync"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

type record struct {
	level  log.Level
	msg    string
	fields map[string]any
}

// recordingLogger keeps every record so tests can assert on phase output.
type recordingLogger struct {
	mu      sync.Mutex
	records []record
}

func (l *recordingLogger) Log(_ context.Context, level log.Level, msg string, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}

	l.records = append(l.records, record{level: level, msg: msg, fields: m})
}

func (l *recordingLogger) With(_ ...log.Field) log.Logger { return l }
func (l *recordingLogger) WithGroup(_ string) log.Logger  { return l }
func (l *recordingLogger) Enabled(_ log.Level) bool       { return true }
func (l *recordingLogger) Sync(_ context.Context) error   { return nil }

func (l *recordingLogger) infoRecords() []record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]record, 0, len(l.records))
	for _, r := range l.records {
		if r.level == log.LevelInfo {
			out = append(out, r)
		}
	}

	return out
}

func (l *recordingLogger) all() []record {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]record, len(l.records))
	copy(cp, l.records)

	return cp
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex

	current := start

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		now := current
		current = current.Add(step)

		return now
	}
}
