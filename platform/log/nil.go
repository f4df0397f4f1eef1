package log

import "context"

// discard drops every record. Components that accept an optional Logger
// (the lifecycle coordinator, the server manager, the key ring) fall back to it,
// so a missing logger never turns a phase transition into a nil dereference.
type discard struct{}

// NewNop returns a Logger that drops every record and reports every level disabled.
func NewNop() Logger {
	return discard{}
}

// OrNop returns logger, or NewNop() when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return NewNop()
	}

	return logger
}

func (discard) Log(context.Context, Level, string, ...Field) {}

//nolint:ireturn
func (d discard) With(...Field) Logger { return d }

//nolint:ireturn
func (d discard) WithGroup(string) Logger { return d }

func (discard) Enabled(Level) bool { return false }

func (discard) Sync(context.Context) error { return nil }
