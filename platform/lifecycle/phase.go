package lifecycle

import "fmt"

// Phase is a lifecycle phase of the host process. Phases only move forward:
//
//	NotStarted -> Started -> Stopping -> Stopped
type Phase uint8

const (
	// NotStarted is the phase before the host accepts connections.
	NotStarted Phase = iota
	// Started means listeners are bound and serving.
	Started
	// Stopping means shutdown began and listeners are still open.
	Stopping
	// Stopped means listeners are closed and shutdown work completed.
	Stopped
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "NotStarted"
	case Started:
		return "Started"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// next returns the only phase reachable from p.
func (p Phase) next() (Phase, bool) {
	if p >= Stopped {
		return p, false
	}

	return p + 1, true
}
