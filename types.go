// Package countdown implements a multi-timer countdown manager.
// It owns an ordered collection of independent countdown timers, advances
// them from a single scheduling loop, and fans lifecycle events out to any
// number of subscribers.
package countdown

import (
	"fmt"
	"time"
)

// MinDuration is the shortest countdown a timer may be started with.
const MinDuration = time.Second

// State is the lifecycle state of a single timer.
type State uint8

const (
	// StateIdle means the timer was never started or was stopped before completion.
	StateIdle State = iota
	// StateRunning means the timer is counting down.
	StateRunning
	// StateAlarming means the timer reached zero and the alarm was not acknowledged yet.
	StateAlarming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateAlarming:
		return "alarming"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// TimerInfo is a point-in-time snapshot of one timer.
type TimerInfo struct {
	// ID is the timer's position in the manager's collection.
	ID int

	State State

	// Remaining is the time left. Zero unless Running.
	Remaining time.Duration

	// Target is the duration the timer was last started with.
	Target time.Duration
}

// EventKind identifies a lifecycle event.
type EventKind uint8

const (
	// EventCatchUp is the synthetic first event of every subscription.
	// Count carries the number of timers at the moment of subscribing.
	EventCatchUp EventKind = iota
	EventTimerAdded
	EventTimerRemoved
	EventTimerStarted
	EventTimerStopped
	EventTimerAlarmStopped
	EventTimerAlarmSounding
	EventTimerTick
)

func (k EventKind) String() string {
	switch k {
	case EventCatchUp:
		return "catch-up"
	case EventTimerAdded:
		return "timer-added"
	case EventTimerRemoved:
		return "timer-removed"
	case EventTimerStarted:
		return "timer-started"
	case EventTimerStopped:
		return "timer-stopped"
	case EventTimerAlarmStopped:
		return "timer-alarm-stopped"
	case EventTimerAlarmSounding:
		return "timer-alarm-sounding"
	case EventTimerTick:
		return "timer-tick"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification produced by the Manager.
type Event struct {
	Kind EventKind

	// TimerID is the affected timer. Unused for EventCatchUp.
	TimerID int

	// Remaining is set for EventTimerTick.
	Remaining time.Duration

	// Count is set for EventCatchUp.
	Count int

	// At is the manager clock reading when the event was generated.
	At time.Time
}

func (e Event) String() string {
	switch e.Kind {
	case EventCatchUp:
		return fmt.Sprintf("%s(count=%d)", e.Kind, e.Count)
	case EventTimerTick:
		return fmt.Sprintf("%s(%d, %v)", e.Kind, e.TimerID, e.Remaining)
	default:
		return fmt.Sprintf("%s(%d)", e.Kind, e.TimerID)
	}
}
