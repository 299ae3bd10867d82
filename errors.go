package countdown

import "errors"

var (
	// ErrInvalidTimer is returned when a command names a timer id that does not exist.
	ErrInvalidTimer = errors.New("invalid timer")

	// ErrInvalidDuration is returned when a timer is started with less than MinDuration.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrNoTimers is returned when removing from an empty collection.
	ErrNoTimers = errors.New("no timers")

	// ErrClosed is returned by commands issued after the manager was closed.
	ErrClosed = errors.New("manager closed")
)
