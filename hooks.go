package countdown

import "time"

// Hooks provides optional callbacks for observability events.
// All hooks are invoked synchronously while the manager's lock is held:
// keep implementations fast and never call back into the Manager.
type Hooks struct {
	// Scheduling loop events

	// OnLoopResumed is called when the first timer starts running and the
	// scheduling loop is created.
	OnLoopResumed func(LoopEvent)

	// OnLoopParked is called when no timer is running anymore and the
	// scheduling loop is torn down.
	OnLoopParked func(LoopEvent)

	// OnLateTick is called when a running timer was accounted for after more
	// than the configured late tick threshold, e.g. after the host was suspended.
	OnLateTick func(LateTickEvent)

	// Subscription events

	// OnSubscriberJoined is called after a subscription is registered.
	OnSubscriberJoined func(SubscriberEvent)

	// OnSubscriberLeft is called after a subscription is closed.
	OnSubscriberLeft func(SubscriberEvent)

	// Command events

	// OnCommandRejected is called when a command fails validation.
	OnCommandRejected func(CommandRejectedEvent)
}

// Clone returns a shallow copy of the hooks.
func (h *Hooks) Clone() *Hooks {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}

// LoopEvent describes a scheduling loop transition.
type LoopEvent struct {
	// Running is the number of running timers after the transition.
	Running int
	At      time.Time
}

// LateTickEvent describes a late accounting of a running timer.
type LateTickEvent struct {
	TimerID  int
	Elapsed  time.Duration
	Expected time.Duration
	At       time.Time
}

// SubscriberEvent describes a subscription joining or leaving.
type SubscriberEvent struct {
	SubscriberID string
	// Subscribers is the number of subscriptions after the change.
	Subscribers int
}

// CommandRejectedEvent describes a failed command.
type CommandRejectedEvent struct {
	Command string
	// TimerID is -1 for commands that do not name a timer.
	TimerID int
	Err     error
}
