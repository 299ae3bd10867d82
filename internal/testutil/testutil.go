// Package testutil provides test utilities for the countdown library.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/edgedlt/countdown"
	"github.com/edgedlt/countdown/timer"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// DefaultWait bounds how long helpers wait for asynchronous delivery.
const DefaultWait = 2 * time.Second

// NewTestManager creates a Manager driven by a MockClock and logging to t.
// The manager is closed when the test ends.
func NewTestManager(t testing.TB, opts ...countdown.ConfigOption) (*countdown.Manager, *timer.MockClock) {
	t.Helper()

	clock := timer.NewMockClock(time.Time{})
	all := append([]countdown.ConfigOption{
		countdown.WithClock(clock),
		countdown.WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))),
	}, opts...)

	cfg, err := countdown.NewConfig(all...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	m, err := countdown.New(cfg)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, clock
}

// EventRecorder drains a subscription and keeps every event it receives.
type EventRecorder struct {
	sub *countdown.Subscription

	mu     sync.Mutex
	events []countdown.Event
	notify chan struct{}
	done   chan struct{}
}

// NewEventRecorder subscribes to m and records events until the test ends.
func NewEventRecorder(t testing.TB, m *countdown.Manager) *EventRecorder {
	t.Helper()

	sub, err := m.Subscribe()
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	r := &EventRecorder{
		sub:    sub,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go r.run()
	t.Cleanup(sub.Close)
	return r
}

func (r *EventRecorder) run() {
	defer close(r.done)
	for e := range r.sub.Events() {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()

		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
}

// Subscription returns the recorded subscription.
func (r *EventRecorder) Subscription() *countdown.Subscription {
	return r.sub
}

// Events returns a copy of all events recorded so far.
func (r *EventRecorder) Events() []countdown.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]countdown.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of events recorded so far.
func (r *EventRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// ForTimer returns the recorded events concerning timer id, in order.
func (r *EventRecorder) ForTimer(id int) []countdown.Event {
	var out []countdown.Event
	for _, e := range r.Events() {
		if e.Kind != countdown.EventCatchUp && e.TimerID == id {
			out = append(out, e)
		}
	}
	return out
}

// Kinds returns the kinds of the given events.
func Kinds(events []countdown.Event) []countdown.EventKind {
	kinds := make([]countdown.EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// WaitForCount blocks until at least n events were recorded and returns them.
func (r *EventRecorder) WaitForCount(t testing.TB, n int) []countdown.Event {
	t.Helper()
	deadline := time.After(DefaultWait)
	for {
		if events := r.Events(); len(events) >= n {
			return events
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, have %v", n, r.Events())
			return nil
		}
	}
}

// WaitFor blocks until an event matching pred was recorded and returns the
// first such event.
func (r *EventRecorder) WaitFor(t testing.TB, pred func(countdown.Event) bool) countdown.Event {
	t.Helper()
	deadline := time.After(DefaultWait)
	for {
		for _, e := range r.Events() {
			if pred(e) {
				return e
			}
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for event, have %v", r.Events())
			return countdown.Event{}
		}
	}
}

// WaitClosed blocks until the subscription's channel is closed.
func (r *EventRecorder) WaitClosed(t testing.TB) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(DefaultWait):
		t.Fatal("timed out waiting for subscription to close")
	}
}

// Is returns a predicate matching kind and timer id.
func Is(kind countdown.EventKind, id int) func(countdown.Event) bool {
	return func(e countdown.Event) bool {
		return e.Kind == kind && e.TimerID == id
	}
}

// TickAndWait advances clock by d and waits until the recorder holds n events.
// Use it to step the scheduling loop one tick at a time.
func TickAndWait(t testing.TB, clock *timer.MockClock, r *EventRecorder, d time.Duration, n int) []countdown.Event {
	t.Helper()
	clock.Advance(d)
	return r.WaitForCount(t, n)
}
