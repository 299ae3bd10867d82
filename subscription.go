package countdown

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Subscription receives the Manager's events in generation order.
//
// The first event is always EventCatchUp. Events queue in an unbounded
// backlog and are drained into a buffered channel by a dedicated goroutine,
// so a slow subscriber never stalls the Manager or other subscribers.
type Subscription struct {
	id  string
	out *MeteredChannel[Event]

	mu      sync.Mutex
	backlog []Event
	closed  bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	leave func(*Subscription)
}

// SubscriptionStats contains delivery statistics for one subscription.
type SubscriptionStats struct {
	MeteredChannelStats

	// Backlog is the number of events waiting to enter the channel.
	Backlog int
}

func newSubscription(buffer int, leave func(*Subscription)) *Subscription {
	id := uuid.NewString()
	return &Subscription{
		id:    id,
		out:   NewMeteredChannel[Event]("subscription-"+id, buffer),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		leave: leave,
	}
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the channel events are delivered on.
// The channel is closed once the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.out.ReceiveChan()
}

// Next blocks until the next event arrives or ctx is done.
// Returns ErrClosed once the subscription is closed and drained.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	select {
	case e, ok := <-s.out.ReceiveChan():
		if !ok {
			return Event{}, ErrClosed
		}
		s.out.MarkReceived()
		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close unsubscribes. Events not yet delivered are discarded.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.leave(s)
}

// Stats returns delivery statistics.
func (s *Subscription) Stats() SubscriptionStats {
	s.mu.Lock()
	backlog := len(s.backlog)
	s.mu.Unlock()
	return SubscriptionStats{
		MeteredChannelStats: s.out.Stats(),
		Backlog:             backlog,
	}
}

// enqueue appends events to the backlog. Called with the manager lock held,
// which fixes the delivery order.
func (s *Subscription) enqueue(events ...Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.backlog = append(s.backlog, events...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// shutdown stops the pump. The pump closes the event channel on exit.
func (s *Subscription) shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Subscription) take() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.backlog
	s.backlog = nil
	return batch
}

// pop removes the oldest backlog event.
func (s *Subscription) pop() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return Event{}, false
	}
	e := s.backlog[0]
	s.backlog[0] = Event{}
	s.backlog = s.backlog[1:]
	return e, true
}

func (s *Subscription) discard() {
	s.out.AddDropped(len(s.take()))
}

// pump moves events from the backlog into the channel until shutdown.
func (s *Subscription) pump() {
	defer s.out.Close()
	for {
		select {
		case <-s.done:
			s.discard()
			return
		case <-s.wake:
		}

		for {
			e, ok := s.pop()
			if !ok {
				break
			}
			if !s.out.SendOrDone(e, s.done) {
				s.out.AddDropped(1)
				s.discard()
				return
			}
		}
	}
}
