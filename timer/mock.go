package timer

import (
	"sync"
	"time"
)

// MockClock is a clock for testing that only moves when advanced manually.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*MockTicker]struct{}
}

// NewMockClock creates a new MockClock set to start.
// A zero start uses a fixed, arbitrary instant.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return &MockClock{
		now:     start,
		tickers: make(map[*MockTicker]struct{}),
	}
}

// Now returns the mock time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker registers a ticker that fires when the clock is advanced past
// each multiple of period.
func (c *MockClock) NewTicker(period time.Duration) Ticker {
	if period <= 0 {
		panic("timer: non-positive ticker period")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTicker{
		clock:  c,
		period: period,
		next:   c.now.Add(period),
		c:      make(chan time.Time, 1),
	}
	c.tickers[t] = struct{}{}
	return t
}

// Advance moves the clock forward by d and fires every ticker whose deadline
// has been reached. Like time.Ticker, a tick is dropped when the previous one
// has not been consumed yet.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.fireLocked()
}

// Set moves the clock to t. Moving backwards never fires tickers.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
	c.fireLocked()
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *MockClock) fireLocked() {
	for t := range c.tickers {
		for !t.next.After(c.now) {
			select {
			case t.c <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

// MockTicker is a Ticker driven by a MockClock.
type MockTicker struct {
	clock  *MockClock
	period time.Duration
	next   time.Time
	c      chan time.Time
}

// C returns the tick channel.
func (t *MockTicker) C() <-chan time.Time {
	return t.c
}

// Stop unregisters the ticker from its clock.
func (t *MockTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	delete(t.clock.tickers, t)
}

// Period returns the ticker's period.
func (t *MockTicker) Period() time.Duration {
	return t.period
}
