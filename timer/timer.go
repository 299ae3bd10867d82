// Package timer provides the time source used by the countdown scheduling loop.
package timer

import (
	"time"
)

// Clock supplies the current time and periodic tickers.
type Clock interface {
	// Now returns the current time. Real implementations carry a monotonic
	// reading so that elapsed time is immune to wall-clock adjustments.
	Now() time.Time

	// NewTicker returns a started Ticker that fires every period.
	NewTicker(period time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// C returns the channel that receives on every tick.
	C() <-chan time.Time

	// Stop stops the ticker. No more ticks are delivered after Stop returns,
	// although one already buffered tick may remain in the channel.
	Stop()
}

// RealClock implements Clock using actual time.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewTicker starts a time.Ticker with the given period.
func (RealClock) NewTicker(period time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(period)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}
