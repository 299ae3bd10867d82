package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_TickerFires(t *testing.T) {
	clock := NewRealClock()
	ticker := clock.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		// Success
	case <-time.After(500 * time.Millisecond):
		t.Fatal("ticker did not fire")
	}
}

func TestRealClock_StopPreventsTicks(t *testing.T) {
	clock := NewRealClock()
	ticker := clock.NewTicker(20 * time.Millisecond)
	ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticker should not fire after stop")
	case <-time.After(100 * time.Millisecond):
		// Success - ticker was stopped
	}
}

func TestRealClock_NowIsMonotonic(t *testing.T) {
	clock := NewRealClock()
	a := clock.Now()
	b := clock.Now()
	assert.False(t, b.Before(a))
}

func TestMockClock_AdvanceFiresTicker(t *testing.T) {
	clock := NewMockClock(time.Time{})
	start := clock.Now()
	ticker := clock.NewTicker(time.Second)

	// Nothing before the first period
	clock.Advance(999 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatal("ticker should not fire before its period")
	default:
	}

	clock.Advance(time.Millisecond)
	select {
	case at := <-ticker.C():
		assert.Equal(t, start.Add(time.Second), at)
	default:
		t.Fatal("ticker should fire after its period")
	}
}

func TestMockClock_DropsUnconsumedTicks(t *testing.T) {
	clock := NewMockClock(time.Time{})
	start := clock.Now()
	ticker := clock.NewTicker(time.Second)

	clock.Advance(3 * time.Second)

	// Only the first tick is buffered
	at := <-ticker.C()
	assert.Equal(t, start.Add(time.Second), at)
	select {
	case <-ticker.C():
		t.Fatal("expected later ticks to be dropped")
	default:
	}

	// Schedule continues from the last deadline, not from the read
	clock.Advance(time.Second)
	at = <-ticker.C()
	assert.Equal(t, start.Add(4*time.Second), at)
}

func TestMockClock_StopUnregisters(t *testing.T) {
	clock := NewMockClock(time.Time{})
	ticker := clock.NewTicker(time.Second)
	require.Equal(t, 1, clock.ActiveTickers())

	ticker.Stop()
	require.Equal(t, 0, clock.ActiveTickers())

	clock.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker should not fire")
	default:
		// Success
	}
}

func TestMockClock_SetBackwardsDoesNotFire(t *testing.T) {
	clock := NewMockClock(time.Time{})
	start := clock.Now()
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	clock.Set(start.Add(-time.Hour))
	assert.Equal(t, start.Add(-time.Hour), clock.Now())
	select {
	case <-ticker.C():
		t.Fatal("moving backwards should not fire")
	default:
	}
}

func TestMockTicker_Period(t *testing.T) {
	clock := NewMockClock(time.Time{})
	ticker := clock.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	mt, ok := ticker.(*MockTicker)
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, mt.Period())
}
