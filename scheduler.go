package countdown

import (
	"time"

	"github.com/edgedlt/countdown/timer"
	"go.uber.org/zap"
)

// resumeLocked creates the scheduling loop if it is not running.
// The ticker is created after the caller has recorded now as the starting
// point of the new countdown, so the first tick never undercounts it.
func (m *Manager) resumeLocked(now time.Time) {
	if m.loopStop != nil || m.closed {
		return
	}

	stop := make(chan struct{})
	ticker := m.clock.NewTicker(m.cfg.TickInterval)
	m.loopStop = stop
	m.loopTicker = ticker

	m.wg.Add(1)
	go m.runLoop(ticker, stop)

	m.logger.Info("scheduling loop resumed",
		zap.Int("running", m.running),
		zap.Duration("interval", m.cfg.TickInterval))
	if m.hooks.OnLoopResumed != nil {
		m.hooks.OnLoopResumed(LoopEvent{Running: m.running, At: now})
	}
}

// parkLocked tears the scheduling loop down. The ticker is stopped here,
// under the lock, so no tick is processed once parkLocked returns.
func (m *Manager) parkLocked() {
	if m.loopStop == nil {
		return
	}

	close(m.loopStop)
	m.loopTicker.Stop()
	m.loopStop = nil
	m.loopTicker = nil

	m.logger.Info("scheduling loop parked", zap.Int("running", m.running))
	if m.hooks.OnLoopParked != nil {
		m.hooks.OnLoopParked(LoopEvent{Running: m.running, At: m.clock.Now()})
	}
}

func (m *Manager) runLoop(ticker timer.Ticker, stop <-chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		m.mu.Lock()
		select {
		case <-stop:
			// Parked while waiting for the lock
			m.mu.Unlock()
			return
		default:
		}
		m.tickLocked(m.clock.Now())
		m.mu.Unlock()
	}
}

// tickLocked advances every running timer to now in ascending id order.
// Each timer is charged the time elapsed since it was last accounted for,
// not the nominal interval, so jitter and missed ticks do not accumulate.
func (m *Manager) tickLocked(now time.Time) {
	batch := m.eventPool.Get()
	defer m.eventPool.Put(batch)

	for id, t := range m.timers {
		if t.state != StateRunning {
			continue
		}

		elapsed := now.Sub(t.accounted)
		if elapsed < 0 {
			elapsed = 0
		}
		t.accounted = now

		if elapsed > m.cfg.LateTickThreshold {
			m.logger.Warn("late tick",
				zap.Int("timer", id),
				zap.Duration("elapsed", elapsed),
				zap.Duration("expected", m.cfg.TickInterval))
			if m.hooks.OnLateTick != nil {
				m.hooks.OnLateTick(LateTickEvent{
					TimerID:  id,
					Elapsed:  elapsed,
					Expected: m.cfg.TickInterval,
					At:       now,
				})
			}
		}

		t.remaining -= elapsed
		if t.remaining <= 0 {
			t.remaining = 0
			t.state = StateAlarming
			m.running--
			*batch = append(*batch, Event{Kind: EventTimerAlarmSounding, TimerID: id, At: now})
			m.logger.Info("alarm sounding", zap.Int("timer", id), zap.Duration("target", t.target))
			continue
		}
		*batch = append(*batch, Event{Kind: EventTimerTick, TimerID: id, Remaining: t.remaining, At: now})
	}

	m.publishLocked(*batch...)
	m.logger.Debug("tick", zap.Int("events", len(*batch)), zap.Int("running", m.running))

	if m.running == 0 {
		m.parkLocked()
	}
}
