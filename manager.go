package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/edgedlt/countdown/timer"
	"go.uber.org/zap"
)

// timerEntry is the mutable state of one countdown.
type timerEntry struct {
	state     State
	remaining time.Duration
	target    time.Duration

	// accounted is the clock reading remaining was last brought up to date at.
	accounted time.Time
}

// Manager owns an ordered collection of countdown timers.
//
// Timers are identified by their position. New timers are appended and only
// the last timer can be removed, so an id stays bound to the same timer for
// as long as that timer exists.
//
// All commands and the scheduling loop share one lock. The loop exists only
// while at least one timer is running.
type Manager struct {
	cfg    *Config
	clock  timer.Clock
	hooks  *Hooks
	logger *zap.Logger

	mu     sync.Mutex
	timers []*timerEntry
	// running is the number of timers in StateRunning.
	running int
	closed  bool

	// Scheduling loop, nil while parked
	loopStop   chan struct{}
	loopTicker timer.Ticker

	subs      []*Subscription
	metrics   *ChannelMetrics
	eventPool *SlicePool[Event]

	wg sync.WaitGroup
}

// New creates a new Manager. Use NewConfig to build cfg.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hooks := cfg.Hooks.Clone()
	if hooks == nil {
		hooks = &Hooks{}
	}

	return &Manager{
		cfg:       cfg,
		clock:     cfg.Clock,
		hooks:     hooks,
		logger:    cfg.Logger,
		metrics:   NewChannelMetrics(),
		eventPool: NewSlicePool[Event](16),
	}, nil
}

// AddTimer appends a new idle timer and returns its id.
func (m *Manager) AddTimer() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return -1, m.rejectLocked("add", -1, ErrClosed)
	}

	id := len(m.timers)
	m.timers = append(m.timers, &timerEntry{})
	m.publishLocked(m.eventLocked(EventTimerAdded, id))

	m.logger.Debug("timer added", zap.Int("timer", id))
	return id, nil
}

// RemoveTimer removes the last timer, whatever its state, and returns its id.
// A running countdown is discarded without further events.
func (m *Manager) RemoveTimer() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return -1, m.rejectLocked("remove", -1, ErrClosed)
	}
	if len(m.timers) == 0 {
		return -1, m.rejectLocked("remove", -1, ErrNoTimers)
	}

	id := len(m.timers) - 1
	t := m.timers[id]
	m.timers[id] = nil
	m.timers = m.timers[:id]

	if t.state == StateRunning {
		m.running--
		if m.running == 0 {
			m.parkLocked()
		}
	}
	m.publishLocked(m.eventLocked(EventTimerRemoved, id))

	m.logger.Debug("timer removed",
		zap.Int("timer", id),
		zap.Stringer("state", t.state))
	return id, nil
}

// StartTimer starts timer id counting down from d.
// A running or alarming timer restarts from d.
func (m *Manager) StartTimer(id int, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.lookupLocked("start", id)
	if err != nil {
		return err
	}
	if d < MinDuration {
		return m.rejectLocked("start", id,
			fmt.Errorf("%w: %v is shorter than %v", ErrInvalidDuration, d, MinDuration))
	}

	now := m.clock.Now()
	wasRunning := t.state == StateRunning

	t.state = StateRunning
	t.target = d
	t.remaining = d
	t.accounted = now
	m.publishLocked(Event{Kind: EventTimerStarted, TimerID: id, At: now})

	if !wasRunning {
		m.running++
		m.resumeLocked(now)
	}

	m.logger.Debug("timer started",
		zap.Int("timer", id),
		zap.Duration("duration", d),
		zap.Bool("restart", wasRunning))
	return nil
}

// StopTimer cancels a running countdown, leaving the timer idle with no time
// remaining. Idle and alarming timers are left as they are. TimerStopped is
// emitted in every case so views can reset unconditionally.
func (m *Manager) StopTimer(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.lookupLocked("stop", id)
	if err != nil {
		return err
	}
	m.stopLocked(id, t)
	return nil
}

// StopAll applies StopTimer to every timer in ascending id order.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.rejectLocked("stop-all", -1, ErrClosed)
	}
	for id, t := range m.timers {
		m.stopLocked(id, t)
	}
	return nil
}

func (m *Manager) stopLocked(id int, t *timerEntry) {
	if t.state == StateRunning {
		t.state = StateIdle
		t.remaining = 0
		m.running--
		if m.running == 0 {
			m.parkLocked()
		}
	}
	m.publishLocked(m.eventLocked(EventTimerStopped, id))

	m.logger.Debug("timer stopped",
		zap.Int("timer", id),
		zap.Stringer("state", t.state))
}

// StopAlarm acknowledges the alarm of timer id, returning it to idle.
// It is a silent no-op for timers that are not alarming.
func (m *Manager) StopAlarm(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.lookupLocked("stop-alarm", id)
	if err != nil {
		return err
	}
	if t.state != StateAlarming {
		return nil
	}

	t.state = StateIdle
	t.remaining = 0
	m.publishLocked(m.eventLocked(EventTimerAlarmStopped, id))

	m.logger.Debug("alarm stopped", zap.Int("timer", id))
	return nil
}

// TimerCount returns the number of timers.
func (m *Manager) TimerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// AllIdle reports whether every timer is idle. Hosts use it to decide
// whether the manager may be torn down.
func (m *Manager) AllIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allIdleLocked()
}

func (m *Manager) allIdleLocked() bool {
	for _, t := range m.timers {
		if t.state != StateIdle {
			return false
		}
	}
	return true
}

// Timer returns a snapshot of timer id.
func (m *Manager) Timer(id int) (TimerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.timers) {
		return TimerInfo{}, fmt.Errorf("%w: id %d (count %d)", ErrInvalidTimer, id, len(m.timers))
	}
	return m.infoLocked(id), nil
}

// Timers returns snapshots of all timers in id order.
func (m *Manager) Timers() []TimerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]TimerInfo, len(m.timers))
	for id := range m.timers {
		infos[id] = m.infoLocked(id)
	}
	return infos
}

func (m *Manager) infoLocked(id int) TimerInfo {
	t := m.timers[id]
	return TimerInfo{
		ID:        id,
		State:     t.state,
		Remaining: t.remaining,
		Target:    t.target,
	}
}

// Subscribe registers a new subscriber. Its first event is EventCatchUp
// carrying the current timer count; no earlier events are replayed.
func (m *Manager) Subscribe() (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, m.rejectLocked("subscribe", -1, ErrClosed)
	}

	s := newSubscription(m.cfg.SubscriberBuffer, m.unsubscribe)
	s.enqueue(Event{
		Kind:    EventCatchUp,
		TimerID: -1,
		Count:   len(m.timers),
		At:      m.clock.Now(),
	})
	m.subs = append(m.subs, s)
	m.metrics.Register(s.id, s.out)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.pump()
	}()

	m.logger.Info("subscriber joined",
		zap.String("subscriber", s.id),
		zap.Int("subscribers", len(m.subs)))
	if m.hooks.OnSubscriberJoined != nil {
		m.hooks.OnSubscriberJoined(SubscriberEvent{SubscriberID: s.id, Subscribers: len(m.subs)})
	}
	return s, nil
}

func (m *Manager) unsubscribe(s *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subs {
		if sub != s {
			continue
		}
		m.subs = append(m.subs[:i], m.subs[i+1:]...)
		m.leaveLocked(s)
		break
	}
	s.shutdown()
}

func (m *Manager) leaveLocked(s *Subscription) {
	s.shutdown()
	m.metrics.Unregister(s.id)

	m.logger.Info("subscriber left",
		zap.String("subscriber", s.id),
		zap.Int("subscribers", len(m.subs)))
	if m.hooks.OnSubscriberLeft != nil {
		m.hooks.OnSubscriberLeft(SubscriberEvent{SubscriberID: s.id, Subscribers: len(m.subs)})
	}
}

// Subscribers returns the number of open subscriptions.
func (m *Manager) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// SubscriberStats returns channel statistics keyed by subscription id.
func (m *Manager) SubscriberStats() map[string]MeteredChannelStats {
	return m.metrics.AllStats()
}

// Close stops the scheduling loop and closes every subscription.
// Commands issued afterwards fail with ErrClosed; queries keep working.
func (m *Manager) Close() error {
	m.mu.Lock()
	if !m.closeLocked() {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("timer manager closed")
	return nil
}

// closeIfIdle closes the manager only if every timer is idle, checked
// atomically with the teardown. An already closed manager counts as closed.
func (m *Manager) closeIfIdle() bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return true
	}
	if !m.allIdleLocked() || !m.closeLocked() {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("timer manager closed while idle")
	return true
}

// closeLocked marks the manager closed. Returns false if it already was.
func (m *Manager) closeLocked() bool {
	if m.closed {
		return false
	}
	m.closed = true
	m.parkLocked()

	subs := m.subs
	m.subs = nil
	for _, s := range subs {
		m.leaveLocked(s)
	}
	return true
}

// lookupLocked resolves id for a command.
func (m *Manager) lookupLocked(command string, id int) (*timerEntry, error) {
	if m.closed {
		return nil, m.rejectLocked(command, id, ErrClosed)
	}
	if id < 0 || id >= len(m.timers) {
		return nil, m.rejectLocked(command, id,
			fmt.Errorf("%w: id %d (count %d)", ErrInvalidTimer, id, len(m.timers)))
	}
	return m.timers[id], nil
}

func (m *Manager) rejectLocked(command string, id int, err error) error {
	m.logger.Debug("command rejected",
		zap.String("command", command),
		zap.Int("timer", id),
		zap.Error(err))
	if m.hooks.OnCommandRejected != nil {
		m.hooks.OnCommandRejected(CommandRejectedEvent{Command: command, TimerID: id, Err: err})
	}
	return err
}

func (m *Manager) eventLocked(kind EventKind, id int) Event {
	return Event{Kind: kind, TimerID: id, At: m.clock.Now()}
}

// publishLocked hands events to every subscriber. Holding the lock while
// enqueuing keeps per-timer order identical to generation order.
func (m *Manager) publishLocked(events ...Event) {
	if len(events) == 0 {
		return
	}
	for _, s := range m.subs {
		s.enqueue(events...)
	}
}
