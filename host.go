package countdown

import (
	"sync"

	"go.uber.org/zap"
)

// Host owns the process-wide Manager. The Manager is created on first use
// and torn down when the host decides it is no longer needed, typically once
// every timer is idle.
type Host struct {
	opts []ConfigOption

	mu      sync.Mutex
	manager *Manager
	logger  *zap.Logger
}

// NewHost creates a Host that builds its Manager from opts.
func NewHost(opts ...ConfigOption) *Host {
	return &Host{
		opts:   opts,
		logger: zap.NewNop(),
	}
}

// Manager returns the current Manager, creating it if none exists.
func (h *Host) Manager() (*Manager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.manager != nil {
		return h.manager, nil
	}

	cfg, err := NewConfig(h.opts...)
	if err != nil {
		return nil, err
	}
	cfg.LogWarnings()

	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	h.manager = m
	h.logger = cfg.Logger

	h.logger.Info("timer manager created")
	return m, nil
}

// Active reports whether a Manager currently exists.
func (h *Host) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.manager != nil
}

// ReleaseIfIdle tears the Manager down if every timer is idle.
// Returns true if a Manager was released.
func (h *Host) ReleaseIfIdle() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.manager == nil {
		return false
	}
	if !h.manager.closeIfIdle() {
		h.logger.Debug("timer manager kept alive, timers still active")
		return false
	}
	h.manager = nil
	return true
}

// Close tears the Manager down regardless of timer state.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.manager == nil {
		return nil
	}
	err := h.manager.Close()
	h.manager = nil
	return err
}
