package countdown

import (
	"fmt"
	"time"

	"github.com/edgedlt/countdown/timer"
	"go.uber.org/zap"
)

// Config holds the configuration for a Manager.
// Use NewConfig with functional options to create a properly configured instance.
type Config struct {
	// Logger for structured logging.
	// Defaults to a no-op logger if not provided.
	Logger *zap.Logger

	// Clock provides the current time and the scheduling loop's ticker.
	// Default: timer.RealClock
	Clock timer.Clock

	// TickInterval is the scheduling loop period.
	// Default: 1s
	TickInterval time.Duration

	// SubscriberBuffer is the capacity of each subscription's event channel.
	// Events beyond it wait in the subscription's backlog; the manager never blocks.
	// Default: 64
	SubscriberBuffer int

	// LateTickThreshold is the elapsed time between two accountings of a
	// running timer above which the tick is reported as late.
	// Default: 2 * TickInterval (set when left at 0)
	LateTickThreshold time.Duration

	// Hooks provides callbacks for observability events.
	// All hooks are optional - nil hooks are ignored.
	Hooks *Hooks
}

// ConfigOption is a functional option for configuring a Manager.
// Options are applied in order, so later options override earlier ones.
type ConfigOption func(*Config) error

// NewConfig creates a new Config with the given options.
//
// Returns an error if any option fails or if the result is invalid.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		Logger:           zap.NewNop(),
		Clock:            timer.NewRealClock(),
		TickInterval:     time.Second,
		SubscriberBuffer: 64,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.LateTickThreshold == 0 {
		cfg.LateTickThreshold = 2 * cfg.TickInterval
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// validate checks that all required fields are set and values are valid.
func (c *Config) validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Clock == nil {
		return fmt.Errorf("clock is required")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.SubscriberBuffer < 0 {
		return fmt.Errorf("subscriber buffer must not be negative, got %d", c.SubscriberBuffer)
	}
	if c.LateTickThreshold < c.TickInterval {
		return fmt.Errorf("late tick threshold (%v) must be at least the tick interval (%v)",
			c.LateTickThreshold, c.TickInterval)
	}
	return nil
}

// ConfigWarning represents a warning about potentially suboptimal configuration.
type ConfigWarning struct {
	// Field is the name of the config field that triggered the warning.
	Field string
	// Message describes the potential issue.
	Message string
	// Suggestion provides a recommended action or value.
	Suggestion string
}

// String returns a human-readable warning message.
func (w ConfigWarning) String() string {
	return fmt.Sprintf("%s: %s (suggestion: %s)", w.Field, w.Message, w.Suggestion)
}

// Warnings returns warnings for suboptimal configuration choices.
func (c *Config) Warnings() []ConfigWarning {
	var warnings []ConfigWarning

	if c.TickInterval < 100*time.Millisecond {
		warnings = append(warnings, ConfigWarning{
			Field:      "TickInterval",
			Message:    fmt.Sprintf("tick interval %v floods subscribers with tick events", c.TickInterval),
			Suggestion: "use TickInterval >= 100ms; displays only need second resolution",
		})
	}
	if c.TickInterval > time.Second {
		warnings = append(warnings, ConfigWarning{
			Field:      "TickInterval",
			Message:    fmt.Sprintf("tick interval %v is coarser than the one-second minimum duration", c.TickInterval),
			Suggestion: "use TickInterval <= 1s so alarms sound on time",
		})
	}
	if c.SubscriberBuffer == 0 {
		warnings = append(warnings, ConfigWarning{
			Field:      "SubscriberBuffer",
			Message:    "unbuffered subscriber channels hand off every event synchronously",
			Suggestion: "use SubscriberBuffer >= 16",
		})
	}

	return warnings
}

// LogWarnings logs all configuration warnings.
func (c *Config) LogWarnings() {
	for _, w := range c.Warnings() {
		c.Logger.Warn("suboptimal configuration",
			zap.String("field", w.Field),
			zap.String("message", w.Message),
			zap.String("suggestion", w.Suggestion),
		)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) ConfigOption {
	return func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithClock sets the time source. Tests use timer.MockClock.
func WithClock(clock timer.Clock) ConfigOption {
	return func(c *Config) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.Clock = clock
		return nil
	}
}

// WithTickInterval sets the scheduling loop period.
// Must be positive.
func WithTickInterval(interval time.Duration) ConfigOption {
	return func(c *Config) error {
		if interval <= 0 {
			return fmt.Errorf("tick interval must be positive, got %v", interval)
		}
		c.TickInterval = interval
		return nil
	}
}

// WithSubscriberBuffer sets the capacity of each subscription's event channel.
func WithSubscriberBuffer(size int) ConfigOption {
	return func(c *Config) error {
		if size < 0 {
			return fmt.Errorf("subscriber buffer must not be negative, got %d", size)
		}
		c.SubscriberBuffer = size
		return nil
	}
}

// WithLateTickThreshold sets the elapsed time above which a tick is reported as late.
func WithLateTickThreshold(threshold time.Duration) ConfigOption {
	return func(c *Config) error {
		if threshold <= 0 {
			return fmt.Errorf("late tick threshold must be positive, got %v", threshold)
		}
		c.LateTickThreshold = threshold
		return nil
	}
}

// WithHooks sets the observability hooks.
func WithHooks(hooks *Hooks) ConfigOption {
	return func(c *Config) error {
		c.Hooks = hooks
		return nil
	}
}
