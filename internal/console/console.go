// Package console drives a countdown Manager from line-oriented text
// commands and renders its events for a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/edgedlt/countdown"
	"github.com/edgedlt/countdown/internal/hms"
	"go.uber.org/zap"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

const help = `commands:
  add                    add a timer
  remove                 remove the last timer
  start <id> <duration>  start a timer (90s, 1h30m, 05:00, 1:00:00)
  stop <id>              stop a countdown
  ack <id>               stop a sounding alarm
  stopall                stop every timer
  count                  print the number of timers
  list                   print every timer
  help                   print this help
  quit                   leave`

// Console executes commands against a Manager and writes output to out.
type Console struct {
	m      *countdown.Manager
	logger *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a Console.
func New(m *countdown.Manager, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{m: m, out: out, logger: logger}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Execute runs a single command line. Empty lines are ignored.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	c.logger.Debug("command", zap.String("command", cmd), zap.Strings("args", args))

	switch cmd {
	case "add":
		_, err := c.m.AddTimer()
		return err
	case "remove", "rm":
		_, err := c.m.RemoveTimer()
		return err
	case "start":
		if len(args) != 2 {
			return fmt.Errorf("usage: start <id> <duration>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		d, err := hms.Parse(args[1])
		if err != nil {
			return err
		}
		return c.m.StartTimer(id, d)
	case "stop", "ack":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <id>", cmd)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if cmd == "ack" {
			return c.m.StopAlarm(id)
		}
		return c.m.StopTimer(id)
	case "stopall":
		return c.m.StopAll()
	case "count":
		c.printf("%d", c.m.TimerCount())
		return nil
	case "list", "ls":
		timers := c.m.Timers()
		if len(timers) == 0 {
			c.printf("no timers")
		}
		for _, t := range timers {
			c.printf("%d  %-8s  %s / %s", t.ID, t.State, hms.Format(t.Remaining), hms.Format(t.Target))
		}
		return nil
	case "help", "?":
		c.printf("%s", help)
		return nil
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timer id %q", s)
	}
	return id, nil
}

// Run executes commands read from in until EOF, quit, or ctx is done.
// Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := c.Execute(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				c.printf("error: %v", err)
			}
		}
	}
}

// Watch prints every event of sub until it is closed or ctx is done.
func (c *Console) Watch(ctx context.Context, sub *countdown.Subscription) {
	for {
		e, err := sub.Next(ctx)
		if err != nil {
			return
		}
		c.printf("%s", Render(e))
	}
}

// Render formats an event for display.
func Render(e countdown.Event) string {
	switch e.Kind {
	case countdown.EventCatchUp:
		return fmt.Sprintf("%d timer(s)", e.Count)
	case countdown.EventTimerAdded:
		return fmt.Sprintf("timer %d added", e.TimerID)
	case countdown.EventTimerRemoved:
		return fmt.Sprintf("timer %d removed", e.TimerID)
	case countdown.EventTimerStarted:
		return fmt.Sprintf("timer %d started", e.TimerID)
	case countdown.EventTimerStopped:
		return fmt.Sprintf("timer %d reset", e.TimerID)
	case countdown.EventTimerTick:
		return fmt.Sprintf("timer %d  %s", e.TimerID, hms.Format(e.Remaining))
	case countdown.EventTimerAlarmSounding:
		return fmt.Sprintf("timer %d  00:00:00  ALARM (ack %d)", e.TimerID, e.TimerID)
	case countdown.EventTimerAlarmStopped:
		return fmt.Sprintf("timer %d alarm stopped", e.TimerID)
	default:
		return e.String()
	}
}
