package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edgedlt/countdown"
	"github.com/edgedlt/countdown/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsole_Commands(t *testing.T) {
	m, _ := testutil.NewTestManager(t)
	out := &syncBuffer{}
	c := New(m, out, nil)

	require.NoError(t, c.Execute("add"))
	require.NoError(t, c.Execute("  add  "))
	require.NoError(t, c.Execute(""))
	assert.Equal(t, 2, m.TimerCount())

	require.NoError(t, c.Execute("start 1 05:00"))
	info, err := m.Timer(1)
	require.NoError(t, err)
	assert.Equal(t, countdown.StateRunning, info.State)
	assert.Equal(t, 5*time.Minute, info.Target)

	require.NoError(t, c.Execute("count"))
	require.NoError(t, c.Execute("list"))
	assert.Contains(t, out.String(), "2\n")
	assert.Contains(t, out.String(), "1  running   00:05:00 / 00:05:00")

	require.NoError(t, c.Execute("stop 1"))
	info, err = m.Timer(1)
	require.NoError(t, err)
	assert.Equal(t, countdown.StateIdle, info.State)

	require.NoError(t, c.Execute("ack 0"))
	require.NoError(t, c.Execute("stopall"))
	require.NoError(t, c.Execute("remove"))
	assert.Equal(t, 1, m.TimerCount())

	require.NoError(t, c.Execute("help"))
	assert.Contains(t, out.String(), "commands:")

	assert.ErrorIs(t, c.Execute("quit"), ErrQuit)
}

func TestConsole_CommandErrors(t *testing.T) {
	m, _ := testutil.NewTestManager(t)
	c := New(m, &syncBuffer{}, nil)

	assert.ErrorIs(t, c.Execute("remove"), countdown.ErrNoTimers)
	assert.ErrorIs(t, c.Execute("start 0 10s"), countdown.ErrInvalidTimer)

	require.NoError(t, c.Execute("add"))
	assert.ErrorIs(t, c.Execute("start 0 500ms"), countdown.ErrInvalidDuration)
	assert.Error(t, c.Execute("start 0"))
	assert.Error(t, c.Execute("start x 10s"))
	assert.Error(t, c.Execute("start 0 99:99"))
	assert.Error(t, c.Execute("stop"))
	assert.Error(t, c.Execute("bogus"))
}

func TestConsole_Run(t *testing.T) {
	m, _ := testutil.NewTestManager(t)
	out := &syncBuffer{}
	c := New(m, out, nil)

	in := strings.NewReader("add\nadd\nstart 5 10s\ncount\nquit\nadd\n")
	require.NoError(t, c.Run(context.Background(), in))

	// Lines after quit are not executed
	assert.Equal(t, 2, m.TimerCount())
	assert.Contains(t, out.String(), "error: invalid timer")
	assert.Contains(t, out.String(), "2\n")
}

func TestConsole_RunStopsAtEOF(t *testing.T) {
	m, _ := testutil.NewTestManager(t)
	c := New(m, &syncBuffer{}, nil)

	require.NoError(t, c.Run(context.Background(), strings.NewReader("add")))
	assert.Equal(t, 1, m.TimerCount())
}

func TestConsole_Watch(t *testing.T) {
	m, clock := testutil.NewTestManager(t)
	out := &syncBuffer{}
	c := New(m, out, nil)

	sub, err := m.Subscribe()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Watch(context.Background(), sub)
	}()

	require.NoError(t, c.Execute("add"))
	require.NoError(t, c.Execute("start 0 2s"))
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "timer 0  00:00:01")
	}, testutil.DefaultWait, 5*time.Millisecond)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "ALARM")
	}, testutil.DefaultWait, 5*time.Millisecond)

	sub.Close()
	select {
	case <-done:
	case <-time.After(testutil.DefaultWait):
		t.Fatal("watch did not return after the subscription closed")
	}

	text := out.String()
	assert.Contains(t, text, "0 timer(s)")
	assert.Contains(t, text, "timer 0 added")
	assert.Contains(t, text, "timer 0 started")
}

func TestRender(t *testing.T) {
	tests := []struct {
		event countdown.Event
		want  string
	}{
		{countdown.Event{Kind: countdown.EventCatchUp, Count: 3}, "3 timer(s)"},
		{countdown.Event{Kind: countdown.EventTimerAdded, TimerID: 1}, "timer 1 added"},
		{countdown.Event{Kind: countdown.EventTimerRemoved, TimerID: 1}, "timer 1 removed"},
		{countdown.Event{Kind: countdown.EventTimerStarted, TimerID: 2}, "timer 2 started"},
		{countdown.Event{Kind: countdown.EventTimerStopped, TimerID: 2}, "timer 2 reset"},
		{countdown.Event{Kind: countdown.EventTimerTick, TimerID: 0, Remaining: 61 * time.Second}, "timer 0  00:01:01"},
		{countdown.Event{Kind: countdown.EventTimerAlarmSounding, TimerID: 4}, "timer 4  00:00:00  ALARM (ack 4)"},
		{countdown.Event{Kind: countdown.EventTimerAlarmStopped, TimerID: 4}, "timer 4 alarm stopped"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Render(tt.event))
	}
}
