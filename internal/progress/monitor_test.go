package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	failAt int
	err    error
}

func (r *recorder) fn(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.err != nil && len(r.events) >= r.failAt {
		return r.err
	}
	return nil
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c = c.withDefaults()
	assert.Equal(t, 100*time.Millisecond, c.Tick)
	assert.Equal(t, 200, c.StallThreshold)
	assert.Equal(t, 20*time.Second, Config{}.StallAfter())
}

func TestMonitor_EmitsInitialAndProgress(t *testing.T) {
	rec := &recorder{}
	m := New(1000, Config{Tick: time.Millisecond, StallThreshold: 10_000}, rec.fn)

	require.NoError(t, m.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	for _, n := range []int64{100, 250, 250, 600, 1000} {
		m.Observe(n)
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	require.NoError(t, <-done)
	require.NoError(t, m.Finish())

	events := rec.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Bytes: 0, Percent: 0, HasPercent: true}, events[0])

	last := events[len(events)-1]
	assert.Equal(t, int64(1000), last.Bytes)
	assert.Equal(t, uint8(100), last.Percent)

	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Bytes, events[i-1].Bytes, "events must be non-decreasing")
		assert.GreaterOrEqual(t, events[i].Percent, events[i-1].Percent)
	}
}

func TestMonitor_UnknownTotalHasNoPercent(t *testing.T) {
	rec := &recorder{}
	m := New(0, Config{Tick: time.Millisecond, StallThreshold: 10_000}, rec.fn)
	m.Observe(42)
	require.NoError(t, m.Finish())

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.False(t, events[0].HasPercent)
	assert.Equal(t, int64(42), events[0].Bytes)
	assert.Equal(t, "42 bytes", events[0].String())
}

func TestMonitor_ObserveNeverMovesBackwards(t *testing.T) {
	m := New(10, Config{}, nil)
	m.Observe(8)
	m.Observe(3)
	assert.Equal(t, int64(8), m.Sent())
}

func TestMonitor_StallAfterThreshold(t *testing.T) {
	const tick = 2 * time.Millisecond
	const threshold = 25

	m := New(1000, Config{Tick: tick, StallThreshold: threshold}, nil)
	m.Observe(64) // sends once, then stops

	start := time.Now()
	err := m.Run(context.Background())
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrStalled)
	assert.GreaterOrEqual(t, elapsed, tick*threshold)
}

func TestMonitor_SteadyProgressDoesNotStall(t *testing.T) {
	m := New(0, Config{Tick: time.Millisecond, StallThreshold: 50}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// slow but steady: one byte every couple of ticks for well past the threshold
	for i := int64(1); i <= 40; i++ {
		m.Observe(i)
		time.Sleep(3 * time.Millisecond)
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestMonitor_CallbackAbort(t *testing.T) {
	stop := errors.New("disk full")
	rec := &recorder{failAt: 2, err: stop}
	m := New(100, Config{Tick: time.Millisecond, StallThreshold: 10_000}, rec.fn)
	require.NoError(t, m.Start())

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	time.Sleep(3 * time.Millisecond)
	m.Observe(50)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrCallbackAborted)
		assert.ErrorIs(t, err, stop)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not return after callback failure")
	}
}

func TestMonitor_InitialCallbackAbort(t *testing.T) {
	rec := &recorder{failAt: 1, err: ErrAbort}
	m := New(100, Config{Tick: time.Millisecond}, rec.fn)

	err := m.Start()
	require.ErrorIs(t, err, ErrCallbackAborted)
	assert.ErrorIs(t, err, ErrAbort)
}

func TestMonitor_StartReportsZeroBeforeFastTransport(t *testing.T) {
	rec := &recorder{}
	m := New(4096, Config{Tick: time.Millisecond}, rec.fn)

	require.NoError(t, m.Start())
	m.Observe(4096) // whole body handed over before the first tick
	require.NoError(t, m.Finish())

	events := rec.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Bytes: 0, Percent: 0, HasPercent: true}, events[0])
	assert.Equal(t, Event{Bytes: 4096, Percent: 100, HasPercent: true}, events[1])
}

func TestMonitor_WaitingForResponseIsNotStall(t *testing.T) {
	m := New(100, Config{Tick: time.Millisecond, StallThreshold: 5}, nil)
	m.Observe(100)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, m.Run(ctx), "a fully sent body must not be reported as stalled")
}

func TestMonitor_StallBeforeFirstByte(t *testing.T) {
	m := New(100, Config{Tick: time.Millisecond, StallThreshold: 5}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.ErrorIs(t, m.Run(ctx), ErrStalled)
}

func TestMonitor_FinishSkipsDuplicate(t *testing.T) {
	rec := &recorder{}
	m := New(10, Config{}, rec.fn)
	m.Observe(10)
	require.NoError(t, m.Finish())
	require.NoError(t, m.Finish())
	assert.Len(t, rec.snapshot(), 1)
}
