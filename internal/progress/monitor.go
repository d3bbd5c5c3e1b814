// Package progress observes one upload attempt on a fixed tick, reports
// progress events to the caller and raises a stall signal when the byte
// counter stops moving.
//
// A Monitor has no cancellation authority. Run returns ErrStalled or an
// ErrCallbackAborted error and the owner of the attempt decides what to do.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	DefaultTick           = 100 * time.Millisecond
	DefaultStallThreshold = 200
)

var (
	// ErrStalled is returned by Run when no forward progress was observed
	// for StallThreshold consecutive ticks.
	ErrStalled = errors.New("upload stalled: no progress detected")

	// ErrCallbackAborted wraps the error returned by a progress callback.
	ErrCallbackAborted = errors.New("progress callback aborted")

	// ErrAbort is a convenience value callbacks may return to stop an upload.
	ErrAbort = errors.New("aborted by caller")
)

// Config controls sampling. Zero fields take the defaults.
type Config struct {
	Tick           time.Duration
	StallThreshold int
}

func (c Config) withDefaults() Config {
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.StallThreshold <= 0 {
		c.StallThreshold = DefaultStallThreshold
	}
	return c
}

// StallAfter is the wall-clock time without progress that triggers a stall.
func (c Config) StallAfter() time.Duration {
	c = c.withDefaults()
	return c.Tick * time.Duration(c.StallThreshold)
}

// Event is a point-in-time observation. Percent is only meaningful when
// HasPercent is set, which requires a known total size.
type Event struct {
	Bytes      int64
	Percent    uint8
	HasPercent bool
}

func (e Event) String() string {
	if !e.HasPercent {
		return fmt.Sprintf("%d bytes", e.Bytes)
	}
	return fmt.Sprintf("%d%% (%d bytes)", e.Percent, e.Bytes)
}

// Func receives progress events. Returning a non-nil error aborts the attempt.
type Func func(Event) error

// Monitor wraps a single attempt. It must not be reused.
type Monitor struct {
	cfg   Config
	total int64
	fn    Func

	sent        atomic.Int64
	lastEmitted int64
	emitted     bool
}

// New creates a monitor for a payload of total bytes; total <= 0 means the
// size is unknown and events carry no percentage. fn may be nil.
func New(total int64, cfg Config, fn Func) *Monitor {
	return &Monitor{cfg: cfg.withDefaults(), total: total, fn: fn}
}

// Observe records the cumulative number of bytes handed to the transport.
// It is safe to call from any goroutine; values never move backwards.
func (m *Monitor) Observe(cumulative int64) {
	for {
		cur := m.sent.Load()
		if cumulative <= cur {
			return
		}
		if m.sent.CompareAndSwap(cur, cumulative) {
			return
		}
	}
}

// Sent returns the last observed byte count.
func (m *Monitor) Sent() int64 {
	return m.sent.Load()
}

// Start reports the zero-byte event that opens an attempt. Call it before
// the transport starts so the caller always sees the reset first.
func (m *Monitor) Start() error {
	return m.emit(0, true)
}

// Run samples on every tick until ctx is done, the callback fails or the
// attempt stalls. Once the whole body has been handed over, waiting for the
// response is not a stall. Run and Finish must not be called concurrently.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()

	var last int64
	unchanged := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		// the attempt may have resolved while we were waiting
		if ctx.Err() != nil {
			return nil
		}

		cur := m.sent.Load()
		if cur == last {
			if m.complete(cur) {
				continue
			}
			unchanged++
			if unchanged >= m.cfg.StallThreshold {
				return ErrStalled
			}
			continue
		}

		unchanged = 0
		last = cur
		if err := m.emit(cur, false); err != nil {
			return err
		}
	}
}

// complete reports whether the whole body of known size has been handed to
// the transport.
func (m *Monitor) complete(sent int64) bool {
	return m.total > 0 && sent >= m.total
}

// Finish reports the final byte count after Run has returned. It is a no-op
// when that count has already been reported.
func (m *Monitor) Finish() error {
	return m.emit(m.sent.Load(), false)
}

func (m *Monitor) emit(bytes int64, force bool) error {
	if m.emitted && !force && bytes <= m.lastEmitted {
		return nil
	}
	if m.emitted && bytes < m.lastEmitted {
		bytes = m.lastEmitted
	}
	m.emitted = true
	m.lastEmitted = bytes

	if m.fn == nil {
		return nil
	}
	if err := m.fn(m.event(bytes)); err != nil {
		return fmt.Errorf("%w: %w", ErrCallbackAborted, err)
	}
	return nil
}

func (m *Monitor) event(bytes int64) Event {
	e := Event{Bytes: bytes}
	if m.total > 0 {
		pct := bytes * 100 / m.total
		if pct > 100 {
			pct = 100
		}
		e.Percent = uint8(pct)
		e.HasPercent = true
	}
	return e
}
