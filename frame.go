package streamdown

import (
	"sync"
	"time"
)

// FrameDriver supplies the per-frame callback that drives the scheduler's
// drain loop, standing in for a host animation-frame tick. RequestFrame
// schedules fn to run exactly once, later; it must not run fn inline.
type FrameDriver interface {
	RequestFrame(fn func())
}

// IntervalDriver runs requested frames after a fixed delay. It is the
// production default.
type IntervalDriver struct {
	interval time.Duration
}

// NewIntervalDriver creates a driver firing after the given delay.
func NewIntervalDriver(interval time.Duration) *IntervalDriver {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &IntervalDriver{interval: interval}
}

// RequestFrame schedules fn on a timer.
func (d *IntervalDriver) RequestFrame(fn func()) {
	time.AfterFunc(d.interval, fn)
}

// ManualDriver queues requested frames until Step is called. It gives tests
// deterministic, single-stepped frames.
type ManualDriver struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualDriver creates an empty manual driver.
func NewManualDriver() *ManualDriver {
	return &ManualDriver{}
}

// RequestFrame queues fn for a later Step.
func (d *ManualDriver) RequestFrame(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, fn)
}

// Pending returns the number of queued frames.
func (d *ManualDriver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Step runs the oldest queued frame, reporting whether one ran.
func (d *ManualDriver) Step() bool {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return false
	}
	fn := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()

	fn()
	return true
}

// Run steps until no frames remain or max frames have run, returning the
// number of frames executed. max <= 0 means no limit.
func (d *ManualDriver) Run(max int) int {
	ran := 0
	for max <= 0 || ran < max {
		if !d.Step() {
			break
		}
		ran++
	}
	return ran
}
