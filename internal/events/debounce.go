package events

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one callback invocation per
// key. Each key keeps its own timer: the first trigger arms it, later
// triggers within the window are absorbed, and the callback fires once when
// the window elapses. Used to collapse follow-up change storms into a
// single notification per organization.
type Debouncer struct {
	window time.Duration
	fire   func(key uint)

	mu      sync.Mutex
	timers  map[uint]*time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer firing fn after window of quiet per key.
func NewDebouncer(window time.Duration, fn func(key uint)) *Debouncer {
	return &Debouncer{
		window: window,
		fire:   fn,
		timers: map[uint]*time.Timer{},
	}
}

// Trigger schedules (or absorbs into) a pending emission for the key.
func (d *Debouncer) Trigger(key uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if _, pending := d.timers[key]; pending {
		return
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fire(key)
		}
	})
}

// Stop flushes every pending key immediately and rejects new triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	pending := make([]uint, 0, len(d.timers))
	for key, timer := range d.timers {
		if timer.Stop() {
			pending = append(pending, key)
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	for _, key := range pending {
		d.fire(key)
	}
}
