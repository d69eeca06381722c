// Package loading coordinates the busy indicator across concurrent
// backend operations.
//
// A Tracker counts active operations. The indicator becomes visible the
// moment work starts and stays up for a short linger after the last
// operation finishes, so back-to-back requests do not make it flicker.
// The tracker is handed to whoever performs work and the UI observes it
// through a change callback; nothing here is process-global.
package loading

import (
	"sync"
	"time"
)

// DefaultLinger is how long the indicator stays visible after the last
// operation completes.
const DefaultLinger = 500 * time.Millisecond

// Tracker is a reference-counted busy indicator. The zero value is not
// usable; create one with NewTracker.
type Tracker struct {
	mu      sync.Mutex
	linger  time.Duration
	active  int
	visible bool
	timer   *time.Timer
	notify  func(visible bool)
}

// NewTracker creates a tracker. A non-positive linger falls back to
// DefaultLinger. The notify callback receives visibility transitions and
// may be nil; it is never invoked while the tracker's lock is held.
func NewTracker(linger time.Duration, notify func(visible bool)) *Tracker {
	if linger <= 0 {
		linger = DefaultLinger
	}
	return &Tracker{
		linger: linger,
		notify: notify,
	}
}

// OnChange installs or replaces the visibility callback. Useful when the
// observer (the UI program) is constructed after the tracker.
func (t *Tracker) OnChange(fn func(visible bool)) {
	t.mu.Lock()
	t.notify = fn
	t.mu.Unlock()
}

// Begin marks the start of one operation. The indicator shows
// immediately; a pending fade-out is cancelled.
func (t *Tracker) Begin() {
	t.mu.Lock()
	t.active++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	show := !t.visible
	t.visible = true
	fn := t.notify
	t.mu.Unlock()

	if show && fn != nil {
		fn(true)
	}
}

// End marks the completion of one operation. When the last operation
// finishes, the indicator stays up for the linger duration and hides
// only if no new work started in the meantime.
func (t *Tracker) End() {
	t.mu.Lock()
	if t.active > 0 {
		t.active--
	}
	if t.active == 0 && t.timer == nil && t.visible {
		t.timer = time.AfterFunc(t.linger, t.hide)
	}
	t.mu.Unlock()
}

// hide runs when the linger timer fires.
func (t *Tracker) hide() {
	t.mu.Lock()
	t.timer = nil
	if t.active != 0 || !t.visible {
		t.mu.Unlock()
		return
	}
	t.visible = false
	fn := t.notify
	t.mu.Unlock()

	if fn != nil {
		fn(false)
	}
}

// Busy reports whether any operation is in flight.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active > 0
}

// Visible reports whether the indicator should currently be shown.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}
