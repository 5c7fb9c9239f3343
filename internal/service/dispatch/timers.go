package dispatch

import (
	"sync"
	"time"
)

// Timers is an in-process Scheduler built on time.AfterFunc.
// A fired or cancelled entry is removed, so each callback runs at most once.
type Timers struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimers creates an empty scheduler.
func NewTimers() *Timers {
	return &Timers{timers: make(map[string]*time.Timer)}
}

// Schedule arms fn to run after the delay, replacing any timer with the same key.
// It does nothing once Stop has been called.
func (t *Timers) Schedule(key string, after time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if old, ok := t.timers[key]; ok {
		old.Stop()
	}

	var tm *time.Timer
	tm = time.AfterFunc(after, func() {
		t.mu.Lock()
		if t.timers[key] != tm {
			t.mu.Unlock()
			return
		}
		delete(t.timers, key)
		t.mu.Unlock()
		fn()
	})
	t.timers[key] = tm
}

// Cancel stops the timer for key and reports whether one was pending.
func (t *Timers) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	tm, ok := t.timers[key]
	if !ok {
		return false
	}
	delete(t.timers, key)
	return tm.Stop()
}

// Pending returns the number of armed timers.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

// Stop cancels every pending timer and rejects new ones.
func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	for key, tm := range t.timers {
		tm.Stop()
		delete(t.timers, key)
	}
}
