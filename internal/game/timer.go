// internal/game/timer.go
package game

import (
	"sync"
	"time"
)

// Timer is a restartable per-phase countdown. It fires onTick once per second
// with the remaining whole seconds (first tick immediately, for UI sync) and
// onExpire exactly once when the countdown reaches zero, unless Stop wins the
// race. AddTime stretches the countdown without disturbing the tick cadence.
//
// Callbacks run on the timer's own goroutine; callers that mutate shared
// state from them must take their own locks.
type Timer struct {
	mu        sync.Mutex
	remaining int
	active    bool
	done      chan struct{}

	onTick   func(remaining int)
	onExpire func()
}

// StartTimer begins a countdown of the given duration (rounded down to whole
// seconds, minimum one). Either callback may be nil.
func StartTimer(d time.Duration, onTick func(remaining int), onExpire func()) *Timer {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	t := &Timer{
		remaining: secs,
		active:    true,
		done:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
	}
	go t.countdown()
	return t
}

func (t *Timer) countdown() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		t.mu.Lock()
		if !t.active {
			t.mu.Unlock()
			return
		}
		remaining := t.remaining
		t.mu.Unlock()

		if t.onTick != nil {
			t.onTick(remaining)
		}

		select {
		case <-t.done:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if !t.active {
			t.mu.Unlock()
			return
		}
		t.remaining--
		expired := t.remaining <= 0
		if expired {
			t.active = false
		}
		t.mu.Unlock()

		if expired {
			if t.onExpire != nil {
				t.onExpire()
			}
			return
		}
	}
}

// Stop cancels the countdown. After Stop returns, onExpire will not fire for
// this timer (an expiry already committed under the lock may still be in
// flight; phase-generation checks in the state machine make those harmless).
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.active = false
	close(t.done)
}

// AddTime extends the countdown. No-op on a stopped or expired timer.
func (t *Timer) AddTime(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.remaining += int(d / time.Second)
}

// Remaining returns the remaining whole seconds, or 0 once stopped/expired.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return 0
	}
	return t.remaining
}

// Active reports whether the countdown is still running.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
