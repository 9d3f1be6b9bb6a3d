// Package cooldown implements the per-user throttle that gates how often a
// single user can issue a command. Admission is decided purely from the
// timestamp of the user's last admitted request; an admitted request records
// its own start time immediately and is never rolled back, regardless of what
// happens downstream.
package cooldown

import (
	"sync"
	"time"
)

// sweepFactor determines how long an entry has to sit idle, measured in
// cooldown windows, before Sweep evicts it.
const sweepFactor = 10

// Tracker records the last admitted request time per user and decides
// whether a new request may proceed. Safe for concurrent use; Discord
// event handlers run on separate goroutines.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// New creates a Tracker with the given cooldown window.
func New(window time.Duration) *Tracker {
	return &Tracker{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Admit reports whether a request from userID at time now may proceed.
// If the user has no record, or the window has fully elapsed since their
// last admitted request, the request is admitted and now is recorded as
// the new last-request time. Otherwise the request is rejected and the
// stored timestamp is left untouched.
func (t *Tracker) Admit(userID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[userID]
	if ok && now.Sub(last) < t.window {
		return false
	}

	t.last[userID] = now
	return true
}

// Sweep evicts entries that have been idle for at least sweepFactor cooldown
// windows and returns how many were removed. Keeps the map bounded in
// long-running deployments; an evicted user is simply admitted on their next
// request, exactly as a first-time user would be.
func (t *Tracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-sweepFactor * t.window)
	evicted := 0
	for userID, last := range t.last {
		if last.Before(cutoff) {
			delete(t.last, userID)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked users.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
