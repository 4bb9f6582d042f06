// Package clock provides the time source used by all scheduling logic.
//
// Scheduling math (spaced repetition, window matching, reminder dispatch)
// must never read the wall clock directly, so tests can pin "now".
package clock

import (
	"sync"
	"time"
)

// Clock is the narrow time source injected into services.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

// NewSystem creates a wall-clock Clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current wall-clock time.
func (*System) Now() time.Time {
	return time.Now()
}

// Fake is a Clock that returns a manually controlled instant.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a Fake pinned to the given instant.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set pins the clock to a new instant.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance moves the pinned instant forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
