package ga

import (
	"sync"
	"time"

	"adaptevo/internal/fitness"
)

// Tracker receives every new best-so-far candidate. It never hands state
// back to the population.
type Tracker[C any, F fitness.Value] interface {
	Update(value F, candidate C)
}

// ProgressTracker records the best candidate seen across every population
// that reports to it. It is safe for concurrent use and is the one object
// shared between split workers. Reported candidates must not be modified
// afterwards.
type ProgressTracker[C any, F fitness.Value] struct {
	mu           sync.Mutex
	best         C
	fitness      F
	found        bool
	improvements int
	at           time.Time
	started      time.Time
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker[C any, F fitness.Value]() *ProgressTracker[C, F] {
	return &ProgressTracker[C, F]{started: time.Now()}
}

// Update keeps candidate if it strictly improves on the recorded best.
func (t *ProgressTracker[C, F]) Update(value F, candidate C) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.found && value <= t.fitness {
		return
	}
	t.best = candidate
	t.fitness = value
	t.found = true
	t.improvements++
	t.at = time.Now()
}

// Best returns the recorded best, or false if nothing was reported yet.
func (t *ProgressTracker[C, F]) Best() (C, F, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.best, t.fitness, t.found
}

// Improvements returns how many times the best value was raised.
func (t *ProgressTracker[C, F]) Improvements() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.improvements
}

// Elapsed is the time from tracker creation to the last improvement.
func (t *ProgressTracker[C, F]) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.found {
		return 0
	}
	return t.at.Sub(t.started)
}
