package ga

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTrackerKeepsStrictImprovements(t *testing.T) {
	tracker := NewProgressTracker[*member, int]()
	_, _, ok := tracker.Best()
	assert.False(t, ok)
	assert.Zero(t, tracker.Elapsed())

	first := &member{id: 1}
	tracker.Update(5, first)
	tracker.Update(5, &member{id: 2})
	tracker.Update(3, &member{id: 3})

	best, fit, ok := tracker.Best()
	require.True(t, ok)
	assert.Same(t, first, best)
	assert.Equal(t, 5, fit)
	assert.Equal(t, 1, tracker.Improvements())

	tracker.Update(9, &member{id: 4})
	_, fit, _ = tracker.Best()
	assert.Equal(t, 9, fit)
	assert.Equal(t, 2, tracker.Improvements())
}

func TestProgressTrackerConcurrentUpdates(t *testing.T) {
	tracker := NewProgressTracker[*member, float64]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				v := float64(w*1000 + i)
				tracker.Update(v, &member{id: int(v)})
			}
		}(w)
	}
	wg.Wait()

	best, fit, ok := tracker.Best()
	require.True(t, ok)
	assert.Equal(t, 7499.0, fit)
	assert.Equal(t, 7499, best.id)
}
