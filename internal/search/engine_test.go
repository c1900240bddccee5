package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/config"
	"adaptevo/internal/ga"
)

func oneMaxConfig(bits, population, elites int) *config.Config {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.Problem.Bits = bits
	cfg.GA.Population = population
	cfg.GA.Elites = elites
	return cfg
}

func newOneMaxEngine(t *testing.T, cfg *config.Config) (*Engine[*bitvec.Vector, int], *ga.ProgressTracker[*bitvec.Vector, int]) {
	t.Helper()
	require.NoError(t, cfg.Validate())
	intFit, realFit, err := Fitness(cfg)
	require.NoError(t, err)
	require.NotNil(t, intFit)
	require.Nil(t, realFit)

	tracker := ga.NewProgressTracker[*bitvec.Vector, int]()
	engine, err := NewBitEngine(cfg, intFit, tracker)
	require.NoError(t, err)
	return engine, tracker
}

func TestOptimizeSolvesOneMax(t *testing.T) {
	engine, tracker := newOneMaxEngine(t, oneMaxConfig(20, 40, 2))

	var progress []Progress[*bitvec.Vector, int]
	res, err := engine.Optimize(context.Background(), 200, func(p Progress[*bitvec.Vector, int]) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	require.True(t, res.Found)
	assert.Equal(t, 200, res.Generations)
	assert.Equal(t, 0, res.BestFitness, "best %s", res.Best)
	assert.Equal(t, 20, res.Best.Ones())

	best, value, ok := tracker.Best()
	require.True(t, ok)
	assert.Equal(t, 0, value)
	assert.Equal(t, 20, best.Ones())

	require.Len(t, progress, 201)
	assert.Equal(t, 0, progress[0].Generation)
	assert.Equal(t, 40, progress[0].Evaluations)
	for i := 1; i < len(progress); i++ {
		p := progress[i]
		assert.Equal(t, i, p.Generation)
		assert.Equal(t, 40, p.Fitness.Size())
		assert.Len(t, p.Controls, 38)
		assert.GreaterOrEqual(t, p.BestFitness, progress[i-1].BestFitness)

		spent := p.Evaluations - progress[i-1].Evaluations
		assert.GreaterOrEqual(t, spent, 0)
		assert.LessOrEqual(t, spent, 38)
	}
	assert.Equal(t, progress[200].Evaluations, res.Evaluations)
}

func TestOptimizeKeepsControlsInBounds(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(16, 20, 2))
	_, err := engine.Optimize(context.Background(), 30, func(p Progress[*bitvec.Vector, int]) {
		for _, c := range p.Controls {
			assert.GreaterOrEqual(t, c.Crossover, ga.MinCrossoverRate)
			assert.LessOrEqual(t, c.Crossover, ga.MaxCrossoverRate)
			assert.GreaterOrEqual(t, c.Mutation, ga.MinMutationRate)
			assert.LessOrEqual(t, c.Mutation, ga.MaxMutationRate)
			assert.GreaterOrEqual(t, c.Strength, ga.MinStrength)
			assert.LessOrEqual(t, c.Strength, ga.MaxStrength)
		}
	})
	require.NoError(t, err)
}

func TestOptimizeZeroGenerations(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(8, 10, 1))
	res, err := engine.Optimize(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Generations)
	assert.Equal(t, 10, res.Evaluations)
	assert.True(t, res.Found)

	_, err = engine.Optimize(context.Background(), -1, nil)
	assert.ErrorIs(t, err, ga.ErrConfig)
}

func TestOptimizeStopsOnCancel(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(64, 20, 2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := engine.Optimize(ctx, 1000, func(p Progress[*bitvec.Vector, int]) {
		if p.Generation == 5 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, res.Generations)
	assert.True(t, res.Found)

	res, err = engine.Optimize(ctx, 10, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Evaluations)
}

func TestOptimizeWithoutElites(t *testing.T) {
	cfg := oneMaxConfig(16, 20, 0)
	cfg.GA.ElitePolicy = "none"
	engine, _ := newOneMaxEngine(t, cfg)
	assert.Equal(t, 20, engine.Population().MutableSize())

	res, err := engine.Optimize(context.Background(), 20, nil)
	require.NoError(t, err)
	assert.True(t, res.Found)
}

func TestRunParallelSharesTracker(t *testing.T) {
	engine, tracker := newOneMaxEngine(t, oneMaxConfig(24, 20, 2))

	var (
		mu   sync.Mutex
		seen = map[int]int{}
	)
	results, err := RunParallel(context.Background(), engine, 4, 60, func(p Progress[*bitvec.Vector, int]) {
		mu.Lock()
		seen[p.Worker]++
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Worker)
		assert.Equal(t, 60, r.Generations)
		assert.True(t, r.Found)
		assert.Equal(t, 61, seen[i])
	}

	best, ok := Best(results)
	require.True(t, ok)
	_, value, found := tracker.Best()
	require.True(t, found)
	assert.Equal(t, best.BestFitness, value)
	for _, r := range results {
		assert.LessOrEqual(t, r.BestFitness, value)
	}
}

func TestRunParallelWorkersDiverge(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(64, 10, 1))
	firsts := make([]string, 3)
	var mu sync.Mutex
	_, err := RunParallel(context.Background(), engine, 3, 0, func(p Progress[*bitvec.Vector, int]) {
		mu.Lock()
		firsts[p.Worker] = p.Best.String()
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.NotEqual(t, firsts[0], firsts[1])
	assert.NotEqual(t, firsts[1], firsts[2])
}

func TestRunParallelRejectsBadArguments(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(8, 10, 1))
	_, err := RunParallel(context.Background(), engine, 0, 10, nil)
	assert.ErrorIs(t, err, ga.ErrConfig)

	_, err = RunParallel[*bitvec.Vector, int](context.Background(), nil, 2, 10, nil)
	assert.ErrorIs(t, err, ga.ErrMissing)
}

func TestRunParallelCancelled(t *testing.T) {
	engine, _ := newOneMaxEngine(t, oneMaxConfig(8, 10, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunParallel(ctx, engine, 2, 10, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewEngineRequiresParts(t *testing.T) {
	_, err := NewEngine[*bitvec.Vector, int](nil, nil)
	assert.ErrorIs(t, err, ga.ErrMissing)
}

func TestBestIgnoresEmptyResults(t *testing.T) {
	_, ok := Best([]Result[*bitvec.Vector, int]{{Worker: 0}, {Worker: 1}})
	assert.False(t, ok)

	best, ok := Best([]Result[*bitvec.Vector, int]{
		{Worker: 0, Found: true, BestFitness: -4},
		{Worker: 1, Found: true, BestFitness: -1},
		{Worker: 2, Found: false, BestFitness: 9},
	})
	require.True(t, ok)
	assert.Equal(t, 1, best.Worker)
}
