package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/config"
	"adaptevo/internal/fitness"
	"adaptevo/internal/ga"
	"adaptevo/internal/problem"
)

func TestFitnessKinds(t *testing.T) {
	cases := []struct {
		name    string
		problem string
		fitness string
		isInt   bool
	}{
		{"int negative", "onemax", "negative", true},
		{"int inverse", "trap", "inverse", false},
		{"real negative", "target", "negative", false},
		{"real inverse", "target", "inverse", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Problem.Name = tc.problem
			cfg.Problem.Target = 0.75
			cfg.GA.Fitness = tc.fitness
			intFit, realFit, err := Fitness(cfg)
			require.NoError(t, err)
			if tc.isInt {
				assert.NotNil(t, intFit)
				assert.Nil(t, realFit)
			} else {
				assert.Nil(t, intFit)
				assert.NotNil(t, realFit)
			}
		})
	}
}

func TestFitnessValues(t *testing.T) {
	cfg := config.Default()
	cfg.Problem.Name = "trap"
	cfg.GA.Fitness = "inverse"
	cfg.GA.Scale = 2
	_, f, err := Fitness(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.Fitness(bitvec.Parse("1111")))
	assert.Equal(t, 2.0/5, f.Fitness(bitvec.Parse("1110")))
}

func TestFitnessErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Problem.Name = "sphere"
	_, _, err := Fitness(cfg)
	assert.ErrorIs(t, err, problem.ErrUnknown)

	cfg = config.Default()
	cfg.Problem.Name = "target"
	cfg.Problem.Target = 2
	_, _, err = Fitness(cfg)
	assert.ErrorIs(t, err, fitness.ErrConfig)

	cfg = config.Default()
	cfg.GA.Fitness = "log"
	_, _, err = Fitness(cfg)
	assert.ErrorIs(t, err, ga.ErrConfig)
}

func TestNewSelectionByName(t *testing.T) {
	cfg := config.Default().GA
	for name, want := range map[string]any{
		"linear_rank":  &ga.LinearRank{},
		"tournament":   &ga.Tournament{},
		"truncation":   &ga.Truncation{},
		"proportional": &ga.FitnessProportional{},
		"uniform":      &ga.Uniform{},
	} {
		cfg.Selection = name
		sel, err := NewSelection(cfg, ga.NewRand(1))
		require.NoError(t, err, name)
		assert.IsType(t, want, sel, name)
	}

	cfg.Selection = "roulette"
	_, err := NewSelection(cfg, ga.NewRand(1))
	assert.ErrorIs(t, err, ga.ErrConfig)

	cfg.Selection = "linear_rank"
	cfg.Bias = 3
	sel, err := NewSelection(cfg, ga.NewRand(1))
	assert.ErrorIs(t, err, ga.ErrConfig)
	assert.Nil(t, sel)
}

func TestNewCrossoverByName(t *testing.T) {
	x, err := NewCrossover("uniform", ga.NewRand(1))
	require.NoError(t, err)
	assert.IsType(t, &bitvec.UniformCrossover{}, x)

	x, err = NewCrossover("single_point", ga.NewRand(1))
	require.NoError(t, err)
	assert.IsType(t, &bitvec.SinglePointCrossover{}, x)

	_, err = NewCrossover("two_point", ga.NewRand(1))
	assert.ErrorIs(t, err, ga.ErrConfig)
}

func TestRealEngineTracksTarget(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 9
	cfg.Problem.Name = "target"
	cfg.Problem.Bits = 16
	cfg.Problem.Target = 0.3
	cfg.GA.Population = 30
	cfg.GA.ElitePolicy = "improvement"
	cfg.GA.Selection = "tournament"
	cfg.GA.Crossover = "single_point"
	require.NoError(t, cfg.Validate())

	_, f, err := Fitness(cfg)
	require.NoError(t, err)
	tracker := ga.NewProgressTracker[*bitvec.Vector, float64]()
	engine, err := NewBitEngine(cfg, f, tracker)
	require.NoError(t, err)
	assert.Equal(t, ga.ElitesOnImprovement, engine.Population().Policy())

	var first float64
	res, err := engine.Optimize(context.Background(), 100, func(p Progress[*bitvec.Vector, float64]) {
		if p.Generation == 0 {
			first = p.BestFitness
		}
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.BestFitness, first)
	assert.Greater(t, res.BestFitness, -0.01)
	assert.InDelta(t, 0.3, res.Best.Fraction(), 0.01)
}
