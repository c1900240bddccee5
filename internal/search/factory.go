package search

import (
	"fmt"
	"math/rand/v2"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/config"
	"adaptevo/internal/fitness"
	"adaptevo/internal/ga"
	"adaptevo/internal/problem"
)

// Fitness resolves the configured problem and transform. Exactly one of the
// returned functions is non-nil: integer fitness only arises from an integer
// problem under the negative transform.
func Fitness(cfg *config.Config) (fitness.Function[*bitvec.Vector, int], fitness.Function[*bitvec.Vector, float64], error) {
	name := cfg.Problem.Name
	if problem.IsReal(name) {
		p, err := problem.Real(name, cfg.Problem.Target)
		if err != nil {
			return nil, nil, err
		}
		switch cfg.GA.Fitness {
		case "negative":
			f, err := fitness.NewNegative(p)
			if err != nil {
				return nil, nil, err
			}
			return nil, f, nil
		case "inverse":
			f, err := fitness.NewInverseScaled(p, cfg.GA.Scale)
			if err != nil {
				return nil, nil, err
			}
			return nil, f, nil
		}
		return nil, nil, fmt.Errorf("%w: unknown fitness %q", ga.ErrConfig, cfg.GA.Fitness)
	}

	p, err := problem.Int(name)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.GA.Fitness {
	case "negative":
		f, err := fitness.NewNegative(p)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case "inverse":
		f, err := fitness.NewIntInverseScaled(p, cfg.GA.Scale)
		if err != nil {
			return nil, nil, err
		}
		return nil, f, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown fitness %q", ga.ErrConfig, cfg.GA.Fitness)
}

// NewSelection builds the configured selection operator.
func NewSelection(cfg config.GAConfig, rng *rand.Rand) (ga.Selection, error) {
	var (
		selection ga.Selection
		err       error
	)
	switch cfg.Selection {
	case "linear_rank":
		selection, err = ga.NewLinearRank(cfg.Bias, rng)
	case "tournament":
		selection, err = ga.NewTournament(cfg.TournamentK, rng)
	case "truncation":
		selection, err = ga.NewTruncation(cfg.TruncationK, rng)
	case "proportional":
		return ga.NewFitnessProportional(rng), nil
	case "uniform":
		return ga.NewUniform(rng), nil
	default:
		return nil, fmt.Errorf("%w: unknown selection %q", ga.ErrConfig, cfg.Selection)
	}
	if err != nil {
		return nil, err
	}
	return selection, nil
}

// NewCrossover builds the configured bit-vector crossover.
func NewCrossover(name string, rng *rand.Rand) (ga.Crossover[*bitvec.Vector], error) {
	switch name {
	case "uniform":
		return bitvec.NewUniformCrossover(rng), nil
	case "single_point":
		return bitvec.NewSinglePointCrossover(rng), nil
	default:
		return nil, fmt.Errorf("%w: unknown crossover %q", ga.ErrConfig, name)
	}
}

// NewBitEngine assembles an engine over bit vectors from cfg. Every
// component draws from its own stream derived from cfg.Seed.
func NewBitEngine[F fitness.Value](cfg *config.Config, f fitness.Function[*bitvec.Vector, F], tracker ga.Tracker[*bitvec.Vector, F]) (*Engine[*bitvec.Vector, F], error) {
	rng := ga.NewRand(cfg.Seed)

	initializer, err := bitvec.NewInitializer(cfg.Problem.Bits, ga.SplitRand(rng))
	if err != nil {
		return nil, err
	}
	selection, err := NewSelection(cfg.GA, ga.SplitRand(rng))
	if err != nil {
		return nil, err
	}
	crossover, err := NewCrossover(cfg.GA.Crossover, ga.SplitRand(rng))
	if err != nil {
		return nil, err
	}

	var pop *ga.Population[*bitvec.Vector, F]
	if cfg.GA.ElitePolicy == "none" {
		pop, err = ga.NewPopulation(cfg.GA.Population, initializer, f, selection, tracker)
	} else {
		var policy ga.ElitePolicy
		policy, err = ga.ParseElitePolicy(cfg.GA.ElitePolicy)
		if err != nil {
			return nil, err
		}
		pop, err = ga.NewElitistPopulation(cfg.GA.Population, cfg.GA.Elites, policy, initializer, f, selection, tracker)
	}
	if err != nil {
		return nil, err
	}

	generation, err := ga.NewAdaptiveGeneration(bitvec.NewBitFlip(ga.SplitRand(rng)), crossover, ga.SplitRand(rng))
	if err != nil {
		return nil, err
	}
	return NewEngine(pop, generation)
}
