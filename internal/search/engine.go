package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"adaptevo/internal/fitness"
	"adaptevo/internal/ga"
)

// Candidate is a duplicable solution that carries its own variation rates.
type Candidate[C any] interface {
	ga.Candidate[C]
	ga.Adaptive
}

// Progress is reported after the initial population (Generation 0) and
// after every generation.
type Progress[C any, F fitness.Value] struct {
	Worker      int
	Generation  int
	Evaluations int // cumulative, including the initial population
	Fitness     *ga.Vector[F]
	Controls    []ga.Control // mutable slots only
	Best        C
	BestFitness F
}

// Result is the outcome of one worker's run.
type Result[C any, F fitness.Value] struct {
	Worker      int
	Generations int
	Evaluations int
	Best        C
	BestFitness F
	Found       bool
	Elapsed     time.Duration
}

// Engine drives a population through generations of selection followed by
// adaptive variation.
type Engine[C Candidate[C], F fitness.Value] struct {
	population *ga.Population[C, F]
	generation *ga.AdaptiveGeneration[C]
	worker     int
}

// NewEngine creates an engine over an initialized population.
func NewEngine[C Candidate[C], F fitness.Value](population *ga.Population[C, F], generation *ga.AdaptiveGeneration[C]) (*Engine[C, F], error) {
	if population == nil {
		return nil, fmt.Errorf("%w: population is required", ga.ErrMissing)
	}
	if generation == nil {
		return nil, fmt.Errorf("%w: generation operator is required", ga.ErrMissing)
	}
	return &Engine[C, F]{population: population, generation: generation}, nil
}

// Population returns the engine's population.
func (e *Engine[C, F]) Population() *ga.Population[C, F] {
	return e.population
}

// Worker returns the engine's worker index.
func (e *Engine[C, F]) Worker() int {
	return e.worker
}

// Optimize initializes the population and runs the given number of
// generations. The context is checked between generations; on cancellation
// the partial result is returned with the context's error. observe may be nil.
func (e *Engine[C, F]) Optimize(ctx context.Context, generations int, observe func(Progress[C, F])) (Result[C, F], error) {
	res := Result[C, F]{Worker: e.worker}
	if generations < 0 {
		return res, fmt.Errorf("%w: generations must be >= 0, got %d", ga.ErrConfig, generations)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	started := time.Now()
	pop := e.population
	pop.Init()
	pop.InitOperators(generations)
	res.Evaluations = pop.Size()
	e.report(observe, 0, res.Evaluations)

	var err error
	for gen := 1; gen <= generations; gen++ {
		if err = ctx.Err(); err != nil {
			break
		}
		pop.Select()
		res.Evaluations += e.generation.Apply(pop)
		res.Generations = gen
		e.report(observe, gen, res.Evaluations)
	}

	res.Best, res.BestFitness, res.Found = pop.MostFit()
	res.Elapsed = time.Since(started)
	return res, err
}

func (e *Engine[C, F]) report(observe func(Progress[C, F]), gen, evaluations int) {
	if observe == nil {
		return
	}
	pop := e.population
	controls := make([]ga.Control, pop.MutableSize())
	for i := range controls {
		controls[i] = *pop.Get(i).Control()
	}
	best, value, _ := pop.MostFit()
	observe(Progress[C, F]{
		Worker:      e.worker,
		Generation:  gen,
		Evaluations: evaluations,
		Fitness:     pop.FitnessVector(),
		Controls:    controls,
		Best:        best,
		BestFitness: value,
	})
}

// Split returns an engine over a split population and split operators. The
// progress tracker stays shared.
func (e *Engine[C, F]) Split() *Engine[C, F] {
	return &Engine[C, F]{
		population: e.population.Split(),
		generation: e.generation.Split(),
		worker:     e.worker,
	}
}

// RunParallel runs engine and workers-1 splits of it concurrently, one
// result per worker in worker order. observe is called from every worker
// goroutine and must be safe for concurrent use. The first failing worker
// cancels the others.
func RunParallel[C Candidate[C], F fitness.Value](
	ctx context.Context,
	engine *Engine[C, F],
	workers int,
	generations int,
	observe func(Progress[C, F]),
) ([]Result[C, F], error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ga.ErrMissing)
	}
	if workers < 1 {
		return nil, fmt.Errorf("%w: workers must be >= 1, got %d", ga.ErrConfig, workers)
	}

	engines := make([]*Engine[C, F], workers)
	engines[0] = engine
	for i := 1; i < workers; i++ {
		engines[i] = engine.Split()
		engines[i].worker = i
	}

	results := make([]Result[C, F], workers)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for i, worker := range engines {
		i, worker := i, worker
		p.Go(func(ctx context.Context) error {
			res, err := worker.Optimize(ctx, generations, observe)
			results[i] = res
			return err
		})
	}
	err := p.Wait()
	return results, err
}

// Best returns the fittest result, or false if no worker found a candidate.
func Best[C any, F fitness.Value](results []Result[C, F]) (Result[C, F], bool) {
	var best Result[C, F]
	found := false
	for _, r := range results {
		if !r.Found {
			continue
		}
		if !found || r.BestFitness > best.BestFitness {
			best = r
			found = true
		}
	}
	return best, found
}
