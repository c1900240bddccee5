package ga

import (
	"fmt"
	"strings"

	"adaptevo/internal/fitness"
)

// Candidate is a duplicable point of the search space.
type Candidate[C any] interface {
	Copy() C
}

// Initializer creates fresh candidates.
type Initializer[C any] interface {
	CreateCandidateSolution() C
	Split() Initializer[C]
}

// Generation is the part of a population that operators may change.
// Only slots [0, MutableSize()) are reachable.
type Generation[C any] interface {
	MutableSize() int
	Get(i int) C
	UpdateFitness(i int)
}

// ElitePolicy decides when the elite slots are refilled.
type ElitePolicy int

const (
	// ElitesEveryGeneration refills the elite slots with the fittest
	// candidates at every selection.
	ElitesEveryGeneration ElitePolicy = iota
	// ElitesOnImprovement refills the elite slots only when the incoming
	// generation beats the best fitness seen at the previous refill.
	ElitesOnImprovement
)

// String returns the config name of the policy.
func (p ElitePolicy) String() string {
	switch p {
	case ElitesEveryGeneration:
		return "every"
	case ElitesOnImprovement:
		return "improvement"
	default:
		return "unknown"
	}
}

// ParseElitePolicy accepts the names produced by String.
func ParseElitePolicy(name string) (ElitePolicy, error) {
	switch strings.ToLower(name) {
	case "", "every":
		return ElitesEveryGeneration, nil
	case "improvement":
		return ElitesOnImprovement, nil
	default:
		return 0, fmt.Errorf("%w: unknown elite policy %q", ErrConfig, name)
	}
}

// Population owns one generation of candidates and their fitness.
//
// Slots [0, MutableSize()) are handed to operators. In the elitist variant
// slots [MutableSize(), Size()) hold the fittest candidates and are never
// exposed through Get. Fitness is computed by Init and UpdateFitness only;
// Select carries values along with their candidates.
type Population[C Candidate[C], F fitness.Value] struct {
	size      int
	elites    int
	policy    ElitePolicy
	initial   Initializer[C]
	evaluator fitness.Function[C, F]
	selection Selection
	tracker   Tracker[C, F]

	members    []C
	values     []F
	next       []C
	nextValues []F
	selected   []int
	used       []bool

	best        C
	bestFitness F
	hasBest     bool

	eliteFitness F
	elitesSeeded bool
	initialized  bool
}

// NewPopulation creates a population without elitism.
func NewPopulation[C Candidate[C], F fitness.Value](
	size int,
	initializer Initializer[C],
	f fitness.Function[C, F],
	selection Selection,
	tracker Tracker[C, F],
) (*Population[C, F], error) {
	if err := validate(size, initializer, f, selection, tracker); err != nil {
		return nil, err
	}
	return newPopulation(size, 0, ElitesEveryGeneration, initializer, f, selection, tracker), nil
}

// NewElitistPopulation creates a population that keeps its elites fittest
// candidates out of reach of the operators.
func NewElitistPopulation[C Candidate[C], F fitness.Value](
	size int,
	elites int,
	policy ElitePolicy,
	initializer Initializer[C],
	f fitness.Function[C, F],
	selection Selection,
	tracker Tracker[C, F],
) (*Population[C, F], error) {
	if err := validate(size, initializer, f, selection, tracker); err != nil {
		return nil, err
	}
	if elites < 1 || elites >= size {
		return nil, fmt.Errorf("%w: elite count must be in [1, %d), got %d", ErrConfig, size, elites)
	}
	if policy != ElitesEveryGeneration && policy != ElitesOnImprovement {
		return nil, fmt.Errorf("%w: unknown elite policy %d", ErrConfig, policy)
	}
	return newPopulation(size, elites, policy, initializer, f, selection, tracker), nil
}

func validate[C any, F fitness.Value](
	size int,
	initializer Initializer[C],
	f fitness.Function[C, F],
	selection Selection,
	tracker Tracker[C, F],
) error {
	if size < 1 {
		return fmt.Errorf("%w: population size must be >= 1, got %d", ErrConfig, size)
	}
	if initializer == nil {
		return fmt.Errorf("%w: initializer is required", ErrMissing)
	}
	if f == nil {
		return fmt.Errorf("%w: fitness function is required", ErrMissing)
	}
	if selection == nil {
		return fmt.Errorf("%w: selection operator is required", ErrMissing)
	}
	if tracker == nil {
		return fmt.Errorf("%w: tracker is required", ErrMissing)
	}
	return nil
}

func newPopulation[C Candidate[C], F fitness.Value](
	size int,
	elites int,
	policy ElitePolicy,
	initializer Initializer[C],
	f fitness.Function[C, F],
	selection Selection,
	tracker Tracker[C, F],
) *Population[C, F] {
	return &Population[C, F]{
		size:       size,
		elites:     elites,
		policy:     policy,
		initial:    initializer,
		evaluator:  f,
		selection:  selection,
		tracker:    tracker,
		members:    make([]C, size),
		values:     make([]F, size),
		next:       make([]C, size),
		nextValues: make([]F, size),
		selected:   make([]int, size-elites),
		used:       make([]bool, size),
	}
}

// Init replaces the generation with fresh candidates and evaluates them.
func (p *Population[C, F]) Init() {
	for i := range p.members {
		c := p.initial.CreateCandidateSolution()
		p.members[i] = c
		p.values[i] = p.evaluator.Fitness(c)
	}
	p.initialized = true

	p.hasBest = false
	best := 0
	for i := 1; i < p.size; i++ {
		if p.values[i] > p.values[best] {
			best = i
		}
	}
	p.remember(best)

	p.elitesSeeded = false
	if p.elites > 0 {
		p.commit(nil, p.refreshElites())
	}
}

// InitOperators prepares the selection operator for a run of the given length.
func (p *Population[C, F]) InitOperators(generations int) {
	p.selection.Init(generations)
}

// Select replaces the mutable slots with candidates chosen by the selection
// operator from the whole generation and, for elitist populations, refills
// the elite slots according to the elite policy.
func (p *Population[C, F]) Select() {
	if !p.initialized {
		panic("ga: Select called before Init")
	}
	selectFrom(p.selection, VectorOf(p.values), p.selected)

	var elite []int
	if p.elites > 0 {
		elite = p.refreshElites()
	}
	p.commit(p.selected, elite)
}

// refreshElites returns the member indices that occupy the elite slots next.
func (p *Population[C, F]) refreshElites() []int {
	m := p.MutableSize()
	if p.policy == ElitesOnImprovement && p.elitesSeeded {
		improved := false
		for i := 0; i < m; i++ {
			if p.values[i] > p.eliteFitness {
				improved = true
				break
			}
		}
		if !improved {
			kept := make([]int, p.elites)
			for j := range kept {
				kept[j] = m + j
			}
			return kept
		}
	}
	top := rankDescending(p.values)[:p.elites]
	p.eliteFitness = p.values[top[0]]
	p.elitesSeeded = true
	return top
}

// commit builds the next generation. selected fills the mutable slots; when
// nil, the non-elite members keep their relative order. A member placed in
// more than one slot is copied so no two slots share a candidate.
func (p *Population[C, F]) commit(selected, elite []int) {
	m := p.MutableSize()
	clear(p.used)

	for j, idx := range elite {
		p.next[m+j] = p.members[idx]
		p.nextValues[m+j] = p.values[idx]
		p.used[idx] = true
	}

	if selected == nil {
		k := 0
		for i := range p.members {
			if p.used[i] {
				continue
			}
			p.next[k] = p.members[i]
			p.nextValues[k] = p.values[i]
			p.used[i] = true
			k++
		}
	} else {
		for k, idx := range selected {
			c := p.members[idx]
			if p.used[idx] {
				c = c.Copy()
			} else {
				p.used[idx] = true
			}
			p.next[k] = c
			p.nextValues[k] = p.values[idx]
		}
	}

	p.members, p.next = p.next, p.members
	p.values, p.nextValues = p.nextValues, p.values
	clear(p.next)
}

// Get returns the candidate in mutable slot i for in-place modification.
// Callers must follow a change with UpdateFitness(i).
func (p *Population[C, F]) Get(i int) C {
	p.checkMutable(i)
	return p.members[i]
}

// UpdateFitness re-evaluates the candidate in mutable slot i.
func (p *Population[C, F]) UpdateFitness(i int) {
	p.checkMutable(i)
	v := p.evaluator.Fitness(p.members[i])
	p.values[i] = v
	if !p.hasBest || v > p.bestFitness {
		p.remember(i)
	}
}

func (p *Population[C, F]) remember(i int) {
	p.best = p.members[i].Copy()
	p.bestFitness = p.values[i]
	p.hasBest = true
	p.tracker.Update(p.bestFitness, p.best)
}

func (p *Population[C, F]) checkMutable(i int) {
	if i < 0 || i >= p.MutableSize() {
		panic(fmt.Errorf("%w: slot %d not in [0, %d)", ErrIndexOutOfRange, i, p.MutableSize()))
	}
}

// Size returns the number of slots.
func (p *Population[C, F]) Size() int {
	return p.size
}

// MutableSize is the number of slots operators may change.
func (p *Population[C, F]) MutableSize() int {
	return p.size - p.elites
}

// Elites returns the number of elite slots.
func (p *Population[C, F]) Elites() int {
	return p.elites
}

// Policy returns when elites are refreshed.
func (p *Population[C, F]) Policy() ElitePolicy {
	return p.policy
}

// FitnessVector returns a snapshot of the current generation's fitness.
func (p *Population[C, F]) FitnessVector() *Vector[F] {
	return VectorOf(p.values)
}

// MostFit returns the best candidate this population has evaluated. The
// candidate is a private copy and must not be modified.
func (p *Population[C, F]) MostFit() (C, F, bool) {
	return p.best, p.bestFitness, p.hasBest
}

// Split returns an uninitialized population with the same configuration,
// split initializer and selection operator, and the same tracker. The fitness
// function is split too when it supports it; otherwise it must be safe for
// concurrent use. Call Init on the result before use.
func (p *Population[C, F]) Split() *Population[C, F] {
	evaluator := p.evaluator
	if s, ok := evaluator.(interface {
		Split() fitness.Function[C, F]
	}); ok {
		evaluator = s.Split()
	}
	return newPopulation(p.size, p.elites, p.policy, p.initial.Split(), evaluator, p.selection.Split(), p.tracker)
}
