package ga

import "math/rand/v2"

type member struct {
	id  int
	ctl Control
}

func (m *member) Copy() *member {
	c := *m
	return &c
}

func (m *member) Control() *Control {
	return &m.ctl
}

type seqInit struct {
	next int
	ctl  Control
}

func (s *seqInit) CreateCandidateSolution() *member {
	s.next++
	return &member{id: s.next, ctl: s.ctl}
}

func (s *seqInit) Split() Initializer[*member] {
	return &seqInit{next: s.next + 1000, ctl: s.ctl}
}

// idFitness scores a member as id + offset and counts evaluations.
type idFitness struct {
	offset int
	calls  int
}

func (f *idFitness) Fitness(m *member) int {
	f.calls++
	return m.id + f.offset
}

type realIDFitness struct{}

func (realIDFitness) Fitness(m *member) float64 {
	return float64(m.id) / 2
}

type stepMutation struct {
	step  int
	calls int
}

func (m *stepMutation) Mutate(c *member) {
	m.calls++
	c.id += m.step
}

func (m *stepMutation) Split() Mutation[*member] {
	return &stepMutation{step: m.step}
}

type randomMutation struct {
	rng *rand.Rand
}

func (m *randomMutation) Mutate(c *member) {
	c.id = m.rng.IntN(200)
}

func (m *randomMutation) Split() Mutation[*member] {
	return &randomMutation{rng: SplitRand(m.rng)}
}

type swapCrossover struct {
	calls int
}

func (x *swapCrossover) Cross(a, b *member) {
	x.calls++
	a.id, b.id = b.id, a.id
}

func (x *swapCrossover) Split() Crossover[*member] {
	return &swapCrossover{}
}

// fixedSelection always picks the same index.
type fixedSelection struct {
	index int
	inits []int
}

func (s *fixedSelection) SelectReal(_ *RealVector, selected []int) { s.fill(selected) }
func (s *fixedSelection) SelectInt(_ *IntVector, selected []int)   { s.fill(selected) }

func (s *fixedSelection) fill(selected []int) {
	for i := range selected {
		selected[i] = s.index
	}
}

func (s *fixedSelection) Init(generations int) {
	s.inits = append(s.inits, generations)
}

func (s *fixedSelection) Split() Selection {
	return &fixedSelection{index: s.index}
}

// sliceGeneration is a Generation over a plain slice that records updates.
type sliceGeneration struct {
	members []*member
	updates map[int]int
}

func newSliceGeneration(n int, ctl Control) *sliceGeneration {
	g := &sliceGeneration{updates: make(map[int]int)}
	for i := 0; i < n; i++ {
		g.members = append(g.members, &member{id: i, ctl: ctl})
	}
	return g
}

func (g *sliceGeneration) MutableSize() int    { return len(g.members) }
func (g *sliceGeneration) Get(i int) *member   { return g.members[i] }
func (g *sliceGeneration) UpdateFitness(i int) { g.updates[i]++ }
