package ga

// Crossover recombines two candidates in place.
type Crossover[C any] interface {
	Cross(first, second C)
	Split() Crossover[C]
}
