package metrics

import "sync"

// DefaultCapacity is the number of points kept per chart.
const DefaultCapacity = 20

// Snapshot is a copy of the store contents. Mutating it never affects the store.
type Snapshot struct {
	TickLabels  []string  `json:"tick_labels"`
	Ticks       []int64   `json:"ticks"`
	Durations   []float64 `json:"durations"`
	PriceLabels []string  `json:"price_labels"`
	Prices      []float64 `json:"prices"`
}

// Store holds bounded rolling histories on two time axes. The tick axis
// (labels, ticks, durations) advances on every fast poll, the price axis
// (labels, prices) on every slow poll. Sequences on one axis always have the
// same length.
type Store struct {
	capacity int

	mu          sync.Mutex
	tickLabels  []string
	ticks       []int64
	durations   []float64
	priceLabels []string
	prices      []float64
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity:    capacity,
		tickLabels:  make([]string, 0, capacity+1),
		ticks:       make([]int64, 0, capacity+1),
		durations:   make([]float64, 0, capacity+1),
		priceLabels: make([]string, 0, capacity+1),
		prices:      make([]float64, 0, capacity+1),
	}
}

func (s *Store) Capacity() int { return s.capacity }

// AppendTick pushes one observation onto the tick axis and evicts the oldest
// point from every tick-axis sequence once the cap is exceeded.
func (s *Store) AppendTick(label string, tick int64, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickLabels = append(s.tickLabels, label)
	s.ticks = append(s.ticks, tick)
	s.durations = append(s.durations, duration)

	if over := len(s.tickLabels) - s.capacity; over > 0 {
		s.tickLabels = trim(s.tickLabels, over)
		s.ticks = trim(s.ticks, over)
		s.durations = trim(s.durations, over)
	}
}

// AppendPrice pushes one observation onto the price axis.
func (s *Store) AppendPrice(label string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceLabels = append(s.priceLabels, label)
	s.prices = append(s.prices, price)

	if over := len(s.priceLabels) - s.capacity; over > 0 {
		s.priceLabels = trim(s.priceLabels, over)
		s.prices = trim(s.prices, over)
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		TickLabels:  append([]string(nil), s.tickLabels...),
		Ticks:       append([]int64(nil), s.ticks...),
		Durations:   append([]float64(nil), s.durations...),
		PriceLabels: append([]string(nil), s.priceLabels...),
		Prices:      append([]float64(nil), s.prices...),
	}
}

// Len reports the tick-axis and price-axis lengths.
func (s *Store) Len() (ticks, prices int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickLabels), len(s.priceLabels)
}

// trim drops n elements from the head, reusing the backing array so the
// buffer does not creep forward in memory.
func trim[T any](xs []T, n int) []T {
	copy(xs, xs[n:])
	return xs[:len(xs)-n]
}
