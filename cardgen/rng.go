package cardgen

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform integers in [0, n). n is always > 0.
type RandomSource interface {
	IntN(n int) int
}

// runtime source: the math/rand/v2 top-level functions are goroutine safe
// and seeded from the OS.
type runtimeRNG struct{}

func (runtimeRNG) IntN(n int) int { return rand.IntN(n) }

// DefaultSource is used when no source is configured.
func DefaultSource() RandomSource { return runtimeRNG{} }

// Replicable source for tests and simulations.
type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededSource returns a deterministic source. It is safe to share
// between goroutines, but the sequence is then interleaving dependent.
func NewSeededSource(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
