// Package sampler draws constrained random parameters for problem
// generation: seeded sources, difficulty-scaled ranges, a bounded
// rejection loop and a distribution balancer.
package sampler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

// Source is a seeded pseudo-random source. It is not safe for concurrent
// use; give each goroutine its own.
type Source struct {
	*rand.Rand
	seed int64
}

// NewSource returns a source seeded with seed, or with the clock when seed is 0
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{Rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// InitialSeed returns the seed the source was created with
func (s *Source) InitialSeed() int64 {
	return s.seed
}

// Int returns a uniform integer in [lo, hi]. It panics if lo > hi.
func (s *Source) Int(lo, hi int64) int64 {
	if lo > hi {
		panic(fmt.Sprintf("sampler: empty range [%d, %d]", lo, hi))
	}
	return lo + s.Int63n(hi-lo+1)
}

// NonZero returns a uniform non-zero integer in [lo, hi].
// It panics if the range holds no non-zero value.
func (s *Source) NonZero(lo, hi int64) int64 {
	if lo > hi || (lo == 0 && hi == 0) {
		panic(fmt.Sprintf("sampler: no non-zero value in [%d, %d]", lo, hi))
	}
	for {
		if v := s.Int(lo, hi); v != 0 {
			return v
		}
	}
}

// Sign returns -1 or 1 with equal probability
func (s *Source) Sign() int64 {
	if s.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Chance returns true with probability p
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// Pick returns a uniformly chosen element of xs
func Pick[T any](s *Source, xs []T) T {
	return xs[s.Intn(len(xs))]
}

// CheckRange returns domain.ErrInvalidRange when [lo, hi] is empty
func CheckRange(lo, hi int64) error {
	if lo > hi {
		return fmt.Errorf("range [%d, %d]: %w", lo, hi, domain.ErrInvalidRange)
	}
	return nil
}

// CoprimePair draws a in [aLo, aHi] and b in [bLo, bHi] with gcd(a, b) = 1.
// Ranges that hold no such pair return domain.ErrInvalidRange.
func (s *Source) CoprimePair(aLo, aHi, bLo, bHi int64) (int64, int64, error) {
	if err := CheckRange(aLo, aHi); err != nil {
		return 0, 0, err
	}
	if err := CheckRange(bLo, bHi); err != nil {
		return 0, 0, err
	}

	type pair struct{ a, b int64 }
	var pairs []pair
	for a := aLo; a <= aHi; a++ {
		for b := bLo; b <= bHi; b++ {
			if rational.GCD(a, b) == 1 {
				pairs = append(pairs, pair{a, b})
			}
		}
	}
	if len(pairs) == 0 {
		return 0, 0, fmt.Errorf("no coprime pair in [%d, %d]x[%d, %d]: %w", aLo, aHi, bLo, bHi, domain.ErrInvalidRange)
	}
	p := Pick(s, pairs)
	return p.a, p.b, nil
}
