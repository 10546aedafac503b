package sampler

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

// Limits are the draw bounds for one difficulty level
type Limits struct {
	IntMax     int64 // integers are non-zero in [-IntMax, IntMax]
	FracDenMax int64 // denominators are in [2, FracDenMax]
	FracNumMax int64 // numerators are non-zero in [-FracNumMax, FracNumMax]
}

var limits = map[domain.Difficulty]Limits{
	domain.DifficultyEasy:   {IntMax: 5, FracDenMax: 5, FracNumMax: 10},
	domain.DifficultyNormal: {IntMax: 9, FracDenMax: 8, FracNumMax: 15},
	domain.DifficultyHard:   {IntMax: 12, FracDenMax: 12, FracNumMax: 20},
}

// LimitsFor returns the bounds for d, falling back to normal
func LimitsFor(d domain.Difficulty) Limits {
	if l, ok := limits[d]; ok {
		return l
	}
	return limits[domain.DifficultyNormal]
}

// ByLevel picks one of three values by difficulty (easy, normal, hard)
func ByLevel[T any](d domain.Difficulty, easy, normal, hard T) T {
	switch d {
	case domain.DifficultyEasy:
		return easy
	case domain.DifficultyHard:
		return hard
	default:
		return normal
	}
}

// RandomInt draws a non-zero integer scaled by difficulty
func (s *Source) RandomInt(d domain.Difficulty) int64 {
	l := LimitsFor(d)
	return s.NonZero(-l.IntMax, l.IntMax)
}

// RandomFrac draws a reduced fraction with a denominator of at least 2
// before reduction, scaled by difficulty
func (s *Source) RandomFrac(d domain.Difficulty) rational.Rational {
	l := LimitsFor(d)
	den := s.Int(2, l.FracDenMax)
	num := s.NonZero(-l.FracNumMax, l.FracNumMax)
	return rational.MustNew(num, den)
}

// Kind selects integer or fractional draws
type Kind string

const (
	KindInt  Kind = "int"
	KindFrac Kind = "frac"
	KindBoth Kind = "both"
)

// ParseKind maps a mode name onto a Kind
func ParseKind(mode string) (Kind, error) {
	switch k := Kind(mode); k {
	case KindInt, KindFrac, KindBoth:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

// RandomRational draws an integer, a fraction or, for KindBoth, either one
func (s *Source) RandomRational(k Kind, d domain.Difficulty) rational.Rational {
	if k == KindBoth {
		k = Pick(s, []Kind{KindInt, KindFrac})
	}
	if k == KindFrac {
		return s.RandomFrac(d)
	}
	return rational.FromInt(s.RandomInt(d))
}
