// Package radical simplifies and combines square-root terms c·√r.
package radical

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

// Radical is Coeff·√Radicand with a square-free radicand.
// Radicand 1 is a plain integer and Radicand 0 is zero.
type Radical struct {
	Coeff    int64
	Radicand int64
}

// Simplify factors the largest square out of n: Simplify(72) is 6√2.
func Simplify(n int64) (Radical, error) {
	if n < 0 {
		return Radical{}, fmt.Errorf("square root of %d: %w", n, domain.ErrInvalidRange)
	}
	switch n {
	case 0:
		return Radical{Coeff: 0, Radicand: 0}, nil
	case 1:
		return Radical{Coeff: 1, Radicand: 1}, nil
	}

	coeff, rad := int64(1), n
	for i := int64(2); i*i <= rad; i++ {
		for rad%(i*i) == 0 {
			coeff *= i
			rad /= i * i
		}
	}
	return Radical{Coeff: coeff, Radicand: rad}, nil
}

// Of returns c·√n in simplified form
func Of(c, n int64) (Radical, error) {
	r, err := Simplify(n)
	if err != nil {
		return Radical{}, err
	}
	if r.Radicand == 0 || c == 0 {
		return Radical{}, nil
	}
	r.Coeff *= c
	return r, nil
}

// IsZero reports whether the term is 0
func (r Radical) IsZero() bool {
	return r.Coeff == 0 || r.Radicand == 0
}

// IsRational reports whether the term has no root left
func (r Radical) IsRational() bool {
	return r.IsZero() || r.Radicand == 1
}

// Mul returns the simplified product of two terms
func (r Radical) Mul(o Radical) Radical {
	if r.IsZero() || o.IsZero() {
		return Radical{}
	}
	p, _ := Of(r.Coeff*o.Coeff, r.Radicand*o.Radicand)
	return p
}

// Neg returns -r
func (r Radical) Neg() Radical {
	return Radical{Coeff: -r.Coeff, Radicand: r.Radicand}
}

// String renders the term as plain text
func (r Radical) String() string {
	switch {
	case r.IsZero():
		return "0"
	case r.Radicand == 1:
		return fmt.Sprintf("%d", r.Coeff)
	}
	return fmt.Sprintf("%d√%d", r.Coeff, r.Radicand)
}

// Tex renders c√r: the integer alone when r is 1, the bare root with its
// sign when |c| is 1, and "0" for a zero coefficient or radicand.
func (r Radical) Tex() string {
	return Format(r.Coeff, r.Radicand)
}

// Format renders c√r without simplifying
func Format(c, r int64) string {
	switch {
	case c == 0 || r == 0:
		return "0"
	case r == 1:
		return fmt.Sprintf("%d", c)
	case c == 1:
		return fmt.Sprintf(`\sqrt{%d}`, r)
	case c == -1:
		return fmt.Sprintf(`-\sqrt{%d}`, r)
	}
	return fmt.Sprintf(`%d\sqrt{%d}`, c, r)
}

// CombineLikeTerms simplifies every term, sums coefficients of equal
// radicands and drops zero results. Output is ordered by ascending radicand.
func CombineLikeTerms(terms []Radical) []Radical {
	sums := make(map[int64]int64)
	for _, t := range terms {
		s, err := Of(t.Coeff, t.Radicand)
		if err != nil || s.IsZero() {
			continue
		}
		sums[s.Radicand] += s.Coeff
	}

	out := make([]Radical, 0, len(sums))
	for rad, c := range sums {
		if c != 0 {
			out = append(out, Radical{Coeff: c, Radicand: rad})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Radicand < out[j].Radicand })
	return out
}
