// Package polynomial implements dense single-variable polynomials with
// integer or rational coefficients. Index i holds the coefficient of x^i.
// No operation mutates its receiver or arguments.
package polynomial

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

// Rand is the subset of *rand.Rand needed to draw polynomials
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// ZeroCoefficientProbability is the chance a non-leading coefficient is 0
const ZeroCoefficientProbability = 0.3

const maxLeadingRedraws = 100

// Poly is an integer-coefficient polynomial
type Poly []int64

// Linear returns a·x + b
func Linear(a, b int64) Poly {
	return Poly{b, a}
}

// Random draws a polynomial whose degree is uniform in [1, maxDegree].
// Non-leading coefficients are 0 with ZeroCoefficientProbability, otherwise
// taken from draw. A zero leading coefficient is redrawn.
func Random(r Rand, maxDegree int, draw func() int64) (Poly, error) {
	if maxDegree < 1 {
		return nil, fmt.Errorf("max degree %d: %w", maxDegree, domain.ErrInvalidRange)
	}
	deg := 1 + r.Intn(maxDegree)
	p := make(Poly, deg+1)
	for i := 0; i < deg; i++ {
		if r.Float64() < ZeroCoefficientProbability {
			continue
		}
		p[i] = draw()
	}
	for attempt := 0; p[deg] == 0; attempt++ {
		if attempt == maxLeadingRedraws {
			return nil, fmt.Errorf("leading coefficient stayed zero: %w", domain.ErrGenerationExhausted)
		}
		p[deg] = draw()
	}
	return p, nil
}

// Degree returns the index of the highest non-zero coefficient, -1 for 0
func (p Poly) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

// Trim drops trailing zero coefficients
func (p Poly) Trim() Poly {
	return append(Poly(nil), p[:p.Degree()+1]...)
}

// Leading returns the highest non-zero coefficient
func (p Poly) Leading() int64 {
	if d := p.Degree(); d >= 0 {
		return p[d]
	}
	return 0
}

// Equal compares coefficients ignoring trailing zeros
func (p Poly) Equal(q Poly) bool {
	a, b := p.Trim(), q.Trim()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Add returns p + q
func (p Poly) Add(q Poly) Poly {
	n := max(len(p), len(q))
	out := make(Poly, n)
	for i := range out {
		if i < len(p) {
			out[i] += p[i]
		}
		if i < len(q) {
			out[i] += q[i]
		}
	}
	return out
}

// Scale returns k·p
func (p Poly) Scale(k int64) Poly {
	out := make(Poly, len(p))
	for i, c := range p {
		out[i] = c * k
	}
	return out
}

// Mul returns the product p·q, of length len(p)+len(q)-1
func (p Poly) Mul(q Poly) Poly {
	if len(p) == 0 || len(q) == 0 {
		return Poly{}
	}
	out := make(Poly, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

// Differentiate returns p'. The constant term is dropped.
func (p Poly) Differentiate() Poly {
	if len(p) <= 1 {
		return Poly{0}
	}
	out := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = p[i] * int64(i)
	}
	return out
}

// Integrate returns an antiderivative. Index 0 is the arbitrary constant,
// left as zero and rendered as "+ C" by the markup package.
func (p Poly) Integrate() RatPoly {
	out := make(RatPoly, len(p)+1)
	out[0] = rational.Zero
	for i, c := range p {
		out[i+1] = rational.MustNew(c, int64(i+1))
	}
	return out
}

// Eval evaluates p at x by Horner's rule
func (p Poly) Eval(x int64) int64 {
	var acc int64
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*x + p[i]
	}
	return acc
}

// EvalRat evaluates p at a rational point exactly
func (p Poly) EvalRat(x rational.Rational) rational.Rational {
	acc := rational.Zero
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(rational.FromInt(p[i]))
	}
	return acc
}

// Rat converts p to rational coefficients
func (p Poly) Rat() RatPoly {
	out := make(RatPoly, len(p))
	for i, c := range p {
		out[i] = rational.FromInt(c)
	}
	return out
}

// Key is a canonical encoding used to compare problems structurally
func (p Poly) Key() string {
	parts := make([]string, 0, len(p))
	for _, c := range p.Trim() {
		parts = append(parts, fmt.Sprint(c))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RatPoly is a polynomial with rational coefficients
type RatPoly []rational.Rational

// Degree returns the index of the highest non-zero coefficient, -1 for 0
func (p RatPoly) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return -1
}

// Eval evaluates p at x exactly
func (p RatPoly) Eval(x rational.Rational) rational.Rational {
	acc := rational.Zero
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p[i])
	}
	return acc
}

// Differentiate returns p'
func (p RatPoly) Differentiate() RatPoly {
	if len(p) <= 1 {
		return RatPoly{rational.Zero}
	}
	out := make(RatPoly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = p[i].MulInt(int64(i))
	}
	return out
}

// Equal compares coefficients ignoring trailing zeros
func (p RatPoly) Equal(q RatPoly) bool {
	n := max(len(p), len(q))
	for i := 0; i < n; i++ {
		a, b := rational.Zero, rational.Zero
		if i < len(p) {
			a = p[i]
		}
		if i < len(q) {
			b = q[i]
		}
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// Key is a canonical encoding used to compare problems structurally
func (p RatPoly) Key() string {
	parts := make([]string, 0, len(p))
	for _, c := range p[:p.Degree()+1] {
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}
