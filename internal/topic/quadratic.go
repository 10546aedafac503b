package topic

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// distinctRootsProbability is the chance the two drawn roots are forced apart
const distinctRootsProbability = 0.7

// QuadraticRoots are the real roots of ax² + bx + c = 0. Rational roots
// are listed in Roots (ascending, one entry for a double root). Otherwise
// the roots are (P ± Q√R) / S with R square-free and S > 0.
type QuadraticRoots struct {
	Roots      []rational.Rational
	P, Q, R, S int64
}

// Rational reports whether the roots are rational
func (q QuadraticRoots) Rational() bool {
	return len(q.Roots) > 0
}

// Tex renders the answer
func (q QuadraticRoots) Tex() string {
	switch len(q.Roots) {
	case 1:
		return markup.Assign("x", q.Roots[0]) + ` \text{ (double root)}`
	case 2:
		return fmt.Sprintf("x = %s, %s", q.Roots[0].Tex(), q.Roots[1].Tex())
	}

	root := radical.Format(q.Q, q.R)
	num := `\pm ` + root
	if q.P != 0 {
		num = strconv.FormatInt(q.P, 10) + ` \pm ` + root
	}
	if q.S == 1 {
		return "x = " + num
	}
	return "x = " + markup.Frac(num, strconv.FormatInt(q.S, 10))
}

// SolveQuadratic solves ax² + bx + c = 0 exactly with the integer square
// root of the discriminant. a = 0 yields domain.ErrDivisionByZero and a
// negative discriminant domain.ErrInvalidRange.
func SolveQuadratic(a, b, c int64) (QuadraticRoots, error) {
	if a == 0 {
		return QuadraticRoots{}, fmt.Errorf("leading coefficient: %w", domain.ErrDivisionByZero)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return QuadraticRoots{}, fmt.Errorf("discriminant %d has no real root: %w", disc, domain.ErrInvalidRange)
	}

	if radical.IsPerfectSquare(disc) {
		s := radical.Isqrt(disc)
		r1 := rational.MustNew(-b-s, 2*a)
		r2 := rational.MustNew(-b+s, 2*a)
		if r1.Cmp(r2) > 0 {
			r1, r2 = r2, r1
		}
		if r1.Equal(r2) {
			return QuadraticRoots{Roots: []rational.Rational{r1}}, nil
		}
		return QuadraticRoots{Roots: []rational.Rational{r1, r2}}, nil
	}

	root, err := radical.Simplify(disc)
	if err != nil {
		return QuadraticRoots{}, err
	}
	p, q, s := -b, root.Coeff, 2*a
	if s < 0 {
		p, s = -p, -s
	}
	g := rational.GCD(rational.GCD(p, q), s)
	return QuadraticRoots{P: p / g, Q: q / g, R: root.Radicand, S: s / g}, nil
}

func generateQuadratic(src *sampler.Source, req Request) (domain.Problem, error) {
	if req.Subtype == "formula" || req.Mode == "formula" {
		p, err := quadraticByFormula(src, req)
		if err != nil {
			return domain.Problem{}, fmt.Errorf("quadratic formula: %w", err)
		}
		return stamp(p, Quadratic, "formula", req.Difficulty), nil
	}

	mode, err := pickMode(src, req.Mode, "int", "frac", "both")
	if err != nil {
		return domain.Problem{}, err
	}
	kind, err := sampler.ParseKind(mode)
	if err != nil {
		return domain.Problem{}, err
	}

	type draw struct {
		poly  polynomial.Poly
		roots []rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		x1 := src.RandomRational(kind, req.Difficulty)
		x2 := src.RandomRational(kind, req.Difficulty)
		if src.Chance(distinctRootsProbability) && x1.Equal(x2) {
			return draw{}, sampler.Reject("equal roots %s", x1)
		}
		a := src.Int(-3, 3)
		if a == 0 {
			a = 1
		}

		// a(x - x1)(x - x2) with denominators cleared
		sum, prod := x1.Add(x2), x1.Mul(x2)
		scale := rational.LCM(sum.Den(), prod.Den())
		poly := polynomial.Poly{
			prod.MulInt(a * scale).Num(),
			sum.Neg().MulInt(a * scale).Num(),
			a * scale,
		}

		roots := []rational.Rational{x1}
		if !x1.Equal(x2) {
			if x1.Cmp(x2) > 0 {
				roots = []rational.Rational{x2, x1}
			} else {
				roots = []rational.Rational{x1, x2}
			}
		}
		return draw{poly, roots}, nil
	})
	if err != nil {
		return domain.Problem{}, fmt.Errorf("quadratic %s: %w", mode, err)
	}

	answer := QuadraticRoots{Roots: res.Value.roots}
	return stamp(domain.Problem{
		Display: markup.Equation(markup.Poly(res.Value.poly, "x"), "0"),
		Answer:  answer.Tex(),
		Key:     "quadratic:" + res.Value.poly.Key(),
	}, Quadratic, mode, req.Difficulty), nil
}

func quadraticByFormula(src *sampler.Source, req Request) (domain.Problem, error) {
	type draw struct {
		poly  polynomial.Poly
		roots QuadraticRoots
	}
	limit := sampler.LimitsFor(req.Difficulty).IntMax
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		a := src.NonZero(-3, 3)
		b := src.Int(-limit, limit)
		c := src.NonZero(-limit, limit)
		if rational.GCD(rational.GCD(a, b), c) != 1 {
			return draw{}, sampler.Reject("coefficients share a factor")
		}
		roots, err := SolveQuadratic(a, b, c)
		if err != nil {
			return draw{}, sampler.Reject("%v", err)
		}
		return draw{polynomial.Poly{c, b, a}, roots}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: markup.Equation(markup.Poly(res.Value.poly, "x"), "0"),
		Answer:  res.Value.roots.Tex(),
		Key:     "quadratic_formula:" + res.Value.poly.Key(),
	}, nil
}
