package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// QuadraticInequality is ax² + bx + c REL 0
type QuadraticInequality struct {
	A, B, C int64
	Rel     Relation
}

// Tex renders the inequality
func (q QuadraticInequality) Tex() string {
	return fmt.Sprintf("%s %s 0", markup.Poly(polynomial.Poly{q.C, q.B, q.A}, "x"), q.Rel)
}

// Solve returns the solution set. Irrational roots yield
// domain.ErrInvalidRange and a = 0 yields domain.ErrDivisionByZero.
func (q QuadraticInequality) Solve() (IntervalSet, error) {
	a, b, c, rel := q.A, q.B, q.C, q.Rel
	if a == 0 {
		return nil, fmt.Errorf("leading coefficient: %w", domain.ErrDivisionByZero)
	}
	if a < 0 {
		a, b, c, rel = -a, -b, -c, rel.Flip()
	}
	// the parabola opens upward from here on
	above, closed := rel.Lower(), rel.Inclusive()

	if b*b-4*a*c < 0 {
		if above {
			return AllReals, nil
		}
		return nil, nil
	}
	roots, err := SolveQuadratic(a, b, c)
	if err != nil {
		return nil, err
	}
	if !roots.Rational() {
		return nil, fmt.Errorf("irrational roots of %s: %w", q.Tex(), domain.ErrInvalidRange)
	}

	if len(roots.Roots) == 1 {
		r := roots.Roots[0]
		switch {
		case above && closed:
			return AllReals, nil
		case above:
			return Outside(r, r, false), nil
		case closed:
			return Point(r), nil
		}
		return nil, nil
	}
	lo, hi := roots.Roots[0], roots.Roots[1]
	if above {
		return Outside(lo, hi, closed), nil
	}
	return Between(lo, hi, closed), nil
}

func generateQuadraticInequality(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "basic", "advanced", "system")
	if err != nil {
		return domain.Problem{}, err
	}

	var p domain.Problem
	switch mode {
	case "basic":
		var q QuadraticInequality
		if q, err = factoredInequality(src, req); err == nil {
			p, err = quadraticInequalityProblem(q)
		}
	case "advanced":
		p, err = quadraticInequalityProblem(degenerateInequality(src))
	case "system":
		p, err = quadraticInequalitySystem(src, req)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("quadratic inequality %s: %w", mode, err)
	}
	return stamp(p, QuadraticInequalities, mode, req.Difficulty), nil
}

func quadraticInequalityProblem(q QuadraticInequality) (domain.Problem, error) {
	set, err := q.Solve()
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: q.Tex(),
		Answer:  set.Tex(),
		Key:     fmt.Sprintf("quad_ineq:%v", q),
	}, nil
}

// factoredInequality draws a(x - r₁)(x - r₂) REL 0 with distinct rational
// roots and clears the denominators of its coefficients
func factoredInequality(src *sampler.Source, req Request) (QuadraticInequality, error) {
	res, err := sampler.Draw(req.attempts(), func() (QuadraticInequality, error) {
		r1 := src.RandomRational(sampler.KindBoth, req.Difficulty)
		r2 := src.RandomRational(sampler.KindBoth, req.Difficulty)
		if r1.Equal(r2) {
			return QuadraticInequality{}, sampler.Reject("double root %s", r1)
		}
		a := rational.FromInt(src.NonZero(-4, 4))
		sum, prod := r1.Add(r2), r1.Mul(r2)
		b, c := a.Mul(sum).Neg(), a.Mul(prod)
		scale := rational.LCM(b.Den(), c.Den())
		return QuadraticInequality{
			A:   a.Num() * scale,
			B:   b.MulInt(scale).Num(),
			C:   c.MulInt(scale).Num(),
			Rel: sampler.Pick(src, relations),
		}, nil
	})
	return res.Value, err
}

// degenerateInequality draws a(x - r)² + k REL 0 with k = 0 or k of the
// sign of a, so the discriminant is zero or negative
func degenerateInequality(src *sampler.Source) QuadraticInequality {
	a, r := src.NonZero(-4, 4), src.NonZero(-5, 5)
	var k int64
	if src.Chance(0.5) {
		k = src.Int(1, 10)
		if a < 0 {
			k = -k
		}
	}
	return QuadraticInequality{
		A:   a,
		B:   -2 * a * r,
		C:   a*r*r + k,
		Rel: sampler.Pick(src, relations),
	}
}

func quadraticInequalitySystem(src *sampler.Source, req Request) (domain.Problem, error) {
	first, err := factoredInequality(src, req)
	if err != nil {
		return domain.Problem{}, err
	}
	second, err := factoredInequality(src, req)
	if err != nil {
		return domain.Problem{}, err
	}
	s1, err := first.Solve()
	if err != nil {
		return domain.Problem{}, err
	}
	s2, err := second.Solve()
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: markup.Cases(first.Tex(), second.Tex()),
		Answer:  s1.Intersect(s2).Tex(),
		Key:     fmt.Sprintf("quad_ineq_system:%v|%v", first, second),
	}, nil
}
