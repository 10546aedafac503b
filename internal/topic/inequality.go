package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

const inequalityBound = 99

// Relation is an inequality sign in TeX
type Relation string

const (
	Less         Relation = "<"
	Greater      Relation = ">"
	LessEqual    Relation = `\le`
	GreaterEqual Relation = `\ge`
)

var relations = []Relation{Less, Greater, LessEqual, GreaterEqual}

// Flip returns the relation obtained by multiplying both sides by a negative number
func (r Relation) Flip() Relation {
	switch r {
	case Less:
		return Greater
	case Greater:
		return Less
	case LessEqual:
		return GreaterEqual
	default:
		return LessEqual
	}
}

// Lower reports whether the relation bounds x from below once x is on the left
func (r Relation) Lower() bool {
	return r == Greater || r == GreaterEqual
}

// Inclusive reports whether the bound itself satisfies the relation
func (r Relation) Inclusive() bool {
	return r == LessEqual || r == GreaterEqual
}

// LinearInequality is ax + b REL cx + d
type LinearInequality struct {
	A, B, C, D rational.Rational
	Rel        Relation
}

// Solve isolates x. Equal x coefficients yield domain.ErrDivisionByZero.
func (q LinearInequality) Solve() (rational.Rational, Relation, error) {
	coeff := q.A.Sub(q.C)
	bound, err := q.D.Sub(q.B).Div(coeff)
	if err != nil {
		return rational.Zero, "", err
	}
	if coeff.Sign() < 0 {
		return bound, q.Rel.Flip(), nil
	}
	return bound, q.Rel, nil
}

// Tex renders the inequality
func (q LinearInequality) Tex() string {
	return fmt.Sprintf("%s %s %s", markup.Linear(q.A, q.B, "x"), q.Rel, markup.Linear(q.C, q.D, "x"))
}

func solutionTex(bound rational.Rational, rel Relation) string {
	return fmt.Sprintf("x %s %s", rel, bound.Tex())
}

func generateInequality(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "simple", "standard", "complex", "system", absoluteValue)
	if err != nil {
		return domain.Problem{}, err
	}
	kind := sampler.KindInt
	switch req.Subtype {
	case "":
	case absoluteValue:
		mode = absoluteValue
	default:
		if kind, err = sampler.ParseKind(req.Subtype); err != nil {
			return domain.Problem{}, err
		}
	}
	draw := func() rational.Rational { return src.RandomRational(kind, req.Difficulty) }

	var p domain.Problem
	switch mode {
	case "simple", "standard":
		p, err = linearInequality(src, req, draw, mode == "standard")
	case "complex":
		p, err = bracketedInequality(src, req, draw)
	case "system":
		p, err = inequalitySystem(src, req, draw)
	case absoluteValue:
		p, err = absoluteValueProblem(src, req, draw)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("inequality %s: %w", mode, err)
	}
	return stamp(p, Inequality, mode, req.Difficulty), nil
}

type solvedInequality struct {
	q     LinearInequality
	bound rational.Rational
	rel   Relation
}

func drawInequality(src *sampler.Source, req Request, draw func() rational.Rational, standard bool) (solvedInequality, error) {
	res, err := sampler.Draw(req.attempts(), func() (solvedInequality, error) {
		q := LinearInequality{A: draw(), B: draw(), D: draw(), Rel: sampler.Pick(src, relations)}
		if standard {
			q.C = draw()
		}
		bound, rel, err := q.Solve()
		if err != nil {
			return solvedInequality{}, err
		}
		if !withinBound(bound, inequalityBound) {
			return solvedInequality{}, sampler.Reject("bound %s exceeds %d", bound, inequalityBound)
		}
		return solvedInequality{q, bound, rel}, nil
	})
	return res.Value, err
}

func linearInequality(src *sampler.Source, req Request, draw func() rational.Rational, standard bool) (domain.Problem, error) {
	s, err := drawInequality(src, req, draw, standard)
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: s.q.Tex(),
		Answer:  solutionTex(s.bound, s.rel),
		Key:     fmt.Sprintf("inequality:%v", s.q),
	}, nil
}

// scaled renders k(inner) as a summand, eliding a factor of magnitude 1
func scaled(k rational.Rational, inner string) markup.Term {
	body := "(" + inner + ")"
	if mag := k.Abs(); !mag.Equal(rational.One) {
		body = mag.Tex() + body
	}
	return markup.Term{Neg: k.Sign() < 0, Body: body}
}

// bracketedInequality draws a(bx + c) + d(ex + f) REL g
func bracketedInequality(src *sampler.Source, req Request, draw func() rational.Rational) (domain.Problem, error) {
	type bracketed struct {
		c     [7]rational.Rational
		rel   Relation
		bound rational.Rational
		sol   Relation
	}
	res, err := sampler.Draw(req.attempts(), func() (bracketed, error) {
		var c [7]rational.Rational
		for i := range c {
			c[i] = draw()
		}
		a, b, cc, d, e, f, g := c[0], c[1], c[2], c[3], c[4], c[5], c[6]
		q := LinearInequality{
			A:   a.Mul(b).Add(d.Mul(e)),
			B:   a.Mul(cc).Add(d.Mul(f)),
			D:   g,
			Rel: sampler.Pick(src, relations),
		}
		bound, sol, err := q.Solve()
		if err != nil {
			return bracketed{}, err
		}
		if !withinBound(bound, inequalityBound) {
			return bracketed{}, sampler.Reject("bound %s exceeds %d", bound, inequalityBound)
		}
		return bracketed{c, q.Rel, bound, sol}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	lhs := markup.Sum([]markup.Term{
		scaled(v.c[0], markup.Linear(v.c[1], v.c[2], "x")),
		scaled(v.c[3], markup.Linear(v.c[4], v.c[5], "x")),
	})
	return domain.Problem{
		Display: fmt.Sprintf("%s %s %s", lhs, v.rel, v.c[6].Tex()),
		Answer:  solutionTex(v.bound, v.sol),
		Key:     fmt.Sprintf("inequality_complex:%v,%s", v.c, v.rel),
	}, nil
}

// inequalitySystem draws two simple inequalities whose solution sets meet
// in a bounded interval
func inequalitySystem(src *sampler.Source, req Request, draw func() rational.Rational) (domain.Problem, error) {
	type system struct {
		lower, upper solvedInequality
	}
	res, err := sampler.Draw(req.attempts(), func() (system, error) {
		first, err := drawInequality(src, req, draw, false)
		if err != nil {
			return system{}, err
		}
		second, err := drawInequality(src, req, draw, false)
		if err != nil {
			return system{}, err
		}
		if first.rel.Lower() == second.rel.Lower() {
			return system{}, sampler.Reject("both bounds on the same side")
		}
		lower, upper := first, second
		if !lower.rel.Lower() {
			lower, upper = second, first
		}
		if lower.bound.Cmp(upper.bound) >= 0 {
			return system{}, sampler.Reject("empty interval (%s, %s)", lower.bound, upper.bound)
		}
		return system{lower, upper}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	rel := func(r Relation) Relation {
		if r.Inclusive() {
			return LessEqual
		}
		return Less
	}
	return domain.Problem{
		Display: markup.Cases(v.lower.q.Tex(), v.upper.q.Tex()),
		Answer:  fmt.Sprintf("%s %s x %s %s", v.lower.bound.Tex(), rel(v.lower.rel), rel(v.upper.rel), v.upper.bound.Tex()),
		Key:     fmt.Sprintf("inequality_system:%v|%v", v.lower.q, v.upper.q),
	}, nil
}
