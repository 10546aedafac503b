package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Solution bounds for linear equations
const (
	linearIntBound    = 20
	linearFracBound   = 30
	linearFracEqBound = 40
)

// LinearEquation is ax + b = cx + d
type LinearEquation struct {
	A, B, C, D rational.Rational
}

// Solve returns x = (d - b) / (a - c). Equal x coefficients yield
// domain.ErrDivisionByZero.
func (e LinearEquation) Solve() (rational.Rational, error) {
	return e.D.Sub(e.B).Div(e.A.Sub(e.C))
}

// Tex renders the equation
func (e LinearEquation) Tex() string {
	return markup.Equation(markup.Linear(e.A, e.B, "x"), markup.Linear(e.C, e.D, "x"))
}

func (e LinearEquation) key() string {
	return fmt.Sprintf("linear:%s,%s,%s,%s", e.A, e.B, e.C, e.D)
}

func withinBound(r rational.Rational, bound int64) bool {
	return r.Abs().Num() <= bound && r.Den() <= bound
}

func generateLinear(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "int", "frac", "both", "frac_eq")
	if err != nil {
		return domain.Problem{}, err
	}
	if mode == "both" {
		mode = sampler.Pick(src, []string{"int", "frac"})
	}

	var p domain.Problem
	switch mode {
	case "int":
		p, err = linearEquation(src, req, func() LinearEquation {
			d := req.Difficulty
			return LinearEquation{
				A: rational.FromInt(src.RandomInt(d)),
				B: rational.FromInt(src.RandomInt(d)),
				C: rational.FromInt(src.RandomInt(d)),
				D: rational.FromInt(src.RandomInt(d)),
			}
		}, linearIntBound)
	case "frac":
		p, err = linearEquation(src, req, func() LinearEquation {
			d := req.Difficulty
			coeffs := []rational.Rational{
				src.RandomFrac(d),
				src.RandomFrac(d),
				src.RandomRational(sampler.KindBoth, d),
				src.RandomRational(sampler.KindBoth, d),
			}
			src.Shuffle(len(coeffs), func(i, j int) { coeffs[i], coeffs[j] = coeffs[j], coeffs[i] })
			return LinearEquation{A: coeffs[0], B: coeffs[1], C: coeffs[2], D: coeffs[3]}
		}, linearFracBound)
	case "frac_eq":
		p, err = fractionalLinear(src, req)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("linear %s: %w", mode, err)
	}
	return stamp(p, Linear, mode, req.Difficulty), nil
}

func linearEquation(src *sampler.Source, req Request, next func() LinearEquation, bound int64) (domain.Problem, error) {
	type draw struct {
		eq  LinearEquation
		sol rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		eq := next()
		sol, err := eq.Solve()
		if err != nil {
			return draw{}, err
		}
		if !withinBound(sol, bound) {
			return draw{}, sampler.Reject("solution %s exceeds %d", sol, bound)
		}
		return draw{eq, sol}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: res.Value.eq.Tex(),
		Answer:  markup.Assign("x", res.Value.sol),
		Key:     res.Value.eq.key(),
	}, nil
}

type fracEqLimits struct {
	denom, coeff, rhs int64
}

var fracEqSettings = map[domain.Difficulty]fracEqLimits{
	domain.DifficultyEasy:   {denom: 6, coeff: 6, rhs: 8},
	domain.DifficultyNormal: {denom: 9, coeff: 9, rhs: 10},
	domain.DifficultyHard:   {denom: 12, coeff: 12, rhs: 15},
}

// fracEqNumerator draws a·x + b over den with a ≠ 0 and gcd(a, b, den) = 1
func fracEqNumerator(src *sampler.Source, lim fracEqLimits, den int64) (int64, int64, error) {
	res, err := sampler.Draw(100, func() ([2]int64, error) {
		a := src.Int(-lim.coeff, lim.coeff)
		b := src.Int(-lim.coeff, lim.coeff)
		if a == 0 || rational.GCD(rational.GCD(a, b), den) != 1 {
			return [2]int64{}, sampler.Reject("numerator %dx%+d shares a factor with %d", a, b, den)
		}
		return [2]int64{a, b}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return res.Value[0], res.Value[1], nil
}

func fractionalLinear(src *sampler.Source, req Request) (domain.Problem, error) {
	lim, ok := fracEqSettings[req.Difficulty]
	if !ok {
		lim = fracEqSettings[domain.DifficultyNormal]
	}

	type draw struct {
		display, key string
		sol          rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		d1 := src.Int(2, lim.denom)
		d2 := src.Int(2, lim.denom)
		if d1 == d2 || rational.GCD(d1, d2) != 1 {
			return draw{}, sampler.Reject("denominators %d and %d not coprime", d1, d2)
		}
		a, b, err := fracEqNumerator(src, lim, d1)
		if err != nil {
			return draw{}, sampler.Reject("first numerator: %v", err)
		}
		c, e, err := fracEqNumerator(src, lim, d2)
		if err != nil {
			return draw{}, sampler.Reject("second numerator: %v", err)
		}
		op := src.Sign()

		var rhs rational.Rational
		if src.Chance(0.5) {
			rhs = src.RandomFrac(req.Difficulty)
		} else {
			rhs = rational.FromInt(src.Int(-lim.rhs, lim.rhs))
		}

		// both fractions over the common denominator d1·d2
		common := d1 * d2
		coeff := rational.MustNew(a*d2+op*c*d1, common)
		constant := rational.MustNew(b*d2+op*e*d1, common)
		sol, err := rhs.Sub(constant).Div(coeff)
		if err != nil {
			return draw{}, err
		}
		if !withinBound(sol, linearFracEqBound) {
			return draw{}, sampler.Reject("solution %s exceeds %d", sol, linearFracEqBound)
		}

		opTex := "+"
		if op < 0 {
			opTex = "-"
		}
		display := fmt.Sprintf("%s %s %s = %s",
			markup.Frac(numeratorTex(a, b), fmt.Sprint(d1)),
			opTex,
			markup.Frac(numeratorTex(c, e), fmt.Sprint(d2)),
			rhs.Tex())
		key := fmt.Sprintf("linear_frac_eq:%d,%d,%d,%d,%d,%d,%d,%s", a, b, d1, op, c, e, d2, rhs)
		return draw{display, key, sol}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: res.Value.display,
		Answer:  markup.Assign("x", res.Value.sol),
		Key:     res.Value.key,
	}, nil
}

// numeratorTex renders a·x+b compactly, as written inside a fraction bar
func numeratorTex(a, b int64) string {
	var terms []markup.Term
	if a != 0 {
		terms = append(terms, markup.IntTerm(a, "x", 1))
	}
	if b != 0 {
		terms = append(terms, markup.IntTerm(b, "x", 0))
	}
	return markup.Compact(terms)
}
