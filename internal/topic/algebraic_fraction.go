package topic

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// LinearFraction is (ax + b) / d
type LinearFraction struct {
	A, B, D int64
}

// Combine returns f ± g over the product of the denominators, reduced by
// the common divisor of all three parts
func (f LinearFraction) Combine(g LinearFraction, plus bool) LinearFraction {
	sign := int64(1)
	if !plus {
		sign = -1
	}
	out := LinearFraction{
		A: f.A*g.D + sign*g.A*f.D,
		B: f.B*g.D + sign*g.B*f.D,
		D: f.D * g.D,
	}
	if gcd := rational.GCD(rational.GCD(out.A, out.B), out.D); gcd > 1 {
		out.A, out.B, out.D = out.A/gcd, out.B/gcd, out.D/gcd
	}
	return out
}

// Tex renders the fraction, or the bare numerator when d is 1
func (f LinearFraction) Tex() string {
	num := markup.Poly(polynomial.Linear(f.A, f.B), "x")
	if f.D == 1 {
		return num
	}
	return markup.Frac(num, strconv.FormatInt(f.D, 10))
}

func generateAlgebraicFraction(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "normal", "hard")
	if err != nil {
		return domain.Problem{}, err
	}
	maxVal := int64(9)
	if mode == "hard" {
		maxVal = 25
	}

	type draw struct {
		f, g, sum LinearFraction
		plus      bool
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		d1, d2, err := src.CoprimePair(2, maxVal, 2, maxVal)
		if err != nil {
			return draw{}, err
		}
		v := draw{
			f:    LinearFraction{A: src.Int(1, maxVal), B: src.Int(-maxVal, maxVal), D: d1},
			g:    LinearFraction{A: src.Int(1, maxVal), B: src.Int(-maxVal, maxVal), D: d2},
			plus: src.Chance(0.5),
		}
		v.sum = v.f.Combine(v.g, v.plus)
		if v.sum.A == 0 && v.sum.B == 0 {
			return draw{}, sampler.Reject("difference is zero")
		}
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, fmt.Errorf("algebraic fraction %s: %w", mode, err)
	}

	v := res.Value
	op := "+"
	if !v.plus {
		op = "-"
	}
	display := fmt.Sprintf("%s %s %s", v.f.Tex(), op, v.g.Tex())
	return stamp(domain.Problem{
		Display: display,
		Answer:  v.sum.Tex(),
		Key:     "algebraic_fraction:" + display,
	}, AlgebraicFraction, mode, req.Difficulty), nil
}
