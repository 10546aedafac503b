package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Maximum polynomial degrees per calculus mode
const (
	diffMaxDegree     = 5
	integralMaxDegree = 3
	limitMaxDegree    = 3
)

// directLimitCount is how many problems of a batch use direct substitution
// before switching to the removable 0/0 form
const directLimitCount = 4

func generateCalculus(src *sampler.Source, req Request) (domain.Problem, error) {
	mode := req.Mode
	if req.Subtype != "" && req.Subtype != "direct" && req.Subtype != "removable" {
		mode = req.Subtype
	}
	mode, err := pickMode(src, mode, "diff", "indef_integ", "def_integ", "limit")
	if err != nil {
		return domain.Problem{}, err
	}

	draw := func() int64 { return src.RandomInt(req.Difficulty) }
	var p domain.Problem
	switch mode {
	case "diff":
		p, err = derivativeProblem(src, draw)
	case "indef_integ":
		p, err = indefiniteIntegralProblem(src, draw)
	case "def_integ":
		p, err = definiteIntegralProblem(src, draw)
	case "limit":
		removable := req.Subtype == "removable" || (req.Subtype != "direct" && req.Index >= directLimitCount)
		if removable {
			p, err = removableLimitProblem(src, req, draw)
		} else {
			p, err = directLimitProblem(src, draw)
		}
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("calculus %s: %w", mode, err)
	}
	return stamp(p, Calculus, mode, req.Difficulty), nil
}

func derivativeProblem(src *sampler.Source, draw func() int64) (domain.Problem, error) {
	f, err := polynomial.Random(src, diffMaxDegree, draw)
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: "f(x) = " + markup.Poly(f, "x"),
		Answer:  "f'(x) = " + markup.Poly(f.Differentiate(), "x"),
		Key:     "diff:" + f.Key(),
	}, nil
}

func indefiniteIntegralProblem(src *sampler.Source, draw func() int64) (domain.Problem, error) {
	f, err := polynomial.Random(src, integralMaxDegree, draw)
	if err != nil {
		return domain.Problem{}, err
	}
	return domain.Problem{
		Display: fmt.Sprintf(`\int \left( %s \right) dx`, markup.Poly(f, "x")),
		Answer:  markup.Antiderivative(f.Integrate(), "x"),
		Key:     "indef_integ:" + f.Key(),
	}, nil
}

// DefiniteIntegral returns F(b) - F(a) for an antiderivative F of f
func DefiniteIntegral(f polynomial.Poly, a, b int64) rational.Rational {
	F := f.Integrate()
	return F.Eval(rational.FromInt(b)).Sub(F.Eval(rational.FromInt(a)))
}

// integralBounds draws a < b from [-3, 3]
func integralBounds(src *sampler.Source) (int64, int64) {
	a := src.Int(-3, 3)
	b := src.Int(-3, 2)
	if b >= a {
		b++
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}

func definiteIntegralProblem(src *sampler.Source, draw func() int64) (domain.Problem, error) {
	f, err := polynomial.Random(src, integralMaxDegree, draw)
	if err != nil {
		return domain.Problem{}, err
	}
	a, b := integralBounds(src)
	return domain.Problem{
		Display: fmt.Sprintf(`\int_{%d}^{%d} \left( %s \right) dx`, a, b, markup.Poly(f, "x")),
		Answer:  DefiniteIntegral(f, a, b).Tex(),
		Key:     fmt.Sprintf("def_integ:%d,%d:%s", a, b, f.Key()),
	}, nil
}

func directLimitProblem(src *sampler.Source, draw func() int64) (domain.Problem, error) {
	f, err := polynomial.Random(src, limitMaxDegree, draw)
	if err != nil {
		return domain.Problem{}, err
	}
	at := src.Int(-4, 4)
	return domain.Problem{
		Display: fmt.Sprintf(`\lim_{x \to %d} \left( %s \right)`, at, markup.Poly(f, "x")),
		Answer:  fmt.Sprint(f.Eval(at)),
		Key:     fmt.Sprintf("limit:%d:%s", at, f.Key()),
	}, nil
}

// RemovableLimit returns lim_{x→r} N(x)(x-r) / D(x)(x-r) = N(r)/D(r).
// D(r) = 0 yields domain.ErrDivisionByZero.
func RemovableLimit(n, d polynomial.Poly, r int64) (rational.Rational, error) {
	return rational.New(n.Eval(r), d.Eval(r))
}

func removableLimitProblem(src *sampler.Source, req Request, draw func() int64) (domain.Problem, error) {
	type limitDraw struct {
		num, den polynomial.Poly
		root     int64
		value    rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (limitDraw, error) {
		root := src.Int(-4, 4)
		n, err := polynomial.Random(src, 1, draw)
		if err != nil {
			return limitDraw{}, err
		}
		d, err := polynomial.Random(src, 1, draw)
		if err != nil {
			return limitDraw{}, err
		}
		value, err := RemovableLimit(n, d, root)
		if err != nil {
			return limitDraw{}, err
		}
		factor := polynomial.Linear(1, -root)
		return limitDraw{n.Mul(factor), d.Mul(factor), root, value}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	return domain.Problem{
		Display: fmt.Sprintf(`\lim_{x \to %d} %s`, v.root, markup.Frac(markup.Poly(v.num, "x"), markup.Poly(v.den, "x"))),
		Answer:  v.value.Tex(),
		Key:     fmt.Sprintf("limit0:%d:%s/%s", v.root, v.num.Key(), v.den.Key()),
	}, nil
}
