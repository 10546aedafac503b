package topic

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Factoring shapes: (x+p)^2, (x+p)(x-p), (x+p)(x+q), k(x+p)(x+q),
// (ax+b)(cx+d) and (ax+b)^2
const (
	shapeSquare         = "square"
	shapeDiffSquares    = "diff_squares"
	shapeMonic          = "monic"
	shapeCommonFactor   = "common_factor"
	shapeNonMonic       = "non_monic"
	shapeNonMonicSquare = "non_monic_square"
)

// Factored is a product k(ax+b)(cx+d) with its expansion
type Factored struct {
	K, A, B, C, D int64
}

// FactorPair returns (ax+b)(cx+d)
func FactorPair(a, b, c, d int64) Factored {
	return Factored{K: 1, A: a, B: b, C: c, D: d}
}

// Expand multiplies the factors out
func (f Factored) Expand() polynomial.Poly {
	k := f.K
	if k == 0 {
		k = 1
	}
	return polynomial.Linear(f.A, f.B).Mul(polynomial.Linear(f.C, f.D)).Scale(k)
}

// Square reports whether both factors are equal
func (f Factored) Square() bool {
	return f.A == f.C && f.B == f.D
}

// Tex renders the factored form. Equal factors collapse to a square with a
// positive leading coefficient.
func (f Factored) Tex() string {
	prefix := ""
	if f.K != 0 && f.K != 1 {
		prefix = strconv.FormatInt(f.K, 10)
	}
	if f.Square() {
		a, b := f.A, f.B
		if a < 0 {
			a, b = -a, -b
		}
		return prefix + markup.Squared(markup.LinearFactor(a, b, "x"))
	}
	return prefix + markup.Product(markup.LinearFactor(f.A, f.B, "x"), markup.LinearFactor(f.C, f.D, "x"))
}

type factoringLimits struct {
	constant, coeff int64
}

func factoringLimitsFor(d domain.Difficulty) factoringLimits {
	return factoringLimits{
		constant: sampler.ByLevel[int64](d, 5, 9, 12),
		coeff:    sampler.ByLevel[int64](d, 2, 3, 4),
	}
}

func factoringShape(src *sampler.Source, mode string, index int) (string, error) {
	switch mode {
	case "x_coeff_1":
		return shapeMonic, nil
	case "comp_square_diff":
		if index%2 == 0 {
			return sampler.Pick(src, []string{shapeSquare, shapeSquare, shapeNonMonicSquare}), nil
		}
		return shapeDiffSquares, nil
	case "int":
		return sampler.Pick(src, []string{shapeSquare, shapeDiffSquares, shapeMonic}), nil
	case "x_coeff_not_1":
		return shapeNonMonic, nil
	case "", ModeAll:
		if src.Chance(0.5) {
			return sampler.Pick(src, []string{shapeNonMonic, shapeNonMonicSquare}), nil
		}
		return sampler.Pick(src, []string{shapeSquare, shapeDiffSquares, shapeMonic, shapeCommonFactor}), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

func generateFactoring(src *sampler.Source, req Request) (domain.Problem, error) {
	shape, err := factoringShape(src, req.Mode, req.Index)
	if err != nil {
		return domain.Problem{}, err
	}
	lim := factoringLimitsFor(req.Difficulty)

	res, err := sampler.Draw(req.attempts(), func() (Factored, error) {
		return drawFactored(src, shape, lim)
	})
	if err != nil {
		return domain.Problem{}, fmt.Errorf("factoring %s: %w", shape, err)
	}

	f := res.Value
	expanded := markup.Poly(f.Expand(), "x")
	factored := f.Tex()
	p := domain.Problem{Display: expanded, Answer: factored, Key: "factoring:" + f.Expand().Key()}
	if req.Subtype == "expand" {
		p.Display, p.Answer = factored, expanded
		p.Key = "expand:" + f.Expand().Key()
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeAll
	}
	return stamp(p, Factoring, mode, req.Difficulty), nil
}

func drawFactored(src *sampler.Source, shape string, lim factoringLimits) (Factored, error) {
	signed := func(v int64) int64 { return v * src.Sign() }

	switch shape {
	case shapeSquare:
		p := signed(src.Int(1, lim.constant))
		return FactorPair(1, p, 1, p), nil
	case shapeDiffSquares:
		p := src.Int(1, lim.constant)
		return FactorPair(1, p, 1, -p), nil
	case shapeMonic:
		return FactorPair(1, signed(src.Int(1, lim.constant)), 1, signed(src.Int(1, lim.constant))), nil
	case shapeCommonFactor:
		f := FactorPair(1, signed(src.Int(1, lim.constant)), 1, signed(src.Int(1, lim.constant)))
		f.K = src.Int(2, 3)
		return f, nil
	}

	a, b, err := src.CoprimePair(2, lim.coeff, 1, lim.constant)
	if err != nil {
		return Factored{}, err
	}
	if shape == shapeNonMonicSquare {
		a, b = signed(a), signed(b)
		if a < 0 {
			a, b = -a, -b
		}
		return FactorPair(a, b, a, b), nil
	}

	c, d, err := src.CoprimePair(2, lim.coeff, 1, lim.constant)
	if err != nil {
		return Factored{}, err
	}
	if a == c && b == d {
		return Factored{}, sampler.Reject("identical factors (%dx+%d)", a, b)
	}
	return FactorPair(signed(a), signed(b), signed(c), signed(d)), nil
}
