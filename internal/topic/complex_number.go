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

// Complex is Re + Im·i with integer parts
type Complex struct {
	Re, Im int64
}

// Mul returns z·w
func (z Complex) Mul(w Complex) Complex {
	return Complex{Re: z.Re*w.Re - z.Im*w.Im, Im: z.Re*w.Im + z.Im*w.Re}
}

// Tex renders the number, dropping a zero part
func (z Complex) Tex() string {
	var terms []markup.Term
	if z.Re != 0 {
		terms = append(terms, markup.IntTerm(z.Re, "", 0))
	}
	if z.Im != 0 {
		terms = append(terms, markup.IntTerm(z.Im, "i", 1))
	}
	return markup.Sum(terms)
}

// ComplexRoots are the roots (P ± Q√R·i) / S of a quadratic with a
// negative discriminant, reduced so that gcd(P, Q, S) = 1 and S > 0
type ComplexRoots struct {
	P, Q, R, S int64
}

// SolveComplexQuadratic solves ax² + bx + c = 0 for b² - 4ac < 0. A
// non-negative discriminant yields domain.ErrInvalidRange.
func SolveComplexQuadratic(a, b, c int64) (ComplexRoots, error) {
	if a == 0 {
		return ComplexRoots{}, fmt.Errorf("leading coefficient: %w", domain.ErrDivisionByZero)
	}
	disc := b*b - 4*a*c
	if disc >= 0 {
		return ComplexRoots{}, fmt.Errorf("discriminant %d has real roots: %w", disc, domain.ErrInvalidRange)
	}
	root, err := radical.Simplify(-disc)
	if err != nil {
		return ComplexRoots{}, err
	}
	p, q, s := -b, root.Coeff, 2*a
	if s < 0 {
		p, s = -p, -s
	}
	g := rational.GCD(rational.GCD(p, q), s)
	return ComplexRoots{P: p / g, Q: q / g, R: root.Radicand, S: s / g}, nil
}

// Tex renders the answer
func (r ComplexRoots) Tex() string {
	imag := radical.Format(r.Q, r.R) + "i"
	if r.R == 1 && r.Q == 1 {
		imag = "i"
	}
	num := `\pm ` + imag
	if r.P != 0 {
		num = strconv.FormatInt(r.P, 10) + ` \pm ` + imag
	}
	if r.S == 1 {
		return "x = " + num
	}
	return "x = " + markup.Frac(num, strconv.FormatInt(r.S, 10))
}

func generateComplexNumber(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "expansion", "quadratic")
	if err != nil {
		return domain.Problem{}, err
	}
	maxVal := sampler.ByLevel[int64](req.Difficulty, 5, 9, 12)

	var p domain.Problem
	switch mode {
	case "expansion":
		z := Complex{src.NonZero(-maxVal, maxVal), src.NonZero(-maxVal, maxVal)}
		w := Complex{src.NonZero(-maxVal, maxVal), src.NonZero(-maxVal, maxVal)}
		display := fmt.Sprintf("(%s)(%s)", z.Tex(), w.Tex())
		p = domain.Problem{
			Display: display,
			Answer:  z.Mul(w).Tex(),
			Key:     "complex_expansion:" + display,
		}
	case "quadratic":
		type draw struct {
			poly  polynomial.Poly
			roots ComplexRoots
		}
		var res sampler.Result[draw]
		res, err = sampler.Draw(req.attempts(), func() (draw, error) {
			a, b, c := src.NonZero(-maxVal, maxVal), src.NonZero(-maxVal, maxVal), src.NonZero(-maxVal, maxVal)
			if b*b-4*a*c >= 0 {
				return draw{}, sampler.Reject("real roots")
			}
			roots, err := SolveComplexQuadratic(a, b, c)
			if err != nil {
				return draw{}, err
			}
			return draw{polynomial.Poly{c, b, a}, roots}, nil
		})
		if err != nil {
			break
		}
		display := markup.Equation(markup.Poly(res.Value.poly, "x"), "0")
		p = domain.Problem{
			Display: display,
			Answer:  res.Value.roots.Tex(),
			Key:     "complex_quadratic:" + display,
		}
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("complex number %s: %w", mode, err)
	}
	return stamp(p, ComplexNumber, mode, req.Difficulty), nil
}
