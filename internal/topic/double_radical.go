package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Bounds for √(x ± 2√y) with x = a+b and y = ab
const (
	doubleRadicalSumMax     = 20
	doubleRadicalProductMax = 20
	halvedSumMax            = 40
)

// Denest returns the markup of √a ± √b with both roots simplified
func Denest(a, b int64, plus bool) string {
	ra, _ := radical.Simplify(a)
	rb, _ := radical.Simplify(b)
	if !plus {
		rb = rb.Neg()
	}
	return markup.Sum([]markup.Term{markup.RadicalTerm(ra), markup.RadicalTerm(rb)})
}

// DenestHalved returns the markup of (√(2a) ± √(2b))/2, the value of
// √((a+b)/2 ± √(ab)). Even coefficients are halved in place of the
// fraction. When only one coefficient is even each term is halved on
// its own, so no shared fraction keeps a factor of 2.
func DenestHalved(a, b int64, plus bool) string {
	ra, _ := radical.Simplify(2 * a)
	rb, _ := radical.Simplify(2 * b)
	if !plus {
		rb = rb.Neg()
	}
	evenA, evenB := ra.Coeff%2 == 0, rb.Coeff%2 == 0
	switch {
	case evenA && evenB:
		ra.Coeff /= 2
		rb.Coeff /= 2
		return markup.Sum([]markup.Term{markup.RadicalTerm(ra), markup.RadicalTerm(rb)})
	case evenA != evenB:
		return markup.Sum([]markup.Term{halvedTerm(ra), halvedTerm(rb)})
	}
	return markup.Frac(markup.Sum([]markup.Term{markup.RadicalTerm(ra), markup.RadicalTerm(rb)}), "2")
}

// halvedTerm renders r/2 with its sign lifted out
func halvedTerm(r radical.Radical) markup.Term {
	if r.Coeff%2 == 0 {
		r.Coeff /= 2
		return markup.RadicalTerm(r)
	}
	t := markup.RadicalTerm(r)
	t.Body = markup.Frac(t.Body, "2")
	return t
}

func generateDoubleRadical(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "normal", "hard")
	if err != nil {
		return domain.Problem{}, err
	}

	var p domain.Problem
	if mode == "hard" && src.Chance(0.5) {
		p, err = halvedDoubleRadical(src, req)
	} else {
		p, err = doubleRadical(src, req, mode == "hard" && src.Chance(0.5))
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("double radical %s: %w", mode, err)
	}
	return stamp(p, DoubleRadical, mode, req.Difficulty), nil
}

func doubleRadical(src *sampler.Source, req Request, fourAB bool) (domain.Problem, error) {
	res, err := sampler.Draw(req.attempts(), func() ([2]int64, error) {
		a, b := src.Int(1, 19), src.Int(1, 19)
		if a == b || a+b > doubleRadicalSumMax || a*b > doubleRadicalProductMax || radical.IsPerfectSquare(a*b) {
			return [2]int64{}, sampler.Reject("a=%d b=%d", a, b)
		}
		return [2]int64{max(a, b), min(a, b)}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	a, b := res.Value[0], res.Value[1]
	plus := src.Chance(0.5)
	op := "+"
	if !plus {
		op = "-"
	}
	inner := fmt.Sprintf(`2\sqrt{%d}`, a*b)
	if fourAB {
		inner = markup.Sqrt(fmt.Sprint(4 * a * b))
	}
	return domain.Problem{
		Display: markup.Sqrt(fmt.Sprintf("%d %s %s", a+b, op, inner)),
		Answer:  Denest(a, b, plus),
		Key:     fmt.Sprintf("double_radical:%d,%d,%t,%t", a, b, plus, fourAB),
	}, nil
}

func halvedDoubleRadical(src *sampler.Source, req Request) (domain.Problem, error) {
	res, err := sampler.Draw(req.attempts(), func() ([2]int64, error) {
		a, b := src.Int(1, 39), src.Int(1, 39)
		if a == b || a%2 != b%2 || a+b > halvedSumMax || a*b > doubleRadicalProductMax || radical.IsPerfectSquare(a*b) {
			return [2]int64{}, sampler.Reject("a=%d b=%d", a, b)
		}
		return [2]int64{max(a, b), min(a, b)}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	a, b := res.Value[0], res.Value[1]
	plus := src.Chance(0.5)
	op := "+"
	if !plus {
		op = "-"
	}
	return domain.Problem{
		Display: markup.Sqrt(fmt.Sprintf(`%d %s \sqrt{%d}`, (a+b)/2, op, a*b)),
		Answer:  DenestHalved(a, b, plus),
		Key:     fmt.Sprintf("double_radical_half:%d,%d,%t", a, b, plus),
	}, nil
}
