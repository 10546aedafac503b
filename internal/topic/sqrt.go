package topic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Square-root shapes handed out by the balancer
const (
	sqrtSum2     = "sum2"
	sqrtSum3     = "sum3"
	sqrtSum4     = "sum4"
	sqrtProduct  = "product"
	sqrtQuotient = "quotient"
)

var sumTerms = map[string]int{sqrtSum2: 2, sqrtSum3: 3, sqrtSum4: 4}

// SquareRootQuotas is the target shape distribution of a ten-problem sheet
var SquareRootQuotas = []sampler.Quota{
	{Key: sqrtSum2, Count: 1},
	{Key: sqrtSum3, Count: 2},
	{Key: sqrtSum4, Count: 1},
	{Key: sqrtProduct, Count: 3},
	{Key: sqrtQuotient, Count: 3},
}

// NewBalancer returns a fresh balancer for topics that balance shapes,
// or nil for the rest
func NewBalancer(topicID string) *sampler.Balancer {
	if topicID == SquareRoots {
		return sampler.NewBalancer(SquareRootQuotas...)
	}
	return nil
}

type sqrtLimits struct {
	coeff, radicand int64
}

func sqrtLimitsFor(d domain.Difficulty) sqrtLimits {
	return sqrtLimits{
		coeff:    sampler.ByLevel[int64](d, 3, 5, 7),
		radicand: sampler.ByLevel[int64](d, 25, 50, 100),
	}
}

func (l sqrtLimits) term(src *sampler.Source) radical.Radical {
	return radical.Radical{
		Coeff:    src.Int(1, l.coeff) * src.Sign(),
		Radicand: src.Int(1, l.radicand),
	}
}

// bases returns the square-free radicands that fit at least twice
// under the radicand bound, as √b and √(4b)
func (l sqrtLimits) bases() []int64 {
	var out []int64
	for b := int64(1); 4*b <= l.radicand; b++ {
		if radical.IsSquareFree(b) {
			out = append(out, b)
		}
	}
	return out
}

// termOver draws c·√(b·k²), a term that simplifies to a multiple of √b
func (l sqrtLimits) termOver(src *sampler.Source, b int64) radical.Radical {
	k := src.Int(1, radical.Isqrt(l.radicand/b))
	return radical.Radical{
		Coeff:    src.Int(1, l.coeff) * src.Sign(),
		Radicand: b * k * k,
	}
}

func sqrtShape(src *sampler.Source, req Request) (string, error) {
	switch req.Shape {
	case sqrtSum2, sqrtSum3, sqrtSum4, sqrtProduct, sqrtQuotient:
		return req.Shape, nil
	case "":
	default:
		return "", fmt.Errorf("%w: shape %q", domain.ErrUnknownMode, req.Shape)
	}
	switch req.Mode {
	case "sum_diff":
		return sampler.Pick(src, []string{sqrtSum2, sqrtSum3, sqrtSum4}), nil
	case sqrtProduct, sqrtQuotient:
		return req.Mode, nil
	case "", ModeAll:
		if req.Balancer != nil {
			if shape := req.Balancer.Next(src); shape != "" {
				return shape, nil
			}
		}
		return sampler.Pick(src, []string{sqrtSum2, sqrtSum3, sqrtSum4, sqrtProduct, sqrtQuotient}), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, req.Mode)
}

func generateSquareRoots(src *sampler.Source, req Request) (domain.Problem, error) {
	shape, err := sqrtShape(src, req)
	if err != nil {
		return domain.Problem{}, err
	}
	lim := sqrtLimitsFor(req.Difficulty)

	var p domain.Problem
	mode := shape
	switch shape {
	case sqrtSum2, sqrtSum3, sqrtSum4:
		mode = "sum_diff"
		p, err = sqrtSumDiff(src, req, lim, sumTerms[shape])
	case sqrtProduct:
		p, err = sqrtProductProblem(src, req, lim)
	case sqrtQuotient:
		p, err = sqrtQuotientProblem(src, req)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("sqrt %s: %w", shape, err)
	}
	return stamp(p, SquareRoots, mode, req.Difficulty), nil
}

// SumDiffAccepted reports whether terms make a worthwhile simplification
// exercise and returns the combined answer. A sum is rejected when two
// terms cancel directly, when a term would pass through unchanged, when
// everything cancels, or when three or more terms leave more than two.
func SumDiffAccepted(terms []radical.Radical) ([]radical.Radical, error) {
	for i, t := range terms {
		for _, u := range terms[:i] {
			if t.Radicand == u.Radicand && t.Coeff == -u.Coeff {
				return nil, sampler.Reject("terms %s and %s cancel", u, t)
			}
		}
	}

	counts := make(map[int64]int)
	simplified := make([]radical.Radical, len(terms))
	for i, t := range terms {
		s, err := radical.Simplify(t.Radicand)
		if err != nil {
			return nil, err
		}
		simplified[i] = s
		counts[s.Radicand]++
	}
	if len(terms) > 1 {
		for _, s := range simplified {
			if s.Coeff == 1 && counts[s.Radicand] == 1 {
				return nil, sampler.Reject("term √%d is already simplest", s.Radicand)
			}
		}
	}

	answer := radical.CombineLikeTerms(terms)
	if len(answer) == 0 {
		return nil, sampler.Reject("terms cancel to zero")
	}
	if len(terms) >= 3 && len(answer) > 2 {
		return nil, sampler.Reject("answer keeps %d terms", len(answer))
	}
	return answer, nil
}

func sqrtSumDiff(src *sampler.Source, req Request, lim sqrtLimits, n int) (domain.Problem, error) {
	type draw struct {
		terms, answer []radical.Radical
	}
	bases := lim.bases()
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		terms := make([]radical.Radical, n)
		// three or more terms share two bases so the answer keeps at most two
		var pair []int64
		if n >= 3 {
			i := src.Int(0, int64(len(bases)-1))
			j := src.Int(0, int64(len(bases)-2))
			if j >= i {
				j++
			}
			pair = []int64{bases[i], bases[j]}
		}
		for i := range terms {
			if pair != nil {
				terms[i] = lim.termOver(src, sampler.Pick(src, pair))
			} else {
				terms[i] = lim.term(src)
			}
		}
		answer, err := SumDiffAccepted(terms)
		if err != nil {
			return draw{}, err
		}
		return draw{terms, answer}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	display := make([]markup.Term, len(res.Value.terms))
	keys := make([]string, len(res.Value.terms))
	for i, t := range res.Value.terms {
		display[i] = markup.Term{Neg: t.Coeff < 0, Body: radical.Format(abs(t.Coeff), t.Radicand)}
		keys[i] = t.String()
	}
	sort.Strings(keys)

	return domain.Problem{
		Display: markup.Sum(display),
		Answer:  markup.Radicals(res.Value.answer),
		Key:     "sqrt_sum:" + strings.Join(keys, ","),
	}, nil
}

const sqrtProductBound = 30

func sqrtProductProblem(src *sampler.Source, req Request, lim sqrtLimits) (domain.Problem, error) {
	type draw struct {
		a, b, ans radical.Radical
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		a, b := lim.term(src), lim.term(src)
		ans := a.Mul(b)
		if abs(ans.Coeff) > sqrtProductBound || ans.Radicand > sqrtProductBound {
			return draw{}, sampler.Reject("product %s too large", ans)
		}
		return draw{a, b, ans}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	return domain.Problem{
		Display: fmt.Sprintf(`(%s) \times (%s)`, radical.Format(v.a.Coeff, v.a.Radicand), radical.Format(v.b.Coeff, v.b.Radicand)),
		Answer:  v.ans.Tex(),
		Key:     fmt.Sprintf("sqrt_product:%s,%s", v.a, v.b),
	}, nil
}

// Bounds on the displayed terms of a quotient
const (
	sqrtQuotientCoeffBound    = 50
	sqrtQuotientRadicandBound = 100
)

func sqrtQuotientProblem(src *sampler.Source, req Request) (domain.Problem, error) {
	ansCoeffMax := sampler.ByLevel[int64](req.Difficulty, 5, 10, 15)
	ansRadMax := sampler.ByLevel[int64](req.Difficulty, 10, 20, 30)
	lim := sqrtLimitsFor(req.Difficulty)

	type draw struct {
		dividend, divisor, ans radical.Radical
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		ans := radical.Radical{Coeff: src.Int(1, ansCoeffMax) * src.Sign(), Radicand: src.Int(1, ansRadMax)}
		if !radical.IsSquareFree(ans.Radicand) {
			return draw{}, sampler.Reject("answer radicand %d not square-free", ans.Radicand)
		}
		divisor := lim.term(src)
		if radical.IsPerfectSquare(divisor.Radicand) {
			return draw{}, sampler.Reject("divisor √%d is rational", divisor.Radicand)
		}
		dividend := ans.Mul(divisor)
		if abs(dividend.Coeff) > sqrtQuotientCoeffBound || dividend.Radicand > sqrtQuotientRadicandBound {
			return draw{}, sampler.Reject("dividend %s too large", dividend)
		}
		return draw{dividend, divisor, ans}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	return domain.Problem{
		Display: fmt.Sprintf(`%s \div %s`, v.dividend.Tex(), markup.Paren(radical.Format(v.divisor.Coeff, v.divisor.Radicand))),
		Answer:  v.ans.Tex(),
		Key:     fmt.Sprintf("sqrt_quotient:%s,%s", v.dividend, v.divisor),
	}, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
