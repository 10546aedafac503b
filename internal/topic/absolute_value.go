package topic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

const absoluteValue = "absolute_value"

func absTex(a, b rational.Rational) string {
	return `\left|` + markup.Linear(a, b, "x") + `\right|`
}

// AbsEquation is |ax + b| = cx + d
type AbsEquation struct {
	A, B, C, D rational.Rational
}

// Solve returns the solutions in ascending order. Each branch
// ax + b = ±(cx + d) contributes its root where cx + d ≥ 0; a branch
// without a unique root contributes nothing.
func (e AbsEquation) Solve() []rational.Rational {
	var out []rational.Rational
	for _, sign := range []int64{1, -1} {
		c, d := e.C.MulInt(sign), e.D.MulInt(sign)
		x, err := d.Sub(e.B).Div(e.A.Sub(c))
		if err != nil {
			continue
		}
		if e.C.Mul(x).Add(e.D).Sign() < 0 {
			continue
		}
		if len(out) == 1 && out[0].Equal(x) {
			continue
		}
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Tex renders the equation
func (e AbsEquation) Tex() string {
	return markup.Equation(absTex(e.A, e.B), markup.Linear(e.C, e.D, "x"))
}

// AbsInequality is |ax + b| REL c with c > 0
type AbsInequality struct {
	A, B, C rational.Rational
	Rel     Relation
}

// Solve returns the endpoints lo < hi where ax + b = ±c. A zero x
// coefficient yields domain.ErrDivisionByZero.
func (q AbsInequality) Solve() (lo, hi rational.Rational, err error) {
	if q.C.Sign() <= 0 {
		return lo, hi, fmt.Errorf("%w: right side %s must be positive", domain.ErrInvalidInput, q.C)
	}
	if lo, err = q.C.Neg().Sub(q.B).Div(q.A); err != nil {
		return lo, hi, err
	}
	if hi, err = q.C.Sub(q.B).Div(q.A); err != nil {
		return lo, hi, err
	}
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// SolutionTex renders the solution set: the interval between lo and hi
// for < and \le, the two outer rays for > and \ge
func (q AbsInequality) SolutionTex(lo, hi rational.Rational) string {
	if q.Rel.Lower() {
		return fmt.Sprintf("x %s %s, x %s %s", q.Rel.Flip(), lo.Tex(), q.Rel, hi.Tex())
	}
	return fmt.Sprintf("%s %s x %s %s", lo.Tex(), q.Rel, q.Rel, hi.Tex())
}

// Tex renders the inequality
func (q AbsInequality) Tex() string {
	return fmt.Sprintf("%s %s %s", absTex(q.A, q.B), q.Rel, q.C.Tex())
}

func allWithinBound(xs []rational.Rational, bound int64) bool {
	for _, x := range xs {
		if !withinBound(x, bound) {
			return false
		}
	}
	return true
}

func solutionsTex(xs []rational.Rational) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.Tex()
	}
	return "x = " + strings.Join(parts, ", ")
}

// absoluteValueProblem draws |ax + b| = c, |ax + b| = cx + d with two
// solutions, or |ax + b| REL c
func absoluteValueProblem(src *sampler.Source, req Request, draw func() rational.Rational) (domain.Problem, error) {
	shape := sampler.Pick(src, []string{"constant", "linear", "inequality"})
	res, err := sampler.Draw(req.attempts(), func() (domain.Problem, error) {
		a, b := draw(), draw()
		switch shape {
		case "constant", "linear":
			e := AbsEquation{A: a, B: b, D: draw().Abs()}
			if shape == "linear" {
				e.C, e.D = draw(), draw()
			}
			sols := e.Solve()
			if len(sols) != 2 {
				return domain.Problem{}, sampler.Reject("%d solutions", len(sols))
			}
			if !allWithinBound(sols, inequalityBound) {
				return domain.Problem{}, sampler.Reject("solutions %v exceed %d", sols, inequalityBound)
			}
			return domain.Problem{
				Display: e.Tex(),
				Answer:  solutionsTex(sols),
				Key:     fmt.Sprintf("abs_equation:%v", e),
			}, nil
		}

		q := AbsInequality{A: a, B: b, C: draw().Abs(), Rel: sampler.Pick(src, relations)}
		lo, hi, err := q.Solve()
		if err != nil {
			return domain.Problem{}, err
		}
		if !allWithinBound([]rational.Rational{lo, hi}, inequalityBound) {
			return domain.Problem{}, sampler.Reject("endpoints %s, %s exceed %d", lo, hi, inequalityBound)
		}
		return domain.Problem{
			Display: q.Tex(),
			Answer:  q.SolutionTex(lo, hi),
			Key:     fmt.Sprintf("abs_inequality:%v", q),
		}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}
	return res.Value, nil
}
