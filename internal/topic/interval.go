package topic

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

// Endpoint is a finite end of an interval
type Endpoint struct {
	At     rational.Rational
	Closed bool
}

// Interval is a connected subset of the reals. A nil end is unbounded.
type Interval struct {
	Lo, Hi *Endpoint
}

// IntervalSet is a union of disjoint intervals in ascending order
type IntervalSet []Interval

// AllReals is the whole line
var AllReals = IntervalSet{{}}

// Point returns the set {r}
func Point(r rational.Rational) IntervalSet {
	return IntervalSet{{Lo: &Endpoint{r, true}, Hi: &Endpoint{r, true}}}
}

// Between returns the interval from lo to hi
func Between(lo, hi rational.Rational, closed bool) IntervalSet {
	return IntervalSet{{Lo: &Endpoint{lo, closed}, Hi: &Endpoint{hi, closed}}}
}

// Outside returns the rays below lo and above hi
func Outside(lo, hi rational.Rational, closed bool) IntervalSet {
	return IntervalSet{{Hi: &Endpoint{lo, closed}}, {Lo: &Endpoint{hi, closed}}}
}

// tighter picks the stricter of two ends. upper selects the smaller value.
func tighter(a, b *Endpoint, upper bool) *Endpoint {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	c := a.At.Cmp(b.At)
	if c == 0 {
		return &Endpoint{a.At, a.Closed && b.Closed}
	}
	if (c < 0) == upper {
		return a
	}
	return b
}

func (iv Interval) empty() bool {
	if iv.Lo == nil || iv.Hi == nil {
		return false
	}
	c := iv.Lo.At.Cmp(iv.Hi.At)
	return c > 0 || c == 0 && !(iv.Lo.Closed && iv.Hi.Closed)
}

// Intersect returns the points in both s and o
func (s IntervalSet) Intersect(o IntervalSet) IntervalSet {
	var out IntervalSet
	for _, a := range s {
		for _, b := range o {
			iv := Interval{Lo: tighter(a.Lo, b.Lo, false), Hi: tighter(a.Hi, b.Hi, true)}
			if !iv.empty() {
				out = append(out, iv)
			}
		}
	}
	return out
}

func endRel(e *Endpoint) Relation {
	if e.Closed {
		return LessEqual
	}
	return Less
}

// Tex renders the set as solution markup: "no solution", "all real
// numbers", x \ne r for a punctured line, x = r for a point, otherwise
// one chain of inequalities per interval.
func (s IntervalSet) Tex() string {
	switch {
	case len(s) == 0:
		return `\text{no solution}`
	case len(s) == 1 && s[0].Lo == nil && s[0].Hi == nil:
		return `\text{all real numbers}`
	case len(s) == 2 && s[0].Lo == nil && s[1].Hi == nil &&
		!s[0].Hi.Closed && !s[1].Lo.Closed && s[0].Hi.At.Equal(s[1].Lo.At):
		return fmt.Sprintf(`x \ne %s`, s[0].Hi.At.Tex())
	}

	parts := make([]string, len(s))
	for i, iv := range s {
		switch {
		case iv.Lo != nil && iv.Hi != nil && iv.Lo.At.Equal(iv.Hi.At):
			parts[i] = markup.Assign("x", iv.Lo.At)
		case iv.Lo != nil && iv.Hi != nil:
			parts[i] = fmt.Sprintf("%s %s x %s %s", iv.Lo.At.Tex(), endRel(iv.Lo), endRel(iv.Hi), iv.Hi.At.Tex())
		case iv.Hi != nil:
			parts[i] = solutionTex(iv.Hi.At, endRel(iv.Hi))
		case iv.Lo != nil:
			parts[i] = solutionTex(iv.Lo.At, endRel(iv.Lo).Flip())
		default:
			parts[i] = `\text{all real numbers}`
		}
	}
	return strings.Join(parts, ", ")
}
