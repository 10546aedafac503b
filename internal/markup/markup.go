// Package markup renders rationals, radicals and polynomials as TeX for
// the math renderer. Output never starts with "+", never shows a negative
// denominator, and elides a coefficient of magnitude 1 next to a variable
// or root but not on a bare constant.
package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

// Term is one summand: its sign and the markup of its magnitude
type Term struct {
	Neg  bool
	Body string
}

// Sum joins terms with " + " and " - ". The first term carries only a
// minus sign. An empty sum renders as "0".
func Sum(terms []Term) string {
	var b strings.Builder
	for i, t := range terms {
		switch {
		case i == 0 && t.Neg:
			b.WriteString("-")
		case i > 0 && t.Neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		b.WriteString(t.Body)
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// Compact joins terms like Sum but without spaces, as inside a factor
func Compact(terms []Term) string {
	return strings.ReplaceAll(strings.ReplaceAll(Sum(terms), " + ", "+"), " - ", "-")
}

// Power renders v^deg: "" for degree 0, v for degree 1, v^{n} otherwise
func Power(v string, deg int) string {
	switch deg {
	case 0:
		return ""
	case 1:
		return v
	}
	return fmt.Sprintf("%s^{%d}", v, deg)
}

// IntTerm returns the term c·v^deg, eliding |c| = 1 unless deg is 0
func IntTerm(c int64, v string, deg int) Term {
	mag := c
	if mag < 0 {
		mag = -mag
	}
	body := Power(v, deg)
	if mag != 1 || deg == 0 {
		body = strconv.FormatInt(mag, 10) + body
	}
	return Term{Neg: c < 0, Body: body}
}

// RatTerm returns the term r·v^deg with the fraction's sign lifted out
func RatTerm(r rational.Rational, v string, deg int) Term {
	mag := r.Abs()
	body := Power(v, deg)
	if !mag.Equal(rational.One) || deg == 0 {
		body = mag.Tex() + body
	}
	return Term{Neg: r.Sign() < 0, Body: body}
}

// Rational renders r
func Rational(r rational.Rational) string {
	return r.Tex()
}

// Poly renders p from the highest degree down, skipping zero coefficients
func Poly(p polynomial.Poly, v string) string {
	var terms []Term
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			terms = append(terms, IntTerm(p[i], v, i))
		}
	}
	return Sum(terms)
}

// RatPoly renders p. With skipConstant the index-0 coefficient is left
// out, as for an antiderivative whose constant is written "+ C".
func RatPoly(p polynomial.RatPoly, v string, skipConstant bool) string {
	var terms []Term
	low := 0
	if skipConstant {
		low = 1
	}
	for i := len(p) - 1; i >= low; i-- {
		if !p[i].IsZero() {
			terms = append(terms, RatTerm(p[i], v, i))
		}
	}
	return Sum(terms)
}

// Antiderivative renders p followed by the constant of integration
func Antiderivative(p polynomial.RatPoly, v string) string {
	body := RatPoly(p, v, true)
	if body == "0" {
		return "C"
	}
	return body + " + C"
}

// Linear renders a·v + b with rational coefficients
func Linear(a, b rational.Rational, v string) string {
	var terms []Term
	if !a.IsZero() {
		terms = append(terms, RatTerm(a, v, 1))
	}
	if !b.IsZero() {
		terms = append(terms, RatTerm(b, v, 0))
	}
	return Sum(terms)
}

// LinearFactor renders (a·v+b). A common divisor g > 1 of a and b is
// pulled out in front: (4x+6) becomes 2(2x+3).
func LinearFactor(a, b int64, v string) string {
	prefix := ""
	if g := rational.GCD(a, b); g > 1 {
		prefix = strconv.FormatInt(g, 10)
		a, b = a/g, b/g
	}
	var terms []Term
	if a != 0 {
		terms = append(terms, IntTerm(a, v, 1))
	}
	if b != 0 {
		terms = append(terms, IntTerm(b, v, 0))
	}
	return prefix + "(" + Compact(terms) + ")"
}

// Product concatenates factors for implicit multiplication
func Product(factors ...string) string {
	return strings.Join(factors, "")
}

// Squared renders factor^{2}
func Squared(factor string) string {
	return factor + "^{2}"
}

// RadicalTerm returns the term for r with its sign lifted out
func RadicalTerm(r radical.Radical) Term {
	if r.Coeff < 0 {
		return Term{Neg: true, Body: r.Neg().Tex()}
	}
	return Term{Body: r.Tex()}
}

// Radicals renders a sum of radical terms
func Radicals(terms []radical.Radical) string {
	out := make([]Term, 0, len(terms))
	for _, r := range terms {
		if !r.IsZero() {
			out = append(out, RadicalTerm(r))
		}
	}
	return Sum(out)
}

// Frac renders \frac{num}{den}
func Frac(num, den string) string {
	return fmt.Sprintf(`\frac{%s}{%s}`, num, den)
}

// Sqrt renders \sqrt{body}
func Sqrt(body string) string {
	return fmt.Sprintf(`\sqrt{%s}`, body)
}

// Paren wraps s in parentheses when it is negative or a sum
func Paren(s string) string {
	if strings.ContainsAny(s, "+-") {
		return "(" + s + ")"
	}
	return s
}

// Equation renders lhs = rhs
func Equation(lhs, rhs string) string {
	return lhs + " = " + rhs
}

// Assign renders v = value, as in the answer "x = 2"
func Assign(v string, value rational.Rational) string {
	return Equation(v, value.Tex())
}

// Cases renders a brace-grouped system, one equation per line
func Cases(lines ...string) string {
	return `\begin{cases} ` + strings.Join(lines, ` \\ `) + ` \end{cases}`
}

// Inline wraps tex in inline math delimiters
func Inline(tex string) string {
	return `\(` + tex + `\)`
}

// Block wraps tex in display math delimiters
func Block(tex string) string {
	return "$$" + tex + "$$"
}
