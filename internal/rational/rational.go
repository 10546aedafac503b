// Package rational implements exact fractions in canonical form.
//
// A Rational always has a positive denominator and a numerator coprime to
// it. The zero value is 0.
package rational

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

// Rational is an immutable fraction num/den
type Rational struct {
	num int64
	den int64 // 0 only in the zero value, read as 1
}

// Common values
var (
	Zero = Rational{num: 0, den: 1}
	One  = Rational{num: 1, den: 1}
)

// New returns num/den reduced to lowest terms with the sign on the
// numerator. A zero denominator is rejected, including 0/0.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("rational %d/0: %w", num, domain.ErrDivisionByZero)
	}
	return normalize(num, den), nil
}

// MustNew is New for constants known to be valid. It panics on a zero denominator.
func MustNew(num, den int64) Rational {
	r, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

// FromInt returns n/1
func FromInt(n int64) Rational {
	return Rational{num: n, den: 1}
}

func normalize(num, den int64) Rational {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Rational{num: 0, den: 1}
	}
	g := GCD(num, den)
	return Rational{num: num / g, den: den / g}
}

// Num returns the numerator
func (r Rational) Num() int64 { return r.num }

// Den returns the denominator, always positive
func (r Rational) Den() int64 {
	if r.den == 0 {
		return 1
	}
	return r.den
}

// Add returns r + o
func (r Rational) Add(o Rational) Rational {
	return normalize(r.num*o.Den()+o.num*r.Den(), r.Den()*o.Den())
}

// Sub returns r - o
func (r Rational) Sub(o Rational) Rational {
	return normalize(r.num*o.Den()-o.num*r.Den(), r.Den()*o.Den())
}

// Mul returns r * o
func (r Rational) Mul(o Rational) Rational {
	return normalize(r.num*o.num, r.Den()*o.Den())
}

// Div returns r / o. Dividing by zero returns domain.ErrDivisionByZero.
func (r Rational) Div(o Rational) (Rational, error) {
	if o.num == 0 {
		return Rational{}, fmt.Errorf("divide %s by zero: %w", r, domain.ErrDivisionByZero)
	}
	return normalize(r.num*o.Den(), r.Den()*o.num), nil
}

// MulInt returns r * n
func (r Rational) MulInt(n int64) Rational {
	return normalize(r.num*n, r.Den())
}

// Neg returns -r
func (r Rational) Neg() Rational {
	return Rational{num: -r.num, den: r.Den()}
}

// Abs returns |r|
func (r Rational) Abs() Rational {
	if r.num < 0 {
		return r.Neg()
	}
	return Rational{num: r.num, den: r.Den()}
}

// Inv returns 1/r
func (r Rational) Inv() (Rational, error) {
	return One.Div(r)
}

// Sign returns -1, 0 or 1
func (r Rational) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	}
	return 0
}

// IsZero reports whether r == 0
func (r Rational) IsZero() bool { return r.num == 0 }

// IsInt reports whether the denominator is 1
func (r Rational) IsInt() bool { return r.Den() == 1 }

// Equal reports structural equality
func (r Rational) Equal(o Rational) bool {
	return r.num == o.num && r.Den() == o.Den()
}

// Cmp returns -1, 0 or 1 as r is less than, equal to or greater than o
func (r Rational) Cmp(o Rational) int {
	return r.Sub(o).Sign()
}

// Float64 approximates r. Only for ordering and display heuristics.
func (r Rational) Float64() float64 {
	return float64(r.num) / float64(r.Den())
}

// String renders "n" or "n/d"
func (r Rational) String() string {
	if r.IsInt() {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.Den())
}

// Tex renders r as markup: a bare integer when the denominator is 1,
// otherwise \frac{n}{d} with any minus sign placed before the fraction.
func (r Rational) Tex() string {
	if r.IsInt() {
		return strconv.FormatInt(r.num, 10)
	}
	if r.num < 0 {
		return fmt.Sprintf(`-\frac{%d}{%d}`, -r.num, r.Den())
	}
	return fmt.Sprintf(`\frac{%d}{%d}`, r.num, r.Den())
}

// ParseTex parses the output of Tex as well as the plain "n/d" form
func ParseTex(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	neg := false
	if rest, ok := strings.CutPrefix(s, "-"); ok && strings.HasPrefix(rest, `\frac`) {
		neg = true
		s = rest
	}

	var num, den int64
	switch {
	case strings.HasPrefix(s, `\frac{`):
		body := strings.TrimPrefix(s, `\frac{`)
		n, rest, ok := strings.Cut(body, "}{")
		if !ok || !strings.HasSuffix(rest, "}") {
			return Rational{}, fmt.Errorf("parse %q: %w", s, domain.ErrInvalidInput)
		}
		var err error
		if num, err = strconv.ParseInt(n, 10, 64); err != nil {
			return Rational{}, fmt.Errorf("parse numerator: %w", err)
		}
		if den, err = strconv.ParseInt(strings.TrimSuffix(rest, "}"), 10, 64); err != nil {
			return Rational{}, fmt.Errorf("parse denominator: %w", err)
		}
	case strings.Contains(s, "/"):
		n, d, _ := strings.Cut(s, "/")
		var err error
		if num, err = strconv.ParseInt(strings.TrimSpace(n), 10, 64); err != nil {
			return Rational{}, fmt.Errorf("parse numerator: %w", err)
		}
		if den, err = strconv.ParseInt(strings.TrimSpace(d), 10, 64); err != nil {
			return Rational{}, fmt.Errorf("parse denominator: %w", err)
		}
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("parse integer: %w", err)
		}
		num, den = n, 1
	}

	if neg {
		num = -num
	}
	return New(num, den)
}

// GCD returns the greatest common divisor of |a| and |b|. GCD(0, 0) is 0.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of |a| and |b|
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	l := a / GCD(a, b) * b
	if l < 0 {
		return -l
	}
	return l
}
