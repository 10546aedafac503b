package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

const simultaneousFracBound = 15

// System is the pair ax + by = c, dx + ey = f
type System struct {
	A, B, C int64
	D, E, F int64
}

// Solve applies Cramer's rule. A zero determinant yields domain.ErrDivisionByZero.
func (s System) Solve() (x, y rational.Rational, err error) {
	det := s.A*s.E - s.B*s.D
	if x, err = rational.New(s.C*s.E-s.B*s.F, det); err != nil {
		return x, y, fmt.Errorf("singular system: %w", err)
	}
	if y, err = rational.New(s.A*s.F-s.C*s.D, det); err != nil {
		return x, y, fmt.Errorf("singular system: %w", err)
	}
	return x, y, nil
}

// Tex renders the system as a cases block
func (s System) Tex() string {
	line := func(a, b, c int64) string {
		return markup.Equation(markup.Sum([]markup.Term{
			markup.IntTerm(a, "x", 1),
			markup.IntTerm(b, "y", 1),
		}), fmt.Sprint(c))
	}
	return markup.Cases(line(s.A, s.B, s.C), line(s.D, s.E, s.F))
}

func generateSimultaneous(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "int", "frac")
	if err != nil {
		return domain.Problem{}, err
	}

	type draw struct {
		sys  System
		x, y rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		x0, y0 := src.NonZero(-9, 9), src.NonZero(-9, 9)
		sys := System{
			A: src.NonZero(-5, 5), B: src.NonZero(-5, 5),
			D: src.NonZero(-5, 5), E: src.NonZero(-5, 5),
		}
		sys.C = sys.A*x0 + sys.B*y0
		sys.F = sys.D*x0 + sys.E*y0
		if mode == "frac" {
			sys.F += src.NonZero(-3, 3)
		}

		x, y, err := sys.Solve()
		if err != nil {
			return draw{}, err
		}
		if mode == "int" && !(x.IsInt() && y.IsInt()) {
			return draw{}, sampler.Reject("solution (%s, %s) not integral", x, y)
		}
		if mode == "frac" {
			if !withinBound(x, simultaneousFracBound) || !withinBound(y, simultaneousFracBound) {
				return draw{}, sampler.Reject("solution (%s, %s) exceeds %d", x, y, simultaneousFracBound)
			}
			if x.IsInt() && y.IsInt() {
				return draw{}, sampler.Reject("solution (%s, %s) not fractional", x, y)
			}
		}
		return draw{sys, x, y}, nil
	})
	if err != nil {
		return domain.Problem{}, fmt.Errorf("simultaneous %s: %w", mode, err)
	}

	v := res.Value
	return stamp(domain.Problem{
		Display: v.sys.Tex(),
		Answer:  fmt.Sprintf("x = %s, y = %s", v.x.Tex(), v.y.Tex()),
		Key:     fmt.Sprintf("simultaneous:%v", v.sys),
	}, Simultaneous, mode, req.Difficulty), nil
}
