package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

func TestQuadraticInequality_Solve(t *testing.T) {
	tests := []struct {
		name string
		q    QuadraticInequality
		want string
	}{
		{"between the roots", QuadraticInequality{1, -5, 6, Less}, "2 < x < 3"},
		{"outside the roots", QuadraticInequality{1, -5, 6, GreaterEqual}, `x \le 2, x \ge 3`},
		{"negative leading coefficient", QuadraticInequality{-1, 5, -6, Greater}, "2 < x < 3"},
		{"fractional root", QuadraticInequality{2, -1, -1, LessEqual}, `-\frac{1}{2} \le x \le 1`},
		{"double root punctured", QuadraticInequality{1, -2, 1, Greater}, `x \ne 1`},
		{"double root point", QuadraticInequality{1, -2, 1, LessEqual}, "x = 1"},
		{"double root everywhere", QuadraticInequality{1, -2, 1, GreaterEqual}, `\text{all real numbers}`},
		{"double root nowhere", QuadraticInequality{1, -2, 1, Less}, `\text{no solution}`},
		{"negative discriminant above", QuadraticInequality{1, 0, 1, Greater}, `\text{all real numbers}`},
		{"negative discriminant below", QuadraticInequality{1, 0, 1, LessEqual}, `\text{no solution}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.q.Solve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Tex())
		})
	}

	_, err := QuadraticInequality{1, 0, -2, Less}.Solve()
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	_, err = QuadraticInequality{0, 1, 1, Less}.Solve()
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestIntervalSet_Intersect(t *testing.T) {
	r := rational.FromInt
	tests := []struct {
		name string
		a, b IntervalSet
		want string
	}{
		{"interval minus a gap", Between(r(1), r(5), false), Outside(r(2), r(3), true), `1 < x \le 2, 3 \le x < 5`},
		{"disjoint", Between(r(0), r(1), true), Between(r(2), r(3), true), `\text{no solution}`},
		{"touching closed ends", Between(r(0), r(2), true), Between(r(2), r(3), true), "x = 2"},
		{"touching open end", Between(r(0), r(2), false), Between(r(2), r(3), true), `\text{no solution}`},
		{"whole line", AllReals, Between(r(-1), r(4), false), "-1 < x < 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b).Tex())
		})
	}
}

func TestQuadraticInequality_Generate(t *testing.T) {
	g, err := Lookup(QuadraticInequalities)
	require.NoError(t, err)
	src := sampler.NewSource(31)
	for _, mode := range []string{"basic", "advanced", "system"} {
		for i := 0; i < 100; i++ {
			p, err := g.Generate(src, Request{Mode: mode, Difficulty: difficulties[i%3]})
			require.NoError(t, err, mode)
			assert.Equal(t, mode, p.Mode)
			assert.Contains(t, p.Display, "x^{2}")
			if mode == "system" {
				assert.Contains(t, p.Display, `\begin{cases}`)
			}
		}
	}
}
