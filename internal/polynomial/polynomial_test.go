package polynomial_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
)

func nonZero(r *rand.Rand, bound int) func() int64 {
	return func() int64 {
		for {
			if v := int64(r.Intn(2*bound+1) - bound); v != 0 {
				return v
			}
		}
	}
}

func TestRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	seen := make(map[int]bool)

	for i := 0; i < 2000; i++ {
		p, err := polynomial.Random(r, 4, nonZero(r, 9))
		require.NoError(t, err)

		deg := len(p) - 1
		require.GreaterOrEqual(t, deg, 1)
		require.LessOrEqual(t, deg, 4)
		require.NotZero(t, p[deg], "leading coefficient of %v", p)
		require.Equal(t, deg, p.Degree())
		for _, c := range p {
			require.LessOrEqual(t, c, int64(9))
			require.GreaterOrEqual(t, c, int64(-9))
		}
		seen[deg] = true
	}
	assert.Len(t, seen, 4, "every degree in [1, 4] should occur")
}

func TestRandom_LeadingRedraw(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	calls := 0
	draw := func() int64 {
		calls++
		if calls%2 == 1 {
			return 0
		}
		return 3
	}
	p, err := polynomial.Random(r, 3, draw)
	require.NoError(t, err)
	assert.NotZero(t, p.Leading())
}

func TestRandom_Errors(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	_, err := polynomial.Random(r, 0, func() int64 { return 1 })
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = polynomial.Random(r, 2, func() int64 { return 0 })
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestMul(t *testing.T) {
	// (2x + 3)(3x + 1) = 6x^2 + 11x + 3
	p := polynomial.Linear(2, 3).Mul(polynomial.Linear(3, 1))
	assert.Equal(t, polynomial.Poly{3, 11, 6}, p)

	q := polynomial.Poly{1, 0, -2, 5}
	assert.Len(t, q.Mul(polynomial.Poly{4, 1}), 5)
	assert.Equal(t, polynomial.Poly{}, q.Mul(nil))
}

func TestMul_DoesNotMutate(t *testing.T) {
	p := polynomial.Poly{1, 2}
	q := polynomial.Poly{3, 4}
	_ = p.Mul(q)
	_ = p.Differentiate()
	_ = p.Integrate()
	assert.Equal(t, polynomial.Poly{1, 2}, p)
	assert.Equal(t, polynomial.Poly{3, 4}, q)
}

func TestDifferentiate(t *testing.T) {
	// 4x^3 - x + 7 -> 12x^2 - 1
	p := polynomial.Poly{7, -1, 0, 4}
	assert.Equal(t, polynomial.Poly{-1, 0, 12}, p.Differentiate())
	assert.Equal(t, polynomial.Poly{0}, polynomial.Poly{5}.Differentiate())
}

func TestIntegrate(t *testing.T) {
	// 3x^2 + 2x - 1 -> x^3 + x^2 - x
	got := polynomial.Poly{-1, 2, 3}.Integrate()
	want := polynomial.RatPoly{rational.Zero, rational.FromInt(-1), rational.One, rational.One}
	assert.True(t, got.Equal(want), "Integrate() = %v", got)

	// x -> x^2/2
	half := polynomial.Poly{0, 1}.Integrate()
	assert.Equal(t, rational.MustNew(1, 2), half[2])
}

func TestDifferentiateIntegrate_Inverse(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p, err := polynomial.Random(r, 5, nonZero(r, 12))
		require.NoError(t, err)
		require.True(t, p.Integrate().Differentiate().Equal(p.Rat()), "d/dx ∫%v", p)
	}
}

func TestEval(t *testing.T) {
	p := polynomial.Poly{-4, 0, 1} // x^2 - 4
	assert.Equal(t, int64(0), p.Eval(2))
	assert.Equal(t, int64(0), p.Eval(-2))
	assert.Equal(t, int64(5), p.Eval(3))

	assert.Equal(t, rational.MustNew(-15, 4), p.EvalRat(rational.MustNew(1, 2)))
	assert.Equal(t, rational.MustNew(-15, 4), p.Rat().Eval(rational.MustNew(-1, 2)))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "[3 11 6]", polynomial.Poly{3, 11, 6, 0}.Key())
	assert.Equal(t, "[0 0 1/2]", polynomial.Poly{0, 1}.Integrate().Key())
	assert.True(t, polynomial.Poly{1, 2, 0}.Equal(polynomial.Poly{1, 2}))
	assert.False(t, polynomial.Poly{1, 2}.Equal(polynomial.Poly{1, 3}))
}
