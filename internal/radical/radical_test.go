package radical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		n    int64
		want radical.Radical
	}{
		{0, radical.Radical{Coeff: 0, Radicand: 0}},
		{1, radical.Radical{Coeff: 1, Radicand: 1}},
		{2, radical.Radical{Coeff: 1, Radicand: 2}},
		{4, radical.Radical{Coeff: 2, Radicand: 1}},
		{12, radical.Radical{Coeff: 2, Radicand: 3}},
		{72, radical.Radical{Coeff: 6, Radicand: 2}},
		{98, radical.Radical{Coeff: 7, Radicand: 2}},
		{100, radical.Radical{Coeff: 10, Radicand: 1}},
		{30, radical.Radical{Coeff: 1, Radicand: 30}},
	}
	for _, tt := range tests {
		got, err := radical.Simplify(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Simplify(%d)", tt.n)
	}

	_, err := radical.Simplify(-8)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestSimplify_Idempotent(t *testing.T) {
	for n := int64(0); n <= 2000; n++ {
		r, err := radical.Simplify(n)
		require.NoError(t, err)
		if r.Radicand < 2 {
			continue
		}
		again, err := radical.Simplify(r.Radicand)
		require.NoError(t, err)
		require.Equal(t, radical.Radical{Coeff: 1, Radicand: r.Radicand}, again, "radicand of Simplify(%d)", n)
		require.Equal(t, n, r.Coeff*r.Coeff*r.Radicand)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		c, r int64
		want string
	}{
		{0, 5, "0"},
		{3, 0, "0"},
		{4, 1, "4"},
		{-4, 1, "-4"},
		{1, 3, `\sqrt{3}`},
		{-1, 3, `-\sqrt{3}`},
		{5, 2, `5\sqrt{2}`},
		{-5, 2, `-5\sqrt{2}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, radical.Format(tt.c, tt.r), "Format(%d, %d)", tt.c, tt.r)
	}
}

func TestCombineLikeTerms(t *testing.T) {
	got := radical.CombineLikeTerms([]radical.Radical{
		{Coeff: 1, Radicand: 8},  // 2√2
		{Coeff: 3, Radicand: 12}, // 6√3
		{Coeff: -1, Radicand: 2}, // -√2
		{Coeff: 2, Radicand: 4},  // 4
		{Coeff: -2, Radicand: 27}, // -6√3
	})
	want := []radical.Radical{
		{Coeff: 4, Radicand: 1},
		{Coeff: 1, Radicand: 2},
	}
	assert.Equal(t, want, got)

	assert.Empty(t, radical.CombineLikeTerms([]radical.Radical{{Coeff: 2, Radicand: 3}, {Coeff: -2, Radicand: 3}}))
}

func TestMul(t *testing.T) {
	a := radical.Radical{Coeff: 2, Radicand: 6}
	b := radical.Radical{Coeff: 3, Radicand: 3}
	assert.Equal(t, radical.Radical{Coeff: 18, Radicand: 2}, a.Mul(b))
	assert.True(t, a.Mul(radical.Radical{}).IsZero())
}

func TestIntegerRoots(t *testing.T) {
	for k := int64(0); k <= 3000; k++ {
		require.Equal(t, k, radical.Isqrt(k*k))
		require.True(t, radical.IsPerfectSquare(k*k))
		if k > 1 {
			require.Equal(t, k-1, radical.Isqrt(k*k-1))
			require.False(t, radical.IsPerfectSquare(k*k+1))
		}
		require.Equal(t, k, radical.Icbrt(k*k*k))
		require.Equal(t, -k, radical.Icbrt(-k*k*k))
		require.True(t, radical.IsPerfectCube(k*k*k))
		if k > 1 {
			require.False(t, radical.IsPerfectCube(k*k*k+1))
		}
	}

	assert.Equal(t, int64(-1), radical.Isqrt(-4))
	assert.False(t, radical.IsPerfectSquare(-4))
	assert.Equal(t, int64(3037000499), radical.Isqrt(1<<62*2-1))
}

func TestIsSquareFree(t *testing.T) {
	assert.True(t, radical.IsSquareFree(30))
	assert.True(t, radical.IsSquareFree(1))
	assert.False(t, radical.IsSquareFree(18))
	assert.False(t, radical.IsSquareFree(0))
}
