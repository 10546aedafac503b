package topic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

func TestComplex_Mul(t *testing.T) {
	assert.Equal(t, "5 + 5i", Complex{1, 2}.Mul(Complex{3, -1}).Tex())
	assert.Equal(t, "-4", Complex{0, 2}.Mul(Complex{0, 2}).Tex())
	assert.Equal(t, "-i", Complex{0, -1}.Tex())
}

func TestSolveComplexQuadratic(t *testing.T) {
	tests := []struct {
		a, b, c int64
		want    string
	}{
		{1, 1, 1, `x = \frac{-1 \pm \sqrt{3}i}{2}`},
		{1, 2, 5, `x = -1 \pm 2i`},
		{1, 0, 4, `x = \pm 2i`},
		{1, 0, 1, `x = \pm i`},
		{-1, 0, -1, `x = \pm i`},
	}
	for _, tt := range tests {
		roots, err := SolveComplexQuadratic(tt.a, tt.b, tt.c)
		require.NoError(t, err)
		assert.Equal(t, tt.want, roots.Tex())
	}

	_, err := SolveComplexQuadratic(1, 2, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	_, err = SolveComplexQuadratic(0, 2, 1)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestHigherOrder_Terms(t *testing.T) {
	assert.Equal(t, "x^{3} + 6x^{2} + 12x + 8", markup.Sum(cubeExpansion(1, 2, false)))
	assert.Equal(t, "8x^{3} - 12x^{2}y + 6xy^{2} - y^{3}", markup.Sum(cubeExpansion(2, -1, true)))
	assert.Equal(t, "x^{2} - 2x + 4", markup.Sum(trinomialOfCubes(1, 2, false)))
	assert.Equal(t, "x^{3} + 8", markup.Sum(sumOfCubesTerms(1, 2, false)))
	assert.Equal(t, "(2x - y)", binomial(2, -1, true))
}

func TestHigherOrder_FactorSwapsSides(t *testing.T) {
	g, err := Lookup(HigherOrder)
	require.NoError(t, err)
	src := sampler.NewSource(37)
	for i := 0; i < 100; i++ {
		p, err := g.Generate(src, Request{Mode: "factor", Difficulty: difficulties[i%3]})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(p.Answer, "("), p.Answer)
		assert.NotContains(t, p.Display, "(")

		p, err = g.Generate(src, Request{Mode: "expand", Difficulty: difficulties[i%3]})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(p.Display, "("), p.Display)
	}
}

func TestLinearFraction_Combine(t *testing.T) {
	sum := LinearFraction{1, 1, 2}.Combine(LinearFraction{1, -1, 3}, true)
	assert.Equal(t, LinearFraction{5, 1, 6}, sum)
	assert.Equal(t, `\frac{5x + 1}{6}`, sum.Tex())

	diff := LinearFraction{1, 1, 2}.Combine(LinearFraction{1, -3, 4}, false)
	assert.Equal(t, LinearFraction{1, 5, 4}, diff)

	whole := LinearFraction{1, 1, 2}.Combine(LinearFraction{1, -1, 2}, true)
	assert.Equal(t, "x", whole.Tex())
}

func TestTrigAngles(t *testing.T) {
	assert.Equal(t, []string{`30^\circ`, `150^\circ`}, TrigAngles("sin", `\frac{1}{2}`, "degree"))
	assert.Equal(t, []string{"0", `2\pi`}, TrigAngles("cos", "1", "radian"))
	assert.Equal(t, []string{`45^\circ`, `225^\circ`}, TrigAngles("tan", "1", "degree"))
	assert.Equal(t, []string{`\frac{7\pi}{4}`}, TrigAngles("sin", `-\frac{\sqrt{2}}{2}`, "radian")[1:])
	assert.Empty(t, TrigAngles("tan", "", "degree"))
}

func TestTrigonometric_Subtypes(t *testing.T) {
	g, err := Lookup(Trigonometric)
	require.NoError(t, err)
	src := sampler.NewSource(41)
	for i := 0; i < 50; i++ {
		p, err := g.Generate(src, Request{Mode: "degree", Subtype: "angle"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(p.Answer, `\theta = `), p.Answer)
		assert.Contains(t, p.Display, `360^\circ`)

		p, err = g.Generate(src, Request{Mode: "radian", Subtype: "value"})
		require.NoError(t, err)
		assert.NotContains(t, p.Answer, `\theta`)
		assert.NotContains(t, p.Display, `^\circ`)
	}

	_, err = g.Generate(src, Request{Mode: "degree", Subtype: "inverse"})
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}
