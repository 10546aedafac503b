package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Shapes of the higher-order topic
const (
	cubeOfSum     = "cube"
	sumOfCubes    = "sum_of_cubes"
	bivariateCube = "bivariate_cube"
	bivariateSum  = "bivariate_sum"
)

// xy returns the term c·x^i·y^j; i + j must be positive
func xy(c int64, i, j int) markup.Term {
	return markup.IntTerm(c, markup.Power("x", i)+markup.Power("y", j), 1)
}

// binomial renders (ax + by) or, without y, (ax + b)
func binomial(a, b int64, withY bool) string {
	second := markup.IntTerm(b, "", 0)
	if withY {
		second = xy(b, 0, 1)
	}
	return "(" + markup.Sum([]markup.Term{xy(a, 1, 0), second}) + ")"
}

// cubeExpansion returns the terms of (ax + by)³ or, without y, (ax + b)³
func cubeExpansion(a, b int64, withY bool) []markup.Term {
	if !withY {
		lin := polynomial.Linear(a, b)
		cube := lin.Mul(lin).Mul(lin)
		var terms []markup.Term
		for i := len(cube) - 1; i >= 0; i-- {
			if cube[i] != 0 {
				terms = append(terms, markup.IntTerm(cube[i], "x", i))
			}
		}
		return terms
	}
	return []markup.Term{
		xy(a*a*a, 3, 0),
		xy(3*a*a*b, 2, 1),
		xy(3*a*b*b, 1, 2),
		xy(b*b*b, 0, 3),
	}
}

// trinomialOfCubes returns the terms of a²x² - abxy + b²y², the second
// factor of a³x³ + b³y³
func trinomialOfCubes(a, b int64, withY bool) []markup.Term {
	if !withY {
		return []markup.Term{xy(a*a, 2, 0), xy(-a*b, 1, 0), markup.IntTerm(b*b, "", 0)}
	}
	return []markup.Term{xy(a*a, 2, 0), xy(-a*b, 1, 1), xy(b*b, 0, 2)}
}

// sumOfCubesTerms returns a³x³ + b³ or a³x³ + b³y³
func sumOfCubesTerms(a, b int64, withY bool) []markup.Term {
	last := markup.IntTerm(b*b*b, "", 0)
	if withY {
		last = xy(b*b*b, 0, 3)
	}
	return []markup.Term{xy(a*a*a, 3, 0), last}
}

func generateHigherOrder(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "expand", "factor")
	if err != nil {
		return domain.Problem{}, err
	}

	coeffMax := sampler.ByLevel[int64](req.Difficulty, 2, 3, 4)
	constMax := sampler.ByLevel[int64](req.Difficulty, 3, 5, 6)
	shapes := []string{cubeOfSum, sumOfCubes, bivariateCube}
	if mode == "factor" {
		shapes = []string{cubeOfSum, sumOfCubes, bivariateSum}
	}
	shape := sampler.Pick(src, shapes)
	withY := shape == bivariateCube || shape == bivariateSum

	a, b := src.NonZero(-coeffMax, coeffMax), src.NonZero(-constMax, constMax)
	switch {
	case withY:
		b = src.NonZero(-coeffMax, coeffMax)
	case mode == "factor":
		// univariate factoring is monic
		a = 1
	}

	var expanded, factored string
	switch shape {
	case cubeOfSum, bivariateCube:
		expanded = markup.Sum(cubeExpansion(a, b, withY))
		factored = binomial(a, b, withY) + "^{3}"
	case sumOfCubes, bivariateSum:
		expanded = markup.Sum(sumOfCubesTerms(a, b, withY))
		factored = binomial(a, b, withY) + "(" + markup.Sum(trinomialOfCubes(a, b, withY)) + ")"
	}

	p := domain.Problem{
		Display: factored,
		Answer:  expanded,
		Key:     fmt.Sprintf("higher_order:%s:%s", mode, factored),
	}
	if mode == "factor" {
		p.Display, p.Answer = expanded, factored
	}
	return stamp(p, HigherOrder, mode, req.Difficulty), nil
}
