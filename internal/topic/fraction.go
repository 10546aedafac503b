package topic

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

var fractionOps = map[string]string{
	"add":      "+",
	"subtract": "-",
	"multiply": `\times`,
	"divide":   `\div`,
}

// FractionArithmetic computes a op b for one of the fraction modes
func FractionArithmetic(mode string, a, b rational.Rational) (rational.Rational, error) {
	switch mode {
	case "add":
		return a.Add(b), nil
	case "subtract":
		return a.Sub(b), nil
	case "multiply":
		return a.Mul(b), nil
	case "divide":
		return a.Div(b)
	}
	return rational.Rational{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

func generateFraction(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "add", "subtract", "multiply", "divide")
	if err != nil {
		return domain.Problem{}, err
	}

	type draw struct{ a, b, ans rational.Rational }
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		a := src.RandomFrac(req.Difficulty)
		b := src.RandomFrac(req.Difficulty)
		ans, err := FractionArithmetic(mode, a, b)
		if err != nil {
			return draw{}, err
		}
		return draw{a, b, ans}, nil
	})
	if err != nil {
		return domain.Problem{}, fmt.Errorf("fraction %s: %w", mode, err)
	}

	d := res.Value
	return stamp(domain.Problem{
		Display: fmt.Sprintf("%s %s %s", d.a.Tex(), fractionOps[mode], markup.Paren(d.b.Tex())),
		Answer:  d.ans.Tex(),
		Key:     fmt.Sprintf("fraction:%s:%s:%s", mode, d.a, d.b),
	}, Fraction, mode, req.Difficulty), nil
}
