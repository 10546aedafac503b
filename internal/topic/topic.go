// Package topic holds the problem templates. Each generator draws its
// parameters through sampler.Draw, computes the exact answer with the
// rational, radical and polynomial packages and formats both sides with
// the markup package.
package topic

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Topic identifiers
const (
	Fraction      = "fraction"
	Linear        = "linear"
	Quadratic     = "quadratic"
	Factoring     = "factoring"
	SquareRoots   = "sqrt"
	Calculus      = "calculus"
	Simultaneous  = "simultaneous"
	DoubleRadical = "double_radical"
	Inequality    = "inequality"

	QuadraticInequalities = "quadratic_inequality"
	ExponentialLogarithm  = "exponential_logarithm"
	HigherOrder           = "higher_order"
	ComplexNumber         = "complex_number"
	AlgebraicFraction     = "algebraic_fraction"
	Trigonometric         = "trigonometric"
)

// ModeAll lets a topic choose among its modes
const ModeAll = "all"

// Request carries the parameters of one generation call
type Request struct {
	Mode       string
	Difficulty domain.Difficulty
	// Index is the problem's position in a batch
	Index   int
	Subtype string
	// Balancer steers shape selection across a session. Optional.
	Balancer *sampler.Balancer
	// Shape fixes the structural variant; empty lets the generator choose
	Shape       string
	MaxAttempts int
}

func (r Request) attempts() int {
	return sampler.Attempts(r.MaxAttempts)
}

// PlanSlot draws the shape of one worksheet slot from the balancer.
// Regenerating the slot with the returned request reuses that shape.
func PlanSlot(src *sampler.Source, req Request) Request {
	if req.Shape != "" || req.Balancer == nil || (req.Mode != "" && req.Mode != ModeAll) {
		return req
	}
	req.Shape = req.Balancer.Next(src)
	return req
}

// Generator produces one problem
type Generator interface {
	Generate(src *sampler.Source, req Request) (domain.Problem, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(src *sampler.Source, req Request) (domain.Problem, error)

// Generate calls f
func (f GeneratorFunc) Generate(src *sampler.Source, req Request) (domain.Problem, error) {
	return f(src, req)
}

var builtin = map[string]Generator{
	Fraction:      GeneratorFunc(generateFraction),
	Linear:        GeneratorFunc(generateLinear),
	Quadratic:     GeneratorFunc(generateQuadratic),
	Factoring:     GeneratorFunc(generateFactoring),
	SquareRoots:   GeneratorFunc(generateSquareRoots),
	Calculus:      GeneratorFunc(generateCalculus),
	Simultaneous:  GeneratorFunc(generateSimultaneous),
	DoubleRadical: GeneratorFunc(generateDoubleRadical),
	Inequality:    GeneratorFunc(generateInequality),

	QuadraticInequalities: GeneratorFunc(generateQuadraticInequality),
	ExponentialLogarithm:  GeneratorFunc(generateExponential),
	HigherOrder:           GeneratorFunc(generateHigherOrder),
	ComplexNumber:         GeneratorFunc(generateComplexNumber),
	AlgebraicFraction:     GeneratorFunc(generateAlgebraicFraction),
	Trigonometric:         GeneratorFunc(generateTrigonometric),
}

// Lookup returns the built-in generator for id
func Lookup(id string) (Generator, error) {
	g, ok := builtin[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, id)
	}
	return g, nil
}

// IDs returns the built-in topic IDs, sorted
func IDs() []string {
	ids := make([]string, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Placeholder is the known-valid problem returned when generation is exhausted
func Placeholder() domain.Problem {
	return domain.Problem{
		Display:  "1 + 1",
		Answer:   "2",
		Key:      "placeholder",
		Fallback: true,
	}
}

// pickMode resolves ModeAll (or an empty mode) to one of modes
func pickMode(src *sampler.Source, mode string, modes ...string) (string, error) {
	if mode == "" || mode == ModeAll {
		return sampler.Pick(src, modes), nil
	}
	for _, m := range modes {
		if m == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

func stamp(p domain.Problem, topic, mode string, d domain.Difficulty) domain.Problem {
	p.Topic = topic
	p.Mode = mode
	p.Difficulty = d
	return p
}
