package topic

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/polynomial"
	"github.com/felixgeelhaar/mathdrill/internal/radical"
	"github.com/felixgeelhaar/mathdrill/internal/rational"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// Exponential and logarithm modes
const (
	expCalculation = "exponential_calculation"
	expEquation    = "exponential_equation"
	logCalculation = "logarithmic_calculation"
	logEquation    = "logarithmic_equation"
)

// Bounds for exponent and logarithm problems
const (
	expTotalMax      = 4
	expIntegerRHSMax = 10000
	logSolutionNum   = 10
	logSolutionDen   = 5
	logRootMax       = 3
)

func ipow(b, e int64) int64 {
	r := int64(1)
	for ; e > 0; e-- {
		r *= b
	}
	return r
}

// ratPow returns b^e for any integer e and b ≠ 0
func ratPow(b, e int64) rational.Rational {
	if e >= 0 {
		return rational.FromInt(ipow(b, e))
	}
	return rational.MustNew(1, ipow(b, -e))
}

// PerfectPower writes n ≥ 2 as base^exp with the largest possible exp
func PerfectPower(n int64) (base, exp int64) {
	factors := make(map[int64]int64)
	rest := n
	for p := int64(2); p*p <= rest; p++ {
		for rest%p == 0 {
			factors[p]++
			rest /= p
		}
	}
	if rest > 1 {
		factors[rest]++
	}

	var g int64
	for _, e := range factors {
		g = rational.GCD(g, e)
	}
	if g <= 1 {
		return n, 1
	}
	base = 1
	for p, e := range factors {
		base *= ipow(p, e/g)
	}
	return base, g
}

// LogValue is Whole + Coeff·log_Base(Arg). Arg 1 means no log part.
type LogValue struct {
	Whole, Coeff rational.Rational
	Base, Arg    int64
}

// SimplifyLog writes log_a(p) as n/m + (1/m)·log_b(q), where a = b^m
// and p = b^n·q with q not divisible by b. a and p must be at least 2.
func SimplifyLog(a, p int64) (LogValue, error) {
	if a < 2 || p < 2 {
		return LogValue{}, fmt.Errorf("%w: log_%d(%d)", domain.ErrInvalidRange, a, p)
	}
	b, m := PerfectPower(a)
	n, q := int64(0), p
	for q%b == 0 {
		q /= b
		n++
	}
	return LogValue{
		Whole: rational.MustNew(n, m),
		Coeff: rational.MustNew(1, m),
		Base:  b,
		Arg:   q,
	}, nil
}

// Scale returns k times v
func (v LogValue) Scale(k rational.Rational) LogValue {
	v.Whole = v.Whole.Mul(k)
	v.Coeff = v.Coeff.Mul(k)
	return v
}

// Tex renders the value, eliding a zero whole part
func (v LogValue) Tex() string {
	var terms []markup.Term
	if !v.Whole.IsZero() {
		terms = append(terms, markup.RatTerm(v.Whole, "", 0))
	}
	if v.Arg != 1 && !v.Coeff.IsZero() {
		terms = append(terms, markup.RatTerm(v.Coeff, logTex(fmt.Sprint(v.Base), fmt.Sprint(v.Arg)), 1))
	}
	return markup.Sum(terms)
}

func logTex(base, arg string) string {
	return fmt.Sprintf(`\log_{%s}{%s}`, base, arg)
}

func generateExponential(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, expCalculation, expEquation, logCalculation, logEquation)
	if err != nil {
		return domain.Problem{}, err
	}

	var p domain.Problem
	switch mode {
	case expCalculation:
		p, err = exponentCalculation(src, req)
	case expEquation:
		p, err = exponentEquation(src, req)
	case logCalculation:
		p, err = logarithmCalculation(src, req)
	case logEquation:
		p, err = logarithmEquation(src, req)
	}
	if err != nil {
		return domain.Problem{}, fmt.Errorf("exponential %s: %w", mode, err)
	}
	return stamp(p, ExponentialLogarithm, mode, req.Difficulty), nil
}

// expFactor is Value^Exp with a non-integer exponent
type expFactor struct {
	value int64
	exp   rational.Rational
}

// Tex uses a root where the denominator is 2 or 3, and the root's value
// when it is exact
func (f expFactor) Tex() string {
	num, den := f.exp.Num(), f.exp.Den()
	var root, exactRoot int64
	var exact bool
	switch den {
	case 2:
		exactRoot, exact = radical.Isqrt(f.value), radical.IsPerfectSquare(f.value)
		root = 2
	case 3:
		exactRoot, exact = radical.Icbrt(f.value), radical.IsPerfectCube(f.value)
		root = 3
	default:
		return fmt.Sprintf("%d^{%s}", f.value, f.exp.Tex())
	}

	if exact {
		if num == 1 {
			return fmt.Sprint(exactRoot)
		}
		return fmt.Sprintf("%d^{%d}", exactRoot, num)
	}
	body := markup.Sqrt(fmt.Sprint(f.value))
	if root == 3 {
		body = fmt.Sprintf(`\sqrt[3]{%d}`, f.value)
	}
	if num == 1 {
		return body
	}
	return fmt.Sprintf("(%s)^{%d}", body, num)
}

// fractionalExponent draws n/d in lowest terms with d in [2, 4] and
// 0 < |n| ≤ 5, never an integer
func fractionalExponent(src *sampler.Source) rational.Rational {
	den := src.Int(2, 4)
	var nums []int64
	for n := int64(-5); n <= 5; n++ {
		if n%den != 0 {
			nums = append(nums, n)
		}
	}
	return rational.MustNew(sampler.Pick(src, nums), den)
}

// exponentCalculation draws b^{p₁r₁} ∘ b^{p₂r₂} ∘ b^{p₃r₃} for × and ÷
// whose total exponent is a small integer
func exponentCalculation(src *sampler.Source, req Request) (domain.Problem, error) {
	type draw struct {
		base    int64
		factors [3]expFactor
		mul     [2]bool
		total   int64
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		v := draw{base: src.Int(2, 4)}
		total := rational.Zero
		for i := range v.factors {
			p := src.Int(1, 3)
			v.factors[i] = expFactor{value: ipow(v.base, p), exp: fractionalExponent(src)}
			e := v.factors[i].exp.MulInt(p)
			if i > 0 {
				v.mul[i-1] = src.Chance(0.5)
				if !v.mul[i-1] {
					e = e.Neg()
				}
			}
			total = total.Add(e)
		}
		if !total.IsInt() || abs(total.Num()) > expTotalMax {
			return draw{}, sampler.Reject("total exponent %s", total)
		}
		v.total = total.Num()
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	display := v.factors[0].Tex()
	for i, mul := range v.mul {
		op := `\div`
		if mul {
			op = `\times`
		}
		display += fmt.Sprintf(" %s %s", op, v.factors[i+1].Tex())
	}
	return domain.Problem{
		Display: display,
		Answer:  ratPow(v.base, v.total).Tex(),
		Key:     "exp_calc:" + display,
	}, nil
}

// exponentEquation draws a^{bx+c} = d^y with d = a^k and y = (bx+c)/k
func exponentEquation(src *sampler.Source, req Request) (domain.Problem, error) {
	type draw struct {
		x, a, b, c, e int64
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		v := draw{x: src.Int(-3, 3), a: src.Int(2, 4), b: src.Int(1, 3), c: src.Int(-3, 3)}
		v.e = v.b*v.x + v.c
		if v.e == 0 || v.e == 1 {
			return draw{}, sampler.Reject("exponent %d", v.e)
		}
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	k := src.Int(2, 4)
	d := ipow(v.a, k)
	y := rational.MustNew(v.e, k)

	var rhs string
	switch {
	case v.e > 0 && ipow(v.a, v.e) < expIntegerRHSMax && src.Chance(1.0/3):
		rhs = fmt.Sprint(ipow(v.a, v.e))
	case y.IsInt():
		rhs = fmt.Sprintf("%d^{%d}", d, y.Num())
	case src.Chance(0.5):
		content := fmt.Sprint(d)
		if n := abs(y.Num()); n != 1 {
			content = fmt.Sprintf("%d^{%d}", d, n)
		}
		rhs = markup.Sqrt(content)
		if y.Den() != 2 {
			rhs = fmt.Sprintf(`\sqrt[%d]{%s}`, y.Den(), content)
		}
		if y.Num() < 0 {
			rhs = markup.Frac("1", rhs)
		}
	default:
		rhs = fmt.Sprintf("%d^{%s}", d, y.Tex())
	}

	display := markup.Equation(fmt.Sprintf("%d^{%s}", v.a, markup.Poly(polynomial.Linear(v.b, v.c), "x")), rhs)
	return domain.Problem{
		Display: display,
		Answer:  markup.Assign("x", rational.FromInt(v.x)),
		Key:     "exp_eq:" + display,
	}, nil
}

// logBase is a logarithm base: an integer, 1/d or the r-th root of R.
// A logarithm to this base equals scale times the logarithm to reduced.
type logBase struct {
	tex     string
	reduced int64
	scale   rational.Rational
}

func drawLogBase(src *sampler.Source, integer bool) logBase {
	kind := "integer"
	if !integer {
		kind = sampler.Pick(src, []string{"integer", "fraction", "root"})
	}
	switch kind {
	case "fraction":
		d := src.Int(2, 4)
		return logBase{tex: markup.Frac("1", fmt.Sprint(d)), reduced: d, scale: rational.FromInt(-1)}
	case "root":
		r, radicand := src.Int(2, 3), src.Int(2, 5)
		tex := markup.Sqrt(fmt.Sprint(radicand))
		if r == 3 {
			tex = fmt.Sprintf(`\sqrt[3]{%d}`, radicand)
		}
		return logBase{tex: tex, reduced: radicand, scale: rational.FromInt(r)}
	}
	b := src.Int(2, 9)
	return logBase{tex: fmt.Sprint(b), reduced: b, scale: rational.One}
}

// logarithmCalculation draws one of five patterns. The first four
// evaluate to an integer; the last combines log_B(m) + log_B(n) into its
// simplest form.
func logarithmCalculation(src *sampler.Source, req Request) (domain.Problem, error) {
	pattern := src.Int(1, 5)
	base := drawLogBase(src, pattern < 5)
	b := base.reduced
	log := func(arg int64) string { return logTex(base.tex, fmt.Sprint(arg)) }

	var display, answer string
	switch pattern {
	case 1:
		e1, e2 := src.Int(2, 4), src.Int(2, 4)
		display = log(ipow(b, e1)) + " + " + log(ipow(b, e2))
		answer = fmt.Sprint(e1 + e2)
	case 2:
		e1 := src.Int(4, 6)
		e2 := src.Int(2, e1-1)
		display = log(ipow(b, e1)) + " - " + log(ipow(b, e2))
		answer = fmt.Sprint(e1 - e2)
	case 3:
		k, e := src.Int(2, 4), src.Int(2, 3)
		display = fmt.Sprintf("%d%s", k, log(ipow(b, e)))
		answer = fmt.Sprint(k * e)
	case 4:
		e := src.Int(2, 4)
		display = log(ipow(b, e))
		answer = fmt.Sprint(e)
	default:
		res, err := sampler.Draw(req.attempts(), func() ([2]int64, error) {
			m, n := src.Int(2, 10), src.Int(2, 10)
			if m == b || n == b || m*n == b {
				return [2]int64{}, sampler.Reject("argument equals base %d", b)
			}
			return [2]int64{m, n}, nil
		})
		if err != nil {
			return domain.Problem{}, err
		}
		m, n := res.Value[0], res.Value[1]
		v, err := SimplifyLog(b, m*n)
		if err != nil {
			return domain.Problem{}, err
		}
		display = log(m) + " + " + log(n)
		answer = v.Scale(base.scale).Tex()
	}
	return domain.Problem{
		Display: display,
		Answer:  answer,
		Key:     "log_calc:" + display,
	}, nil
}

func logarithmEquation(src *sampler.Source, req Request) (domain.Problem, error) {
	switch src.Int(1, 4) {
	case 1:
		return logEqualLogs(src, req)
	case 2:
		return logQuadratic(src, req)
	case 3:
		return logLinearInequality(src, req)
	}
	return logQuadraticInequality(src, req)
}

// logEqualLogs draws log_A(bx+c) = log_A(dx+e) with A in {k, 1/k, k²}
func logEqualLogs(src *sampler.Source, req Request) (domain.Problem, error) {
	k := src.Int(2, 4)
	baseTex := sampler.Pick(src, []string{fmt.Sprint(k), markup.Frac("1", fmt.Sprint(k)), fmt.Sprint(k * k)})

	type draw struct {
		b, c, d, e int64
		x          rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		v := draw{b: src.Int(1, 3), c: src.Int(-5, 5), d: src.Int(1, 3), e: src.Int(-5, 5)}
		x, err := rational.New(v.e-v.c, v.b-v.d)
		if err != nil {
			return draw{}, err
		}
		// the arguments agree at x
		if x.MulInt(v.b).Add(rational.FromInt(v.c)).Sign() <= 0 {
			return draw{}, sampler.Reject("x = %s outside the domain", x)
		}
		if abs(x.Num()) > logSolutionNum || x.Den() > logSolutionDen {
			return draw{}, sampler.Reject("x = %s too large", x)
		}
		v.x = x
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	arg := func(a, b int64) string { return "(" + markup.Poly(polynomial.Linear(a, b), "x") + ")" }
	display := markup.Equation(logTex(baseTex, arg(v.b, v.c)), logTex(baseTex, arg(v.d, v.e)))
	return domain.Problem{
		Display: display,
		Answer:  markup.Assign("x", v.x),
		Key:     "log_eq:" + display,
	}, nil
}

// logQuadratic draws A·L² + B·L + C = 0 with L = log_a(bx+c), whose
// roots in L are integers and whose solutions in x are integers
func logQuadratic(src *sampler.Source, req Request) (domain.Problem, error) {
	type draw struct {
		qa, qb, qc int64
		a, b, c    int64
		xs         []rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		v := draw{qa: src.Int(1, 2), qb: src.NonZero(-3, 3), qc: src.Int(-5, 5)}
		if v.qb*v.qb-4*v.qa*v.qc < 0 {
			return draw{}, sampler.Reject("no real root in L")
		}
		roots, err := SolveQuadratic(v.qa, v.qb, v.qc)
		if err != nil {
			return draw{}, err
		}
		if !roots.Rational() {
			return draw{}, sampler.Reject("irrational roots in L")
		}

		v.a, v.b, v.c = src.Int(2, 5), src.NonZero(-3, 3), src.Int(-5, 5)
		for _, y := range roots.Roots {
			if !y.IsInt() || abs(y.Num()) > logRootMax {
				return draw{}, sampler.Reject("root L = %s", y)
			}
			x, err := ratPow(v.a, y.Num()).Sub(rational.FromInt(v.c)).Div(rational.FromInt(v.b))
			if err != nil {
				return draw{}, err
			}
			if !x.IsInt() {
				return draw{}, sampler.Reject("x = %s not integral", x)
			}
			v.xs = append(v.xs, x)
		}
		sort.Slice(v.xs, func(i, j int) bool { return v.xs[i].Cmp(v.xs[j]) < 0 })
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	l := logTex(fmt.Sprint(v.a), "("+markup.Poly(polynomial.Linear(v.b, v.c), "x")+")")
	terms := []markup.Term{
		markup.IntTerm(v.qa, markup.Squared("("+l+")"), 1),
		markup.IntTerm(v.qb, l, 1),
	}
	if v.qc != 0 {
		terms = append(terms, markup.IntTerm(v.qc, "", 0))
	}
	display := markup.Equation(markup.Sum(terms), "0")
	return domain.Problem{
		Display: display,
		Answer:  solutionsTex(v.xs),
		Key:     "log_quad:" + display,
	}, nil
}

// logLinearInequality draws log_a(bx+c) REL d. With a > 1 it is
// bx + c REL a^d together with the domain bx + c > 0.
func logLinearInequality(src *sampler.Source, req Request) (domain.Problem, error) {
	type draw struct {
		a, b, c, d int64
		edge       rational.Rational
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		v := draw{a: src.Int(2, 4), b: src.NonZero(-3, 3), c: src.Int(-5, 5), d: src.Int(1, 3)}
		edge := rational.MustNew(ipow(v.a, v.d)-v.c, v.b)
		if !edge.IsInt() || abs(edge.Num()) >= logSolutionNum {
			return draw{}, sampler.Reject("boundary %s", edge)
		}
		v.edge = edge
		return v, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	rel := sampler.Pick(src, relations)
	domainEdge := rational.MustNew(-v.c, v.b)

	var answer string
	switch {
	case rel.Lower() && v.b > 0:
		answer = solutionTex(v.edge, rel)
	case rel.Lower():
		answer = solutionTex(v.edge, rel.Flip())
	case v.b > 0:
		answer = fmt.Sprintf("%s < x %s %s", domainEdge.Tex(), rel, v.edge.Tex())
	default:
		answer = fmt.Sprintf("%s %s x < %s", v.edge.Tex(), rel, domainEdge.Tex())
	}

	display := fmt.Sprintf("%s %s %d", logTex(fmt.Sprint(v.a), "("+markup.Poly(polynomial.Linear(v.b, v.c), "x")+")"), rel, v.d)
	return domain.Problem{
		Display: display,
		Answer:  answer,
		Key:     "log_ineq:" + display,
	}, nil
}

// logQuadraticInequality draws log_a(b(x-r₁)(x-r₂) + K) REL e with
// K = a^e. The argument stays positive because b(r₁-r₂)² < 4K, so the
// inequality reduces to b(x-r₁)(x-r₂) REL 0.
func logQuadraticInequality(src *sampler.Source, req Request) (domain.Problem, error) {
	a, e := src.Int(2, 4), src.Int(1, 2)
	k := ipow(a, e)

	type draw struct {
		poly   polynomial.Poly
		r1, r2 int64
	}
	res, err := sampler.Draw(req.attempts(), func() (draw, error) {
		b, r1, r2 := src.Int(1, 3), src.Int(-3, 3), src.Int(-3, 3)
		if r1 == r2 || b*(r1-r2)*(r1-r2) >= 4*k {
			return draw{}, sampler.Reject("roots %d, %d", r1, r2)
		}
		c, d := -b*(r1+r2), b*r1*r2+k
		if c == 0 || d == 0 {
			return draw{}, sampler.Reject("missing term")
		}
		return draw{polynomial.Poly{d, c, b}, min(r1, r2), max(r1, r2)}, nil
	})
	if err != nil {
		return domain.Problem{}, err
	}

	v := res.Value
	rel := sampler.Pick(src, relations)
	var answer string
	if rel.Lower() {
		answer = fmt.Sprintf("x %s %d, x %s %d", rel.Flip(), v.r1, rel, v.r2)
	} else {
		answer = fmt.Sprintf("%d %s x %s %d", v.r1, rel, rel, v.r2)
	}
	display := fmt.Sprintf("%s %s %d", logTex(fmt.Sprint(a), "("+markup.Poly(v.poly, "x")+")"), rel, e)
	return domain.Problem{
		Display: display,
		Answer:  answer,
		Key:     "log_quad_ineq:" + display,
	}, nil
}
