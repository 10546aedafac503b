package topic

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
)

// trigRow holds the exact values at one standard angle. An empty value
// is undefined.
type trigRow struct {
	degrees int
	radians string
	values  map[string]string
}

var trigFuncs = []string{"sin", "cos", "tan"}

var trigTable = []trigRow{
	{0, "0", map[string]string{"sin": "0", "cos": "1", "tan": "0"}},
	{30, `\frac{\pi}{6}`, map[string]string{"sin": `\frac{1}{2}`, "cos": `\frac{\sqrt{3}}{2}`, "tan": `\frac{1}{\sqrt{3}}`}},
	{45, `\frac{\pi}{4}`, map[string]string{"sin": `\frac{\sqrt{2}}{2}`, "cos": `\frac{\sqrt{2}}{2}`, "tan": "1"}},
	{60, `\frac{\pi}{3}`, map[string]string{"sin": `\frac{\sqrt{3}}{2}`, "cos": `\frac{1}{2}`, "tan": `\sqrt{3}`}},
	{90, `\frac{\pi}{2}`, map[string]string{"sin": "1", "cos": "0", "tan": ""}},
	{120, `\frac{2\pi}{3}`, map[string]string{"sin": `\frac{\sqrt{3}}{2}`, "cos": `-\frac{1}{2}`, "tan": `-\sqrt{3}`}},
	{135, `\frac{3\pi}{4}`, map[string]string{"sin": `\frac{\sqrt{2}}{2}`, "cos": `-\frac{\sqrt{2}}{2}`, "tan": "-1"}},
	{150, `\frac{5\pi}{6}`, map[string]string{"sin": `\frac{1}{2}`, "cos": `-\frac{\sqrt{3}}{2}`, "tan": `-\frac{1}{\sqrt{3}}`}},
	{180, `\pi`, map[string]string{"sin": "0", "cos": "-1", "tan": "0"}},
	{210, `\frac{7\pi}{6}`, map[string]string{"sin": `-\frac{1}{2}`, "cos": `-\frac{\sqrt{3}}{2}`, "tan": `\frac{1}{\sqrt{3}}`}},
	{225, `\frac{5\pi}{4}`, map[string]string{"sin": `-\frac{\sqrt{2}}{2}`, "cos": `-\frac{\sqrt{2}}{2}`, "tan": "1"}},
	{240, `\frac{4\pi}{3}`, map[string]string{"sin": `-\frac{\sqrt{3}}{2}`, "cos": `-\frac{1}{2}`, "tan": `\sqrt{3}`}},
	{270, `\frac{3\pi}{2}`, map[string]string{"sin": "-1", "cos": "0", "tan": ""}},
	{300, `\frac{5\pi}{3}`, map[string]string{"sin": `-\frac{\sqrt{3}}{2}`, "cos": `\frac{1}{2}`, "tan": `-\sqrt{3}`}},
	{315, `\frac{7\pi}{4}`, map[string]string{"sin": `-\frac{\sqrt{2}}{2}`, "cos": `\frac{\sqrt{2}}{2}`, "tan": "-1"}},
	{330, `\frac{11\pi}{6}`, map[string]string{"sin": `-\frac{1}{2}`, "cos": `\frac{\sqrt{3}}{2}`, "tan": `-\frac{1}{\sqrt{3}}`}},
	{360, `2\pi`, map[string]string{"sin": "0", "cos": "1", "tan": "0"}},
}

func (r trigRow) angle(mode string) string {
	if mode == "radian" {
		return r.radians
	}
	return fmt.Sprintf(`%d^\circ`, r.degrees)
}

// TrigAngles returns the standard angles in [0°, 360°] where fn takes
// value, in the notation of mode
func TrigAngles(fn, value, mode string) []string {
	var out []string
	for _, r := range trigTable {
		if v := r.values[fn]; v != "" && v == value {
			out = append(out, r.angle(mode))
		}
	}
	return out
}

// trigValues returns the distinct defined values of fn in table order
func trigValues(fn string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range trigTable {
		if v := r.values[fn]; v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// generateTrigonometric asks for a value in the first half of each ten
// problems and for the angles in the second half. The subtype "value" or
// "angle" fixes the question.
func generateTrigonometric(src *sampler.Source, req Request) (domain.Problem, error) {
	mode, err := pickMode(src, req.Mode, "degree", "radian")
	if err != nil {
		return domain.Problem{}, err
	}
	question := "value"
	if req.Index%10 >= 5 {
		question = "angle"
	}
	switch req.Subtype {
	case "":
	case "value", "angle":
		question = req.Subtype
	default:
		return domain.Problem{}, fmt.Errorf("%w: subtype %q", domain.ErrUnknownMode, req.Subtype)
	}

	fn := sampler.Pick(src, trigFuncs)
	var p domain.Problem
	if question == "value" {
		row := sampler.Pick(src, trigTable)
		for row.values[fn] == "" {
			fn = sampler.Pick(src, trigFuncs)
		}
		p = domain.Problem{
			Display: fmt.Sprintf(`\%s(%s)`, fn, row.angle(mode)),
			Answer:  row.values[fn],
		}
	} else {
		value := sampler.Pick(src, trigValues(fn))
		rng := `0^\circ \le \theta \le 360^\circ`
		if mode == "radian" {
			rng = `0 \le \theta \le 2\pi`
		}
		p = domain.Problem{
			Display: fmt.Sprintf(`\%s\theta = %s \quad (%s)`, fn, value, rng),
			Answer:  `\theta = ` + strings.Join(TrigAngles(fn, value, mode), ", "),
		}
	}
	p.Key = "trig:" + p.Display
	return stamp(p, Trigonometric, mode, req.Difficulty), nil
}
