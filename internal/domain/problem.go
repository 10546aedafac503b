package domain

import "time"

// Problem is a generated exercise: the markup shown to the learner and the
// markup of its worked answer.
type Problem struct {
	Display string `json:"display"`
	Answer  string `json:"answer"`

	// Key is a canonical encoding of the problem's structure. Two problems
	// with equal keys are the same exercise even if their markup differs.
	Key string `json:"key,omitempty"`

	Topic      string     `json:"topic,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`

	// Fallback marks a placeholder returned after generation was exhausted
	Fallback bool `json:"fallback,omitempty"`
}

// Identity returns the value used to detect duplicates in a batch
func (p Problem) Identity() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Display
}

// Worksheet is a batch of problems generated together for one quiz session
type Worksheet struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Mode       string     `json:"mode"`
	Subtype    string     `json:"subtype,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	Seed       int64      `json:"seed"`
	Problems   []Problem  `json:"problems"`
	Fallbacks  int        `json:"fallbacks"`
	CreatedAt  time.Time  `json:"created_at"`
}

// View selects which side of each problem card is shown
type View string

const (
	ViewProblems View = "problems"
	ViewAnswers  View = "answers"
)

// ParseView parses a view name, defaulting to ViewProblems
func ParseView(s string) View {
	if View(s) == ViewAnswers {
		return ViewAnswers
	}
	return ViewProblems
}

// Markup returns the display or answer markup of every problem in order
func (w *Worksheet) Markup(v View) []string {
	out := make([]string, len(w.Problems))
	for i, p := range w.Problems {
		if v == ViewAnswers {
			out[i] = p.Answer
		} else {
			out[i] = p.Display
		}
	}
	return out
}

// Complete reports whether every slot holds a real problem
func (w *Worksheet) Complete() bool {
	return w.Fallbacks == 0
}
