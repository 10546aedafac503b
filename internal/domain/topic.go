package domain

// Topic describes one family of generated problems
type Topic struct {
	ID          string   `json:"id"` // slug: "linear", "sqrt"
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Modes       []string `json:"modes"` // structural variants, e.g. "int", "frac"
	DefaultMode string   `json:"default_mode"`
	Subtypes    []string `json:"subtypes,omitempty"` // alternate shapes inside a mode
	Tags        []string `json:"tags,omitempty"`
}

// HasMode reports whether mode is listed for the topic
func (t *Topic) HasMode(mode string) bool {
	for _, m := range t.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ResolveMode returns mode, or the default mode when mode is empty
func (t *Topic) ResolveMode(mode string) (string, error) {
	if mode == "" {
		return t.DefaultMode, nil
	}
	if !t.HasMode(mode) {
		return "", ErrUnknownMode
	}
	return mode, nil
}
