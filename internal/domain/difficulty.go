package domain

import (
	"fmt"
	"strings"
)

// Difficulty scales the ranges every random draw is taken from
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the named levels as well as the numeric form 1-3.
// An empty string yields DifficultyNormal.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "2":
		return DifficultyNormal, nil
	case "easy", "1":
		return DifficultyEasy, nil
	case "hard", "3":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Level returns the numeric level (1 easy, 2 normal, 3 hard).
func (d Difficulty) Level() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Valid reports whether d is one of the known levels
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyNormal || d == DifficultyHard
}

func (d Difficulty) String() string {
	return string(d)
}
