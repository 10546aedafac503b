package sampler

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

// DefaultMaxAttempts bounds a rejection loop when the caller sets no cap
const DefaultMaxAttempts = 1000

// ErrRejected marks a candidate that failed an acceptance predicate
var ErrRejected = errors.New("candidate rejected")

// Reject returns an error wrapping ErrRejected with a reason
func Reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}

// Status is the terminal state of a rejection loop
type Status int

const (
	StatusAccepted Status = iota
	StatusExhausted
)

func (s Status) String() string {
	if s == StatusExhausted {
		return "exhausted"
	}
	return "accepted"
}

// Result is the outcome of Draw
type Result[T any] struct {
	Value    T
	Status   Status
	Attempts int
	// LastReason is the rejection that ended an exhausted loop
	LastReason error
}

// Accepted reports whether Value holds an accepted candidate
func (r Result[T]) Accepted() bool {
	return r.Status == StatusAccepted
}

// Draw calls candidate until it returns a nil error, at most maxAttempts
// times. Rejections and arithmetic failures (domain.ErrDivisionByZero)
// trigger a redraw. Any other error is returned immediately. When the cap
// is reached the result is StatusExhausted and the error wraps
// domain.ErrGenerationExhausted.
func Draw[T any](maxAttempts int, candidate func() (T, error)) (Result[T], error) {
	if maxAttempts < 1 {
		return Result[T]{}, fmt.Errorf("max attempts %d: %w", maxAttempts, domain.ErrInvalidRange)
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := candidate()
		if err == nil {
			return Result[T]{Value: v, Status: StatusAccepted, Attempts: attempt}, nil
		}
		if !retryable(err) {
			return Result[T]{Attempts: attempt}, err
		}
		last = err
	}

	res := Result[T]{Status: StatusExhausted, Attempts: maxAttempts, LastReason: last}
	return res, fmt.Errorf("%w after %d attempts (last: %v)", domain.ErrGenerationExhausted, maxAttempts, last)
}

func retryable(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, domain.ErrDivisionByZero)
}

// Attempts returns n, or DefaultMaxAttempts when n is not positive
func Attempts(n int) int {
	if n > 0 {
		return n
	}
	return DefaultMaxAttempts
}
