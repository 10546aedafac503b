package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the engine,
// the topic generators and the delivery layers to communicate failures.
// -----------------------------------------------------------------------------

// Arithmetic errors
var (
	ErrDivisionByZero = errors.New("division by zero")
)

// Generation errors
var (
	ErrInvalidRange        = errors.New("invalid range")
	ErrGenerationExhausted = errors.New("generation exhausted")
)

// Catalog errors
var (
	ErrTopicNotFound     = errors.New("topic not found")
	ErrUnknownMode       = errors.New("unknown mode")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// Worksheet errors
var (
	ErrWorksheetNotFound = errors.New("worksheet not found")
)

// General errors
var (
	ErrInvalidInput = errors.New("invalid input")
)
