package library

import "errors"

var (
	// ErrValidation indicates empty or invalid user input. No state was
	// mutated; the caller should surface it for correction.
	ErrValidation = errors.New("invalid input")
)
