// Package metrics computes derived clinical values from raw station inputs.
// Every function is pure: no I/O, no state, identical inputs always yield
// identical outputs. Inputs that are absent or non-positive make the value
// incomputable (ErrIncomputable) rather than producing a spurious zero.
package metrics

import "errors"

var (
	// ErrIncomputable means one or more required inputs are absent or
	// non-positive, so the derived value is undefined.
	ErrIncomputable = errors.New("metric incomputable: missing or non-positive input")

	// ErrOutOfRange means an input is present but outside its allowed range.
	ErrOutOfRange = errors.New("metric input out of range")
)

// Band is a qualitative classification of a derived value.
type Band string
