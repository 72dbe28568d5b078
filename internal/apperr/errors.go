// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound is returned by mutations addressed to an absent note id.
	ErrNotFound = errors.New("not found")
	// ErrIDExhausted is returned when the id generator fails to produce a
	// unique id within the retry bound.
	ErrIDExhausted = errors.New("id space exhausted")
)
