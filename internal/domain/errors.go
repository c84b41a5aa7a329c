package domain

import "errors"

var (
	// ErrInvalidInput marks malformed query or record text.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidFlight marks a flight that breaks a construction invariant.
	ErrInvalidFlight = errors.New("invalid flight")
	// ErrDegenerateQuery is returned when origin and destination are the same.
	ErrDegenerateQuery = errors.New("origin and destination must differ")
)
