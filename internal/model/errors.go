package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidHorizon   = errors.New("forecast days must be between 1 and 365")
	ErrUnknownModelKind = errors.New("unknown model kind")
	ErrUnorderedSeries  = errors.New("bars are not strictly increasing by date")
	ErrEmptySeries      = errors.New("series has no bars")
	ErrInsufficientData = errors.New("insufficient data")
)

// ValidationError reports a caller input that was rejected before any computation.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientDataError reports that a pipeline stage had too few rows.
type InsufficientDataError struct {
	Stage string
	Rows  int
	Need  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data at %s: have %d rows, need %d", e.Stage, e.Rows, e.Need)
}

// Is makes errors.Is(err, ErrInsufficientData) hold.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
