package models

import (
	"errors"
	"fmt"
)

// Domain errors for the roughness analysis.
var (
	// ErrInvalidField indicates a field with bad dimensions or values.
	ErrInvalidField = errors.New("lumturb: invalid scalar field")

	// ErrInvalidScale indicates a non-positive scale.
	ErrInvalidScale = errors.New("lumturb: scale must be a positive integer")

	// ErrDuplicateScale indicates a scale listed more than once.
	ErrDuplicateScale = errors.New("lumturb: duplicate scale")

	// ErrInvalidLambda indicates a non-positive lambda for the log-normal fit.
	ErrInvalidLambda = errors.New("lumturb: lambda must be positive")

	// ErrInvalidEpsilon indicates a non-positive dissipation scale.
	ErrInvalidEpsilon = errors.New("lumturb: epsilon must be positive")

	// ErrEmptyPositiveSample indicates a sample without strictly positive values.
	ErrEmptyPositiveSample = errors.New("lumturb: sample has no positive values")

	// ErrEmptySample indicates a moment requested over an empty sample.
	ErrEmptySample = errors.New("lumturb: empty sample")

	// ErrInsufficientData indicates a t-test without enough degrees of freedom.
	ErrInsufficientData = errors.New("lumturb: not enough values for comparison")
)

// ScaleError wraps an error with the scale it occurred at.
type ScaleError struct {
	Scale int
	Err   error
}

func (e *ScaleError) Error() string {
	return fmt.Sprintf("scale %d: %v", e.Scale, e.Err)
}

func (e *ScaleError) Unwrap() error {
	return e.Err
}
