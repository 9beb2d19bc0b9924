package models

import (
	"fmt"
	"math"
)

// Field is a 2D scalar field derived from image luminance.
// Values are stored row-major: Data[i*Width+j] holds row i, column j.
type Field struct {
	// Data is the field as a 1D array in row-major order
	Data []float64

	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int
}

// NewField validates the dimensions and values and returns a Field.
// Every value must be finite and non-negative.
func NewField(width, height int, data []float64) (*Field, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidField, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: got %d values for %dx%d", ErrInvalidField, len(data), width, height)
	}
	for idx, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: value %v at row %d, column %d", ErrInvalidField, v, idx/width, idx%width)
		}
	}
	return &Field{Data: data, Width: width, Height: height}, nil
}

// FieldFromRows builds a Field from a slice of equally long rows.
func FieldFromRows(rows [][]float64) (*Field, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidField)
	}
	width := len(rows[0])
	data := make([]float64, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidField, i, len(row), width)
		}
		data = append(data, row...)
	}
	return NewField(width, len(rows), data)
}

// At returns the value at row i, column j.
func (f *Field) At(i, j int) float64 {
	return f.Data[i*f.Width+j]
}

// ScaleSet is an ordered sequence of distinct positive pixel offsets.
type ScaleSet []int

// DefaultScales are the offsets used when no scale set is configured.
var DefaultScales = ScaleSet{1, 2, 5, 10, 20}

// Validate checks that every scale is positive and appears once.
func (s ScaleSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty scale set", ErrInvalidScale)
	}
	seen := make(map[int]struct{}, len(s))
	for _, scale := range s {
		if scale <= 0 {
			return &ScaleError{Scale: scale, Err: ErrInvalidScale}
		}
		if _, dup := seen[scale]; dup {
			return &ScaleError{Scale: scale, Err: ErrDuplicateScale}
		}
		seen[scale] = struct{}{}
	}
	return nil
}

// Samples maps a scale to its absolute increment sample.
type Samples map[int][]float64
