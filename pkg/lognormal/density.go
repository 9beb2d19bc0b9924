package lognormal

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is one evaluation of the fitted density.
type Point struct {
	X       float64 `json:"x" yaml:"x"`
	Density float64 `json:"density" yaml:"density"`
}

// Curve evaluates the density at n evenly spaced points over [lo, hi].
// Both ends are included, so n must be at least 2.
func (f *Fit) Curve(lo, hi float64, n int) ([]Point, error) {
	if n < 2 {
		return nil, fmt.Errorf("density curve needs at least 2 points, got %d", n)
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	curve := make([]Point, n)
	for i, x := range xs {
		curve[i] = Point{X: x, Density: f.PDF(x)}
	}
	return curve, nil
}

// Bins is a density-normalised histogram: Edges has one more entry than
// Density and the densities integrate to one.
type Bins struct {
	Edges   []float64 `json:"edges" yaml:"edges"`
	Density []float64 `json:"density" yaml:"density"`
}

// Histogram bins the sample over its own range with equal-width bins. The
// last bin is closed so the maximum is counted. A constant sample is binned
// over [v-0.5, v+0.5].
func Histogram(sample []float64, bins int) Bins {
	if len(sample) == 0 || bins < 1 {
		return Bins{}
	}
	x := append([]float64(nil), sample...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)

	// stat.Histogram treats the upper divider as exclusive.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	width := (hi - lo) / float64(bins)
	norm := float64(len(x)) * width
	floats.Scale(1/norm, counts)
	return Bins{Edges: edges, Density: counts}
}
