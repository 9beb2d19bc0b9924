// Package structure computes rescaled structure-function moments of
// increment samples across scales.
//
// The n-th order value at scale s is the raw moment mean(|dI|^n) multiplied
// by (s/epsilon)^(-n/3), the refined-similarity scaling of a structure
// function of order n.
package structure

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"lumturb/internal/models"
)

const (
	// DefaultEpsilon is the dissipation scale used when none is configured.
	DefaultEpsilon = 0.1

	// DefaultMaxOrder is the highest moment order computed by default.
	DefaultMaxOrder = 5
)

// Options configures the analysis.
type Options struct {
	// Epsilon is the dissipation scale. It must be positive.
	Epsilon float64

	// MaxOrder is the highest moment order; orders 1..MaxOrder are computed.
	MaxOrder int

	// Workers bounds the number of (order, scale) cells computed at once.
	// Zero means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns epsilon 0.1 and orders 1 to 5.
func DefaultOptions() Options {
	return Options{Epsilon: DefaultEpsilon, MaxOrder: DefaultMaxOrder}
}

// Moments holds one field's rescaled moments. Values[n][k] is the order-n
// value at Scales[k].
type Moments struct {
	Scales  models.ScaleSet   `json:"scales" yaml:"scales"`
	Epsilon float64           `json:"epsilon" yaml:"epsilon"`
	Values  map[int][]float64 `json:"values" yaml:"values"`
}

// Orders returns the moment orders in ascending order.
func (m *Moments) Orders() []int {
	orders := make([]int, 0, len(m.Values))
	for n := range m.Values {
		orders = append(orders, n)
	}
	sort.Ints(orders)
	return orders
}

// Analyze computes orders 1..opts.MaxOrder for every scale in scales.
// A scale whose sample is missing or empty fails the whole analysis with
// ErrEmptySample rather than producing an undefined moment.
func Analyze(ctx context.Context, samples models.Samples, scales models.ScaleSet, opts Options) (*Moments, error) {
	if !(opts.Epsilon > 0) || math.IsInf(opts.Epsilon, 0) {
		return nil, fmt.Errorf("%w: got %v", models.ErrInvalidEpsilon, opts.Epsilon)
	}
	if opts.MaxOrder < 1 {
		return nil, fmt.Errorf("max order must be at least 1, got %d", opts.MaxOrder)
	}
	if err := scales.Validate(); err != nil {
		return nil, err
	}
	for _, s := range scales {
		if len(samples[s]) == 0 {
			return nil, &models.ScaleError{Scale: s, Err: models.ErrEmptySample}
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	values := make(map[int][]float64, opts.MaxOrder)
	for n := 1; n <= opts.MaxOrder; n++ {
		values[n] = make([]float64, len(scales))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for n := 1; n <= opts.MaxOrder; n++ {
		row := values[n]
		for k, s := range scales {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				row[k] = RawMoment(samples[s], n) * Rescale(s, n, opts.Epsilon)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("computing moments: %w", err)
	}

	return &Moments{
		Scales:  append(models.ScaleSet(nil), scales...),
		Epsilon: opts.Epsilon,
		Values:  values,
	}, nil
}

// RawMoment returns mean(x^n) using a Neumaier-compensated sum. It returns
// NaN for an empty sample; Analyze never calls it with one.
func RawMoment(sample []float64, n int) float64 {
	if len(sample) == 0 {
		return math.NaN()
	}
	var sum, comp float64
	for _, v := range sample {
		term := pow(v, n)
		t := sum + term
		if math.Abs(sum) >= math.Abs(term) {
			comp += (sum - t) + term
		} else {
			comp += (term - t) + sum
		}
		sum = t
	}
	return (sum + comp) / float64(len(sample))
}

// Rescale returns (scale/epsilon)^(-n/3).
func Rescale(scale, n int, epsilon float64) float64 {
	return math.Pow(float64(scale)/epsilon, -float64(n)/3)
}

func pow(v float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= v
	}
	return r
}
