// Package compare runs order-by-order two-sample t-tests between the moment
// profiles of two fields.
package compare

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"lumturb/internal/models"
	"lumturb/pkg/structure"
)

// Options selects the test variant.
type Options struct {
	// Welch uses the unequal-variance test instead of the pooled one.
	Welch bool
}

// TTest is the outcome of one two-sample test.
type TTest struct {
	Statistic float64 `json:"t_stat" yaml:"t_stat"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	DF        float64 `json:"df" yaml:"df"`
}

// Result maps a moment order to its test outcome.
type Result map[int]TTest

// Orders returns the tested orders in ascending order.
func (r Result) Orders() []int {
	orders := make([]int, 0, len(r))
	for n := range r {
		orders = append(orders, n)
	}
	sort.Ints(orders)
	return orders
}

// Significant returns the orders whose p-value is below alpha.
func (r Result) Significant(alpha float64) []int {
	var orders []int
	for _, n := range r.Orders() {
		if r[n].PValue < alpha {
			orders = append(orders, n)
		}
	}
	return orders
}

// Compare tests every order present in both profiles. The two profiles may
// have been computed over scale sets of different lengths; the sequences are
// compared as they are.
func Compare(a, b *structure.Moments, opts Options) (Result, error) {
	result := make(Result)
	for n, x := range a.Values {
		y, ok := b.Values[n]
		if !ok {
			continue
		}
		tt, err := TwoSample(x, y, opts.Welch)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", n, err)
		}
		result[n] = tt
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no moment order in common", models.ErrInsufficientData)
	}
	return result, nil
}

// TwoSample runs an independent two-sample t-test with a two-sided p-value.
//
// When the standard error is zero the test is decided by the means alone:
// equal means give t=0 and p=1, different means give an infinite t and p=0.
func TwoSample(x, y []float64, welch bool) (TTest, error) {
	n1, n2 := float64(len(x)), float64(len(y))
	if len(x) == 0 || len(y) == 0 {
		return TTest{}, fmt.Errorf("%w: %d and %d values", models.ErrInsufficientData, len(x), len(y))
	}
	if welch && (len(x) < 2 || len(y) < 2) {
		return TTest{}, fmt.Errorf("%w: welch test needs two values per group", models.ErrInsufficientData)
	}
	if n1+n2-2 <= 0 {
		return TTest{}, fmt.Errorf("%w: no degrees of freedom", models.ErrInsufficientData)
	}

	m1, v1 := meanVariance(x)
	m2, v2 := meanVariance(y)

	var se, df float64
	if welch {
		a, b := v1/n1, v2/n2
		se = math.Sqrt(a + b)
		df = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
	} else {
		df = n1 + n2 - 2
		pooled := ((n1-1)*v1 + (n2-1)*v2) / df
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
	}

	diff := m1 - m2
	if se == 0 {
		if math.IsNaN(df) {
			df = n1 + n2 - 2
		}
		if diff == 0 {
			return TTest{Statistic: 0, PValue: 1, DF: df}, nil
		}
		return TTest{Statistic: math.Copysign(math.Inf(1), diff), PValue: 0, DF: df}, nil
	}

	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TTest{Statistic: t, PValue: 2 * dist.Survival(math.Abs(t)), DF: df}, nil
}

// meanVariance returns the mean and unbiased variance; a single value has
// zero variance.
func meanVariance(x []float64) (mean, variance float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanVariance(x, nil)
}
