// Package lognormal fits a log-normal model to a scale's increment sample.
package lognormal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"lumturb/internal/models"
)

// DefaultLambda is the shape divisor used when none is configured.
const DefaultLambda = 0.1

// Fit is a log-normal model fitted to one increment sample.
//
// The parameterisation follows the usual (shape, loc, scale) convention:
// log(x) is normal with mean log(Scale) and standard deviation Shape.
type Fit struct {
	// Shape is Sigma/Lambda.
	Shape float64 `json:"shape" yaml:"shape"`

	// Scale is exp(Mu).
	Scale float64 `json:"scale" yaml:"scale"`

	// Loc is always zero.
	Loc float64 `json:"loc" yaml:"loc"`

	// Mu is the mean log of the strictly positive values.
	Mu float64 `json:"mu" yaml:"mu"`

	// Sigma is the population standard deviation of the whole sample.
	Sigma float64 `json:"sigma" yaml:"sigma"`

	// Lambda is the divisor applied to Sigma.
	Lambda float64 `json:"lambda" yaml:"lambda"`

	// N is the sample size and Positive the number of values used for Mu.
	N        int `json:"n" yaml:"n"`
	Positive int `json:"positive" yaml:"positive"`

	dist distuv.LogNormal
}

// New fits the model. Sigma is taken over every value while Mu only uses the
// strictly positive ones, since log(0) is undefined.
func New(sample []float64, lambda float64) (*Fit, error) {
	if !(lambda > 0) {
		return nil, fmt.Errorf("%w: got %v", models.ErrInvalidLambda, lambda)
	}

	var logSum float64
	positive := 0
	for _, v := range sample {
		if v > 0 {
			logSum += math.Log(v)
			positive++
		}
	}
	if positive == 0 {
		return nil, models.ErrEmptyPositiveSample
	}

	sigma := stat.PopStdDev(sample, nil)
	mu := logSum / float64(positive)
	shape := sigma / lambda

	return &Fit{
		Shape:    shape,
		Scale:    math.Exp(mu),
		Mu:       mu,
		Sigma:    sigma,
		Lambda:   lambda,
		N:        len(sample),
		Positive: positive,
		dist:     distuv.LogNormal{Mu: mu, Sigma: shape},
	}, nil
}

// Degenerate reports whether the model collapsed to a point mass at Scale,
// which happens when every value in the sample is identical.
func (f *Fit) Degenerate() bool {
	return f.Shape == 0
}

// PDF evaluates the density at x. The density is zero for x <= 0.
func (f *Fit) PDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if f.Degenerate() {
		if x == f.Scale {
			return math.Inf(1)
		}
		return 0
	}
	return f.dist.Prob(x)
}

// CDF evaluates the cumulative distribution at x.
func (f *Fit) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if f.Degenerate() {
		if x < f.Scale {
			return 0
		}
		return 1
	}
	return f.dist.CDF(x)
}

// Quantile returns the value below which a fraction p of the mass lies.
func (f *Fit) Quantile(p float64) float64 {
	if f.Degenerate() {
		return f.Scale
	}
	return f.dist.Quantile(p)
}

// ScaleFit pairs a scale with its fit, or with the reason it could not be fitted.
type ScaleFit struct {
	Scale int
	Fit   *Fit
	Err   error
}

// FitAll fits every scale in order. A scale without positive increments is
// kept in the output with its error set; only an invalid lambda aborts.
func FitAll(samples models.Samples, scales models.ScaleSet, lambda float64) ([]ScaleFit, error) {
	if !(lambda > 0) {
		return nil, fmt.Errorf("%w: got %v", models.ErrInvalidLambda, lambda)
	}
	fits := make([]ScaleFit, 0, len(scales))
	for _, s := range scales {
		fit, err := New(samples[s], lambda)
		if err != nil {
			err = &models.ScaleError{Scale: s, Err: err}
		}
		fits = append(fits, ScaleFit{Scale: s, Fit: fit, Err: err})
	}
	return fits, nil
}
