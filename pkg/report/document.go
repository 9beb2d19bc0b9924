// Package report turns analysis results into text, YAML or JSON reports and
// terminal plots.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"lumturb/pkg/analysis"
	"lumturb/pkg/compare"
	"lumturb/pkg/lognormal"
	"lumturb/pkg/spectrum"
)

// Float is a float64 that encodes NaN and infinities as JSON strings.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

// String formats the value for text reports.
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', 6, 64)
}

// Document is a complete report of one or two analysed fields.
type Document struct {
	Fields     []FieldReport `json:"fields" yaml:"fields"`
	Alpha      float64       `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Comparison []OrderTest   `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// FieldReport describes one field's profile. SpectralSlope is NaN when the
// field is too small or flat for a spectrum.
type FieldReport struct {
	Name          string         `json:"name" yaml:"name"`
	Width         int            `json:"width" yaml:"width"`
	Height        int            `json:"height" yaml:"height"`
	Epsilon       float64        `json:"epsilon" yaml:"epsilon"`
	Scales        []ScaleReport  `json:"scales" yaml:"scales"`
	SpectralSlope Float          `json:"spectral_slope" yaml:"spectral_slope"`
	Spectrum      []spectrum.Bin `json:"spectrum,omitempty" yaml:"spectrum,omitempty"`
}

// ScaleReport describes one scale of a profile. Moments[n-1] is the
// order-n rescaled moment.
type ScaleReport struct {
	Scale     int               `json:"scale" yaml:"scale"`
	Summary   Summary           `json:"summary" yaml:"summary"`
	Fit       *FitReport        `json:"fit,omitempty" yaml:"fit,omitempty"`
	FitError  string            `json:"fit_error,omitempty" yaml:"fit_error,omitempty"`
	Histogram lognormal.Bins    `json:"histogram" yaml:"histogram"`
	Curve     []lognormal.Point `json:"curve,omitempty" yaml:"curve,omitempty"`
	Moments   []Float           `json:"moments" yaml:"moments"`
}

// FitReport holds the parameters of a log-normal fit. Extreme lambda or
// epsilon settings can overflow them, so they encode as Float.
type FitReport struct {
	Shape    Float `json:"shape" yaml:"shape"`
	Scale    Float `json:"scale" yaml:"scale"`
	Loc      Float `json:"loc" yaml:"loc"`
	Mu       Float `json:"mu" yaml:"mu"`
	Sigma    Float `json:"sigma" yaml:"sigma"`
	Lambda   Float `json:"lambda" yaml:"lambda"`
	N        int   `json:"n" yaml:"n"`
	Positive int   `json:"positive" yaml:"positive"`
}

func newFitReport(f *lognormal.Fit) *FitReport {
	return &FitReport{
		Shape:    Float(f.Shape),
		Scale:    Float(f.Scale),
		Loc:      Float(f.Loc),
		Mu:       Float(f.Mu),
		Sigma:    Float(f.Sigma),
		Lambda:   Float(f.Lambda),
		N:        f.N,
		Positive: f.Positive,
	}
}

// OrderTest is one row of the comparison.
type OrderTest struct {
	Order       int   `json:"order" yaml:"order"`
	Statistic   Float `json:"t_stat" yaml:"t_stat"`
	PValue      Float `json:"p_value" yaml:"p_value"`
	DF          Float `json:"df" yaml:"df"`
	Significant bool  `json:"significant" yaml:"significant"`
}

// NewFieldReport builds the report of one profile with histograms of the
// given bin count and fitted densities sampled at points positions.
func NewFieldReport(name string, p *analysis.Profile, bins, points int) (FieldReport, error) {
	if bins < 1 {
		return FieldReport{}, fmt.Errorf("histogram needs at least 1 bin, got %d", bins)
	}
	fr := FieldReport{
		Name:    name,
		Width:   p.Width,
		Height:  p.Height,
		Epsilon: p.Moments.Epsilon,
		Scales:  make([]ScaleReport, len(p.Scales)),
	}
	slope, _ := spectrum.Slope(p.Spectrum)
	fr.SpectralSlope = Float(slope)
	fr.Spectrum = p.Spectrum

	orders := p.Moments.Orders()
	summaries := SummarizeAll(p.Samples, p.Scales)

	for k, s := range p.Scales {
		sample := p.Samples[s]
		sr := ScaleReport{
			Scale:     s,
			Summary:   summaries[k],
			Histogram: lognormal.Histogram(sample, bins),
			Moments:   make([]Float, len(orders)),
		}
		for i, n := range orders {
			sr.Moments[i] = Float(p.Moments.Values[n][k])
		}
		if k < len(p.Fits) {
			sf := p.Fits[k]
			if sf.Err != nil {
				sr.FitError = sf.Err.Error()
			} else {
				sr.Fit = newFitReport(sf.Fit)
				if len(sample) > 0 && !sf.Fit.Degenerate() {
					curve, err := sf.Fit.Curve(floats.Min(sample), floats.Max(sample), points)
					if err != nil {
						return FieldReport{}, fmt.Errorf("scale %d: %w", s, err)
					}
					sr.Curve = curve
				}
			}
		}
		fr.Scales[k] = sr
	}
	return fr, nil
}

// NewDocument collects field reports into a document.
func NewDocument(fields ...FieldReport) *Document {
	return &Document{Fields: fields}
}

// SetComparison attaches the order-by-order tests, flagging p < alpha.
func (d *Document) SetComparison(r compare.Result, alpha float64) {
	d.Alpha = alpha
	d.Comparison = d.Comparison[:0]
	for _, n := range r.Orders() {
		tt := r[n]
		d.Comparison = append(d.Comparison, OrderTest{
			Order:       n,
			Statistic:   Float(tt.Statistic),
			PValue:      Float(tt.PValue),
			DF:          Float(tt.DF),
			Significant: tt.PValue < alpha,
		})
	}
}
