// Package spectrum computes the radially averaged power spectrum of a
// luminance field and its log-log slope, the spectral counterpart of the
// second-order structure function (a Kolmogorov cascade gives -5/3).
package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"lumturb/internal/models"
)

// Bin is one ring of the radial spectrum.
type Bin struct {
	// K is the radial wavenumber in cycles per pixel.
	K float64 `json:"k" yaml:"k"`

	// Power is the mean squared magnitude over the ring.
	Power float64 `json:"power" yaml:"power"`

	// Count is the number of Fourier coefficients averaged.
	Count int `json:"count" yaml:"count"`
}

// Radial returns the power spectrum of the mean-removed field averaged over
// rings of width 1/N cycles per pixel, N = min(width, height), from 1/N up to
// the Nyquist ring. The zero-frequency term is excluded. Rings holding no
// coefficient are omitted.
func Radial(field *models.Field) []Bin {
	w, h := field.Width, field.Height
	n := min(w, h)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(field.Data, nil)
	centered := make([]float64, len(field.Data))
	for i, v := range field.Data {
		centered[i] = v - mean
	}
	coeffs := fft2D(centered, w, h)

	rings := n / 2
	power := make([]float64, rings+1)
	counts := make([]int, rings+1)
	norm := float64(w * h)
	for ky := 0; ky < h; ky++ {
		fy := float64(min(ky, h-ky)) / float64(h)
		for kx := 0; kx < w; kx++ {
			if kx == 0 && ky == 0 {
				continue
			}
			fx := float64(min(kx, w-kx)) / float64(w)
			ring := int(math.Round(math.Hypot(fx, fy) * float64(n)))
			if ring < 1 || ring > rings {
				continue
			}
			c := coeffs[ky*w+kx]
			power[ring] += (real(c)*real(c) + imag(c)*imag(c)) / norm
			counts[ring]++
		}
	}

	bins := make([]Bin, 0, rings)
	for ring := 1; ring <= rings; ring++ {
		if counts[ring] == 0 {
			continue
		}
		bins = append(bins, Bin{
			K:     float64(ring) / float64(n),
			Power: power[ring] / float64(counts[ring]),
			Count: counts[ring],
		})
	}
	return bins
}

// Slope fits log10(power) = a + b*log10(k) over the bins with positive power
// and returns b.
func Slope(bins []Bin) (float64, error) {
	var xs, ys []float64
	for _, b := range bins {
		if b.Power > 0 && b.K > 0 {
			xs = append(xs, math.Log10(b.K))
			ys = append(ys, math.Log10(b.Power))
		}
	}
	if len(xs) < 2 {
		return math.NaN(), fmt.Errorf("%w: %d rings with positive power", models.ErrInsufficientData, len(xs))
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, nil
}
