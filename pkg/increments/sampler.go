// Package increments extracts per-scale absolute luminance increments from a
// scalar field. Each scale is sampled independently, so scales are fanned out
// across a bounded set of workers and merged into a single map at the end.
package increments

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lumturb/internal/models"
)

// Options controls how samples are gathered.
type Options struct {
	// Workers bounds the number of scales sampled concurrently.
	// Zero means runtime.NumCPU().
	Workers int

	// MaxSamples caps the size of each scale's sample. When a scale yields
	// more increments, a uniform subsample without replacement is kept.
	// Zero keeps every increment.
	MaxSamples int

	// Seed drives the subsampling. The same seed always selects the same
	// subsample for a given field and scale.
	Seed uint64
}

// ExpectedLen returns the number of increments a height x width field
// yields at the given scale.
func ExpectedLen(height, width, scale int) int {
	n := 0
	if scale < width {
		n += height * (width - scale)
	}
	if scale < height {
		n += width * (height - scale)
	}
	return n
}

// Sample computes the absolute increment sample for every scale, one task
// per scale.
//
// Parameters:
//   - ctx: Cancels tasks that have not started yet
//   - field: The luminance field
//   - scales: Distinct positive pixel offsets
//   - opts: Worker bound and optional seeded subsampling
//
// Returns:
//   - The samples keyed by scale; a scale at least as large as both
//     dimensions maps to an empty sample
//   - An error for an invalid scale set or negative MaxSamples
func Sample(ctx context.Context, field *models.Field, scales models.ScaleSet, opts Options) (models.Samples, error) {
	if err := scales.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxSamples < 0 {
		return nil, fmt.Errorf("max samples must be non-negative, got %d", opts.MaxSamples)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([][]float64, len(scales))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, scale := range scales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample := sampleScale(field, scale)
			if opts.MaxSamples > 0 && len(sample) > opts.MaxSamples {
				sample = subsample(sample, opts.MaxSamples, opts.Seed, scale)
			}
			results[idx] = sample
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sampling increments: %w", err)
	}

	samples := make(models.Samples, len(scales))
	for idx, scale := range scales {
		samples[scale] = results[idx]
	}
	return samples, nil
}

// Directional returns the horizontal and vertical increments at one scale
// as separate slices, in row-major order of the left/top pixel.
func Directional(field *models.Field, scale int) (horizontal, vertical []float64, err error) {
	if scale <= 0 {
		return nil, nil, &models.ScaleError{Scale: scale, Err: models.ErrInvalidScale}
	}
	w, h := field.Width, field.Height
	if scale < w {
		horizontal = make([]float64, 0, h*(w-scale))
	}
	if scale < h {
		vertical = make([]float64, 0, w*(h-scale))
	}
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			if j+scale < w {
				horizontal = append(horizontal, math.Abs(field.At(i, j)-field.At(i, j+scale)))
			}
			if i+scale < h {
				vertical = append(vertical, math.Abs(field.At(i, j)-field.At(i+scale, j)))
			}
		}
	}
	return horizontal, vertical, nil
}

// sampleScale walks every pixel once, emitting the horizontal increment
// followed by the vertical one when they are in bounds.
func sampleScale(field *models.Field, scale int) []float64 {
	w, h := field.Width, field.Height
	sample := make([]float64, 0, ExpectedLen(h, w, scale))
	for i := 0; i < h; i++ {
		row := field.Data[i*w : (i+1)*w]
		for j := 0; j < w; j++ {
			if j+scale < w {
				sample = append(sample, math.Abs(row[j]-row[j+scale]))
			}
			if i+scale < h {
				sample = append(sample, math.Abs(row[j]-field.Data[(i+scale)*w+j]))
			}
		}
	}
	return sample
}

// subsample keeps k values chosen uniformly without replacement using a
// partial Fisher-Yates shuffle. The stream is keyed by seed and scale so
// results do not depend on worker scheduling.
func subsample(sample []float64, k int, seed uint64, scale int) []float64 {
	r := rand.New(rand.NewPCG(seed, uint64(scale)))
	buf := make([]float64, len(sample))
	copy(buf, sample)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:k:k]
}
