package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lumturb/internal/models"
	"lumturb/pkg/compare"
	"lumturb/pkg/config"
	"lumturb/pkg/increments"
	"lumturb/pkg/lognormal"
	"lumturb/pkg/spectrum"
	"lumturb/pkg/structure"
)

// Params holds the analysis parameters.
type Params struct {
	// Scales are the pixel offsets at which increments are sampled.
	Scales models.ScaleSet

	// Lambda divides the increment standard deviation in the log-normal fit.
	Lambda float64

	// Epsilon is the dissipation scale of the structure-function rescaling.
	Epsilon float64

	// MaxOrder is the highest structure-function order.
	MaxOrder int

	// NumWorkers bounds the concurrency of each stage.
	NumWorkers int

	// MaxSamples and Seed control optional per-scale subsampling.
	MaxSamples int
	Seed       uint64

	// Welch selects the unequal-variance t-test when comparing fields.
	Welch bool

	// Progress, when set, is called after each stage of a profile. It may be
	// called from two goroutines at once during Compare.
	Progress func(stage string, done, total int)
}

// ParamsFromConfig copies the analysis and comparison sections of cfg.
func ParamsFromConfig(cfg *config.Config) *Params {
	return &Params{
		Scales:     append(models.ScaleSet(nil), cfg.Analysis.Scales...),
		Lambda:     cfg.Analysis.Lambda,
		Epsilon:    cfg.Analysis.Epsilon,
		MaxOrder:   cfg.Analysis.MaxOrder,
		NumWorkers: cfg.Analysis.NumWorkers,
		MaxSamples: cfg.Analysis.MaxSamples,
		Seed:       cfg.Analysis.Seed,
		Welch:      cfg.Compare.Welch,
	}
}

// Profile is everything computed for one field.
type Profile struct {
	// Width and Height are the field dimensions.
	Width, Height int

	// Scales is the scale set in analysis order.
	Scales models.ScaleSet

	// Samples holds the increment sample of every scale.
	Samples models.Samples

	// Fits holds one log-normal fit (or fit error) per scale.
	Fits []lognormal.ScaleFit

	// Moments holds the rescaled structure-function moments.
	Moments *structure.Moments

	// Spectrum is the radially averaged power spectrum of the field.
	Spectrum []spectrum.Bin
}

// Comparison holds the profiles of two fields and their order-by-order tests.
type Comparison struct {
	First  *Profile
	Second *Profile
	Result compare.Result
}

// Analyzer runs the difference-statistics pipeline:
// 1. sampling absolute increments at every scale
// 2. fitting a log-normal model per scale
// 3. computing rescaled structure-function moments
// 4. computing the radial power spectrum
// 5. comparing two moment profiles, when two fields are given
type Analyzer struct {
	params *Params
}

// NewAnalyzer creates a new analyzer with the provided parameters.
func NewAnalyzer(params *Params) *Analyzer {
	return &Analyzer{params: params}
}

const profileStages = 4

// Profile runs sampling, fitting, moment and spectral analysis on one field.
//
// Parameters:
//   - ctx: Cancels the sampling and moment stages between tasks
//   - field: The luminance field to analyse
//
// Returns:
//   - The per-scale samples, fits and moments, plus the radial spectrum
//   - An error if a tunable is invalid or a scale leaves no increments
func (a *Analyzer) Profile(ctx context.Context, field *models.Field) (*Profile, error) {
	p := a.params
	if !(p.Lambda > 0) {
		return nil, fmt.Errorf("%w: got %v", models.ErrInvalidLambda, p.Lambda)
	}

	samples, err := increments.Sample(ctx, field, p.Scales, increments.Options{
		Workers:    p.NumWorkers,
		MaxSamples: p.MaxSamples,
		Seed:       p.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sample increments: %w", err)
	}
	a.progress("sampling", 1)

	fits, err := lognormal.FitAll(samples, p.Scales, p.Lambda)
	if err != nil {
		return nil, fmt.Errorf("failed to fit distributions: %w", err)
	}
	a.progress("fitting", 2)

	moments, err := structure.Analyze(ctx, samples, p.Scales, structure.Options{
		Epsilon:  p.Epsilon,
		MaxOrder: p.MaxOrder,
		Workers:  p.NumWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute structure functions: %w", err)
	}
	a.progress("moments", 3)

	bins := spectrum.Radial(field)
	a.progress("spectrum", 4)

	return &Profile{
		Width:    field.Width,
		Height:   field.Height,
		Scales:   append(models.ScaleSet(nil), p.Scales...),
		Samples:  samples,
		Fits:     fits,
		Moments:  moments,
		Spectrum: bins,
	}, nil
}

// Compare profiles both fields concurrently and tests their moment profiles.
// The first failing profile cancels the other one.
//
// Parameters:
//   - ctx: Cancels both profiles when done
//   - first, second: The fields to compare, reported as field 1 and field 2
//
// Returns:
//   - Both profiles and the order-by-order t-tests of their moments
//   - An error naming the field whose profile failed
func (a *Analyzer) Compare(ctx context.Context, first, second *models.Field) (*Comparison, error) {
	profiles := make([]*Profile, 2)
	g, gctx := errgroup.WithContext(ctx)

	for idx, field := range []*models.Field{first, second} {
		g.Go(func() error {
			profile, err := a.Profile(gctx, field)
			if err != nil {
				return fmt.Errorf("field %d: %w", idx+1, err)
			}
			profiles[idx] = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := compare.Compare(profiles[0].Moments, profiles[1].Moments, compare.Options{Welch: a.params.Welch})
	if err != nil {
		return nil, fmt.Errorf("failed to compare moment profiles: %w", err)
	}

	return &Comparison{First: profiles[0], Second: profiles[1], Result: result}, nil
}

func (a *Analyzer) progress(stage string, done int) {
	if a.params.Progress != nil {
		a.params.Progress(stage, done, profileStages)
	}
}
