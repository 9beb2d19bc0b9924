package report

import (
	"github.com/montanaflynn/stats"

	"lumturb/internal/models"
)

// Summary describes one scale's increment sample.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	Max    float64 `json:"max" yaml:"max"`
}

// Summarize describes a sample. An empty sample yields a zero Summary.
func Summarize(sample []float64) Summary {
	if len(sample) == 0 {
		return Summary{}
	}
	data := stats.Float64Data(sample)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	p95, _ := stats.Percentile(data, 95)
	max, _ := stats.Max(data)
	return Summary{Count: len(sample), Mean: mean, Median: median, P95: p95, Max: max}
}

// SummarizeAll describes every scale, in scale-set order.
func SummarizeAll(samples models.Samples, scales models.ScaleSet) []Summary {
	out := make([]Summary, len(scales))
	for i, s := range scales {
		out[i] = Summarize(samples[s])
	}
	return out
}
