package report

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"lumturb/pkg/structure"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// PlotMoments draws log10 of each order's moment profile against the scale
// index. Non-positive values are left as gaps. It returns an empty string when
// nothing is plottable.
func PlotMoments(m *structure.Moments, caption string) string {
	orders := m.Orders()
	var series [][]float64
	var legends []string
	for _, n := range orders {
		row := make([]float64, len(m.Values[n]))
		finite := false
		for k, v := range m.Values[n] {
			if v > 0 && !math.IsInf(v, 0) {
				row[k] = math.Log10(v)
				finite = true
			} else {
				row[k] = math.NaN()
			}
		}
		if !finite {
			continue
		}
		series = append(series, row)
		legends = append(legends, fmt.Sprintf("order %d", n))
	}
	if len(series) == 0 {
		return ""
	}

	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("%s: log10 moment vs scale %v", caption, m.Scales)),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}
