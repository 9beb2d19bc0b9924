package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Write encodes d in the named format: text, yaml or json.
func Write(w io.Writer, format string, d *Document) error {
	switch format {
	case "text":
		return WriteText(w, d)
	case "yaml":
		return WriteYAML(w, d)
	case "json":
		return WriteJSON(w, d)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteYAML encodes d as YAML.
func WriteYAML(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("error encoding yaml report: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes d as indented JSON.
func WriteJSON(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("error encoding json report: %w", err)
	}
	return nil
}

// WriteText writes one table per field and, when present, the comparison table.
func WriteText(w io.Writer, d *Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, f := range d.Fields {
		fmt.Fprintf(tw, "%s (%dx%d, epsilon=%g)\n", f.Name, f.Width, f.Height, f.Epsilon)

		header := []string{"SCALE", "N", "MEAN", "MEDIAN", "P95", "MAX", "SHAPE", "LOGSCALE"}
		if len(f.Scales) > 0 {
			for n := range f.Scales[0].Moments {
				header = append(header, fmt.Sprintf("M%d", n+1))
			}
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))

		for _, s := range f.Scales {
			shape, scale := "-", "-"
			if s.Fit != nil {
				shape, scale = s.Fit.Shape.String(), s.Fit.Scale.String()
			}
			row := []string{
				fmt.Sprint(s.Scale),
				fmt.Sprint(s.Summary.Count),
				Float(s.Summary.Mean).String(),
				Float(s.Summary.Median).String(),
				Float(s.Summary.P95).String(),
				Float(s.Summary.Max).String(),
				shape,
				scale,
			}
			for _, m := range s.Moments {
				row = append(row, m.String())
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		fmt.Fprintf(tw, "spectral slope: %s\n\n", f.SpectralSlope)
	}

	if len(d.Comparison) > 0 {
		fmt.Fprintf(tw, "comparison (alpha=%g)\n", d.Alpha)
		fmt.Fprintln(tw, "ORDER\tT\tP\tDF\tSIGNIFICANT")
		for _, c := range d.Comparison {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", c.Order, c.Statistic, c.PValue, c.DF, c.Significant)
		}
	}

	return tw.Flush()
}
