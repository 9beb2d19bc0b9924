package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"lumturb/internal/models"
	"lumturb/pkg/increments"
)

// Viewer renders increment maps of a luminance field: for one scale and one
// direction, each pixel shows |I(p) - I(p+scale)| scaled to the map maximum.
type Viewer struct {
	// field is the luminance field being inspected
	field *models.Field
}

// NewViewer creates a new increment map viewer
func NewViewer(field *models.Field) *Viewer {
	return &Viewer{field: field}
}

// IncrementMap renders the increments at the given scale along an axis.
// Axis "x" pairs horizontal neighbours and yields a (W-scale) x H map, axis
// "y" pairs vertical neighbours and yields a W x (H-scale) map.
func (v *Viewer) IncrementMap(axis string, scale int) (*image.Gray16, error) {
	horizontal, vertical, err := increments.Directional(v.field, scale)
	if err != nil {
		return nil, err
	}

	f := v.field
	var diffs []float64
	width, height := f.Width, f.Height
	switch axis {
	case "x", "X":
		diffs = horizontal
		width -= scale
	case "y", "Y":
		diffs = vertical
		height -= scale
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x or y)", axis)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scale %d leaves no %s increments in a %dx%d field", scale, axis, f.Width, f.Height)
	}

	maxDiff := 0.0
	for _, d := range diffs {
		maxDiff = math.Max(maxDiff, d)
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	if maxDiff == 0 {
		return img, nil
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := uint16(math.Round(diffs[y*width+x] / maxDiff * 65535))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img, nil
}

// SaveMap saves a rendered map as a PNG image
func (v *Viewer) SaveMap(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveIncrementMaps renders and saves both axes for every scale. Scales that
// leave no increments along an axis are skipped for that axis. It returns
// the paths written.
func (v *Viewer) SaveIncrementMaps(outputDir string, scales models.ScaleSet) ([]string, error) {
	if err := scales.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, scale := range scales {
		for _, axis := range []string{"x", "y"} {
			if (axis == "x" && scale >= v.field.Width) || (axis == "y" && scale >= v.field.Height) {
				continue
			}
			img, err := v.IncrementMap(axis, scale)
			if err != nil {
				return written, err
			}

			filename := filepath.Join(outputDir, fmt.Sprintf("incr_%s_%03d.png", axis, scale))
			if err := v.SaveMap(img, filename); err != nil {
				return written, err
			}
			written = append(written, filename)
		}
	}

	return written, nil
}
