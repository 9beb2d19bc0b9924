// Package luminance converts decoded images into luminance fields.
package luminance

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lumturb/internal/models"
)

// Channel weights of the luma transform.
const (
	WeightR = 0.299
	WeightG = 0.587
	WeightB = 0.114
)

// FromImage returns the luminance field of img on the 0-255 scale of 8-bit
// RGB channels. Alpha is ignored.
func FromImage(img image.Image) (*models.Field, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			data[y*width+x] = WeightR*float64(c.R) + WeightG*float64(c.G) + WeightB*float64(c.B)
		}
	}

	return models.NewField(width, height, data)
}

// Decode reads an image in any registered format and returns its luminance
// field together with the format name.
func Decode(r io.Reader) (*models.Field, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	field, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return field, format, nil
}

// Load decodes the image at path into a luminance field.
func Load(path string) (*models.Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	field, _, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return field, nil
}
