package spectrum

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs a 2D Fast Fourier Transform of row-major data of the
// given width and height. Rows are transformed as real sequences and
// expanded to the full spectrum through conjugate symmetry, then every
// column is transformed as a complex sequence.
func fft2D(data []float64, width, height int) []complex128 {
	result := make([]complex128, width*height)

	rowFFT := fourier.NewFFT(width)
	rowOutput := make([]complex128, width/2+1)
	for i := 0; i < height; i++ {
		rowFFT.Coefficients(rowOutput, data[i*width:(i+1)*width])

		row := result[i*width : (i+1)*width]
		copy(row, rowOutput)
		// F(n-k) = F*(k) for real input
		for j := len(rowOutput); j < width; j++ {
			k := width - j
			row[j] = complex(real(rowOutput[k]), -imag(rowOutput[k]))
		}
	}

	colFFT := fourier.NewCmplxFFT(height)
	colInput := make([]complex128, height)
	colOutput := make([]complex128, height)
	for j := 0; j < width; j++ {
		for i := 0; i < height; i++ {
			colInput[i] = result[i*width+j]
		}
		colFFT.Coefficients(colOutput, colInput)
		for i := 0; i < height; i++ {
			result[i*width+j] = colOutput[i]
		}
	}

	return result
}
