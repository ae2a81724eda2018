package filter

import (
	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-leed-rfactor/internal/simdops"
)

// Convolution path selection.
const (
	// Kernels shorter than this use direct SIMD convolution; FFT wins
	// only once the O(N*M) direct cost overtakes the transform overhead.
	minKernelForFFT = 128

	// Smallest FFT block size; grown to the next power of two that
	// fits twice the kernel.
	baseFFTBlockSize = 256
)

// convolveValid computes the valid correlation of data with a symmetric
// kernel: dst[i] = sum_k data[i+k]*kernel[k], for
// len(dst) = len(data)-len(kernel)+1 outputs. For long kernels it
// switches to overlap-save FFT convolution.
func convolveValid(dst, data, kernel []float64) {
	if len(kernel) < minKernelForFFT {
		simdops.Get().ConvolveValid(dst, data, kernel)
		return
	}
	newFFTConvolver(kernel).convolve(dst, data)
}

// fftConvolver performs overlap-save FFT convolution. Each block of
// fftSize input samples yields blockSize = fftSize-kernelLen+1 valid
// outputs; the first kernelLen-1 samples of every inverse transform are
// circular-wrap artifacts and are discarded.
type fftConvolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int

	kernelFFT []complex128
	kernelLen int
	scale     float64 // gonum's inverse transform is unnormalized

	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	invResult   []float64
}

func newFFTConvolver(kernel []float64) *fftConvolver {
	kernelLen := len(kernel)
	fftSize := baseFFTBlockSize
	for fftSize < 2*kernelLen {
		fftSize *= 2
	}
	blockSize := fftSize - kernelLen + 1
	fft := fourier.NewFFT(fftSize)

	// Circular convolution computes sum(x[(n-k) mod N] * h[k]); the
	// valid correlation wants sum(x[n+k] * h[k]), so transform the
	// reversed kernel.
	padded := make([]float64, fftSize)
	for i := 0; i < kernelLen; i++ {
		padded[i] = kernel[kernelLen-1-i]
	}
	kernelFFT := fft.Coefficients(nil, padded)

	nCoef := fftSize/2 + 1
	return &fftConvolver{
		fft:         fft,
		fftSize:     fftSize,
		blockSize:   blockSize,
		kernelFFT:   kernelFFT,
		kernelLen:   kernelLen,
		scale:       1 / float64(fftSize),
		signalBlock: make([]float64, fftSize),
		signalFFT:   make([]complex128, nCoef),
		productFFT:  make([]complex128, nCoef),
		invResult:   make([]float64, fftSize),
	}
}

func (c *fftConvolver) convolve(dst, signal []float64) {
	outputLen := len(signal) - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	overlap := c.kernelLen - 1
	for outIdx := 0; outIdx < outputLen; {
		for i := range c.signalBlock {
			c.signalBlock[i] = 0
		}
		copyLen := c.fftSize
		if outIdx+copyLen > len(signal) {
			copyLen = len(signal) - outIdx
		}
		copy(c.signalBlock, signal[outIdx:outIdx+copyLen])

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.kernelFFT)
		c.invResult = c.fft.Sequence(c.invResult, c.productFFT)
		simdops.Get().Scale(c.invResult, c.invResult, c.scale)

		valid := c.blockSize
		if outIdx+valid > outputLen {
			valid = outputLen - outIdx
		}
		copy(dst[outIdx:outIdx+valid], c.invResult[overlap:overlap+valid])
		outIdx += valid
	}
}
