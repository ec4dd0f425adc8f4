package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cantus-audio/cantus/dsp/windowing"
)

// Analyzer converts fixed-size blocks of audio samples into magnitude
// spectra using a Hamming-windowed FFT. The window size is fixed at
// construction; Analyze is a pure function of its inputs after that.
type Analyzer struct {
	windowSize int
	sampleRate int
	window     *windowing.Hamming
}

// NewAnalyzer creates a spectrum analyzer for the given window size and
// sample rate. The window size must be a positive power of two; anything
// else is a configuration error and fails here rather than per call.
func NewAnalyzer(windowSize, sampleRate int) (*Analyzer, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if windowSize&(windowSize-1) != 0 {
		return nil, fmt.Errorf("window size must be a power of two, got %d", windowSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	return &Analyzer{
		windowSize: windowSize,
		sampleRate: sampleRate,
		window:     windowing.NewHamming(windowSize),
	}, nil
}

// Analyze computes the magnitude spectrum of the first windowSize samples.
// Bin i covers frequency i*sampleRate/windowSize; magnitudes are normalized
// by the window size. Callers are responsible for zero-padding or rejecting
// buffers shorter than one window.
func (a *Analyzer) Analyze(samples []float64, timestamp float64) (*FrequencyData, error) {
	if len(samples) < a.windowSize {
		return nil, fmt.Errorf("need %d samples, got %d", a.windowSize, len(samples))
	}

	windowed := a.window.Apply(samples[:a.windowSize])

	fftResult := fft.FFTReal(windowed)

	numBins := a.windowSize / 2
	frequencies := make([]float64, numBins)
	magnitudes := make([]float64, numBins)

	freqStep := float64(a.sampleRate) / float64(a.windowSize)
	norm := float64(a.windowSize)

	for i := 0; i < numBins; i++ {
		frequencies[i] = float64(i) * freqStep
		magnitudes[i] = cmplx.Abs(fftResult[i]) / norm
	}

	return &FrequencyData{
		Frequencies: frequencies,
		Magnitudes:  magnitudes,
		SampleRate:  a.sampleRate,
		WindowSize:  a.windowSize,
		Timestamp:   timestamp,
	}, nil
}

// WindowSize returns the fixed analysis window size.
func (a *Analyzer) WindowSize() int {
	return a.windowSize
}

// SampleRate returns the sample rate the analyzer was built for.
func (a *Analyzer) SampleRate() int {
	return a.sampleRate
}
