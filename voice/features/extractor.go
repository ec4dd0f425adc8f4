package features

import (
	"math"

	"github.com/cantus-audio/cantus/dsp/spectral"
)

// Energy normalization range: RMS in dB is rescaled from [-60, 0] to [0, 1].
const (
	energyFloorDB = -60.0
	rmsFloor      = 1e-10
)

// FrameFeatures holds the acoustic descriptors of one analysis frame.
type FrameFeatures struct {
	Energy           float64 `json:"energy"`             // RMS energy, dB-normalized to [0, 1]
	SpectralCentroid float64 `json:"spectral_centroid"`  // Magnitude-weighted mean frequency (Hz)
	ZeroCrossingRate float64 `json:"zero_crossing_rate"` // Sign changes per second (Hz)
	SpectralFlux     float64 `json:"spectral_flux"`      // Mean half-wave rectified magnitude change
	Timestamp        float64 `json:"timestamp"`          // Seconds from the start of the stream
}

// Extractor computes per-frame features on top of the spectrum analyzer.
// Spectral flux depends on the previous frame's spectrum, which makes an
// Extractor instance stateful and stream-order-dependent: one instance per
// logical audio stream, with Reset between unrelated streams.
type Extractor struct {
	analyzer     *spectral.Analyzer
	sampleRate   int
	prevSpectrum []float64
}

// NewExtractor creates a feature extractor for the given frame size and
// sample rate. Frame size constraints are those of spectral.NewAnalyzer.
func NewExtractor(frameSize, sampleRate int) (*Extractor, error) {
	analyzer, err := spectral.NewAnalyzer(frameSize, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		analyzer:   analyzer,
		sampleRate: sampleRate,
	}, nil
}

// Extract computes the features of one frame. The frame must be at least
// one analysis window long; the spectrum is taken over the first window.
func (e *Extractor) Extract(frame []float64, timestamp float64) (*FrameFeatures, error) {
	spectrum, err := e.analyzer.Analyze(frame, timestamp)
	if err != nil {
		return nil, err
	}

	flux := e.computeFlux(spectrum.Magnitudes)

	return &FrameFeatures{
		Energy:           ComputeEnergy(frame),
		SpectralCentroid: computeCentroid(spectrum),
		ZeroCrossingRate: ComputeZCR(frame, e.sampleRate),
		SpectralFlux:     flux,
		Timestamp:        timestamp,
	}, nil
}

// Reset clears the previous-spectrum state so the next frame is treated as
// the first of a new stream (its flux will be 0).
func (e *Extractor) Reset() {
	e.prevSpectrum = nil
}

// FrameSize returns the analysis window size.
func (e *Extractor) FrameSize() int {
	return e.analyzer.WindowSize()
}

// SampleRate returns the sample rate the extractor was built for.
func (e *Extractor) SampleRate() int {
	return e.sampleRate
}

// computeFlux returns the mean positive magnitude change against the
// previous spectrum and caches the current one. First frame of a stream,
// or a window-size change mid-stream, yields 0.
func (e *Extractor) computeFlux(magnitudes []float64) float64 {
	flux := 0.0
	if len(e.prevSpectrum) == len(magnitudes) && len(magnitudes) > 0 {
		sum := 0.0
		for i, mag := range magnitudes {
			if diff := mag - e.prevSpectrum[i]; diff > 0 {
				sum += diff
			}
		}
		flux = sum / float64(len(magnitudes))
	}

	e.prevSpectrum = make([]float64, len(magnitudes))
	copy(e.prevSpectrum, magnitudes)

	return flux
}

// ComputeEnergy calculates RMS energy normalized to [0, 1] via dB scaling,
// with the floor at -60 dB.
func ComputeEnergy(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, sample := range frame {
		sumSquares += sample * sample
	}
	rms := math.Sqrt(sumSquares / float64(len(frame)))

	db := 20.0 * math.Log10(math.Max(rms, rmsFloor))

	normalized := (db - energyFloorDB) / -energyFloorDB
	return math.Min(1.0, math.Max(0.0, normalized))
}

// ComputeZCR calculates the zero-crossing rate of a frame in Hz.
func ComputeZCR(frame []float64, sampleRate int) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}

	return float64(crossings) * float64(sampleRate) / (2.0 * float64(len(frame)))
}

// computeCentroid calculates the magnitude-weighted mean frequency, or 0
// when the spectrum carries no magnitude at all.
func computeCentroid(spectrum *spectral.FrequencyData) float64 {
	numerator := 0.0
	denominator := 0.0

	for i, freq := range spectrum.Frequencies {
		numerator += freq * spectrum.Magnitudes[i]
		denominator += spectrum.Magnitudes[i]
	}

	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}
