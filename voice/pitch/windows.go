package pitch

import (
	"github.com/cantus-audio/cantus/dsp/spectral"
	"github.com/cantus-audio/cantus/logging"
)

// Human voice band for dominant-frequency picking: low male fundamentals
// up through high soprano syllables.
const (
	VoiceBandMinHz = 80.0
	VoiceBandMaxHz = 1100.0
)

// WindowPitch is one window's dominant voice-band frequency.
type WindowPitch struct {
	Timestamp float64 `json:"timestamp"` // Window start, seconds
	Frequency float64 `json:"frequency"` // Hz
	Magnitude float64 `json:"magnitude"`
}

// WindowAnalyzer scans a whole recording with overlapping spectral windows
// and emits one frequency/magnitude record per valid window, restricted to
// the human voice band. Stateless between calls.
type WindowAnalyzer struct {
	analyzer *spectral.Analyzer
	hopSize  int
	logger   logging.Logger
}

// NewWindowAnalyzer creates a pitch window analyzer with 50% hop. Window
// size constraints are those of spectral.NewAnalyzer.
func NewWindowAnalyzer(windowSize, sampleRate int) (*WindowAnalyzer, error) {
	analyzer, err := spectral.NewAnalyzer(windowSize, sampleRate)
	if err != nil {
		return nil, err
	}

	return &WindowAnalyzer{
		analyzer: analyzer,
		hopSize:  windowSize / 2,
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_windows",
		}),
	}, nil
}

// Analyze emits one WindowPitch per full window whose voice-band peak has
// positive magnitude. A recording shorter than one window yields an empty
// list, not an error.
func (w *WindowAnalyzer) Analyze(samples []float64) []WindowPitch {
	spectra := w.Spectra(samples)

	var pitches []WindowPitch
	for _, spectrum := range spectra {
		freq, mag := spectrum.PeakInBand(VoiceBandMinHz, VoiceBandMaxHz)
		if mag <= 0 {
			continue
		}
		pitches = append(pitches, WindowPitch{
			Timestamp: spectrum.Timestamp,
			Frequency: freq,
			Magnitude: mag,
		})
	}

	w.logger.Debug("pitch window scan complete", logging.Fields{
		"windows": len(spectra),
		"voiced":  len(pitches),
	})

	return pitches
}

// Spectra returns the full magnitude spectrum of every complete window in
// the recording, for consumers that need more than the band peak.
func (w *WindowAnalyzer) Spectra(samples []float64) []*spectral.FrequencyData {
	windowSize := w.analyzer.WindowSize()
	if len(samples) < windowSize {
		return nil
	}

	sampleRate := float64(w.analyzer.SampleRate())
	numWindows := (len(samples)-windowSize)/w.hopSize + 1

	spectra := make([]*spectral.FrequencyData, 0, numWindows)
	for i := 0; i < numWindows; i++ {
		startIdx := i * w.hopSize
		endIdx := startIdx + windowSize
		if endIdx > len(samples) {
			break
		}

		timestamp := float64(startIdx) / sampleRate
		spectrum, err := w.analyzer.Analyze(samples[startIdx:endIdx], timestamp)
		if err != nil {
			continue
		}
		spectra = append(spectra, spectrum)
	}

	return spectra
}
