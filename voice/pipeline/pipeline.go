package pipeline

import (
	"fmt"

	"github.com/cantus-audio/cantus/logging"
	"github.com/cantus-audio/cantus/voice/pitch"
	"github.com/cantus-audio/cantus/voice/syllable"
	"github.com/cantus-audio/cantus/voice/vad"
)

// Config bundles the per-stage configurations behind one sample rate and
// frame size.
type Config struct {
	SampleRate int             `json:"sample_rate"`
	FrameSize  int             `json:"frame_size"`
	VAD        vad.Config      `json:"vad"`
	Syllable   syllable.Config `json:"syllable"`
}

// DefaultConfig returns the default stage presets at the given sample rate.
func DefaultConfig(sampleRate int) Config {
	vadConfig := vad.DefaultConfig()
	return Config{
		SampleRate: sampleRate,
		FrameSize:  vadConfig.FrameSize,
		VAD:        vadConfig,
		Syllable:   syllable.DefaultConfig(),
	}
}

// SyllablePitch is the hand-off record for note mapping: one syllable's
// time range, its dominant voice-band frequency, and the segmentation
// confidence it inherits.
type SyllablePitch struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Frequency  float64 `json:"frequency"` // Dominant voice-band frequency (Hz), 0 when unvoiced
	Magnitude  float64 `json:"magnitude"`
	Confidence float64 `json:"confidence"` // [0, 1], from the segmentation result
}

// Analyzer runs the full analysis chain: voice activity detection, per
// speech segment syllable segmentation, and per-syllable dominant pitch.
// One Analyzer per logical stream; Reset before reuse on unrelated audio.
type Analyzer struct {
	config   Config
	detector *vad.Detector
	engine   *syllable.Engine
	windows  *pitch.WindowAnalyzer
	logger   logging.Logger
}

// NewAnalyzer wires the three stages together. Configuration errors from
// any stage surface here.
func NewAnalyzer(config Config) (*Analyzer, error) {
	// The pipeline's frame size governs every stage.
	vadConfig := config.VAD
	vadConfig.FrameSize = config.FrameSize

	detector, err := vad.NewDetector(vadConfig, config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("vad stage: %w", err)
	}

	engine, err := syllable.NewEngine(config.Syllable, config.FrameSize, config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("syllable stage: %w", err)
	}

	windows, err := pitch.NewWindowAnalyzer(config.FrameSize, config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch stage: %w", err)
	}

	return &Analyzer{
		config:   config,
		detector: detector,
		engine:   engine,
		windows:  windows,
		logger: logging.WithFields(logging.Fields{
			"component": "pipeline",
		}),
	}, nil
}

// Reset clears the VAD stage's per-stream state so the analyzer can be
// reused on an unrelated recording.
func (a *Analyzer) Reset() {
	a.detector.Reset()
}

// Segments runs VAD plus syllable segmentation and returns the raw
// segmentation results, for consumers that want profiles and boundaries
// rather than the pitch hand-off records.
func (a *Analyzer) Segments(samples []float64) []syllable.Result {
	vadSegments := a.detector.DetectSegments(samples)

	var speechSegments []vad.Segment
	for _, seg := range vadSegments {
		if seg.IsSpeech {
			speechSegments = append(speechSegments, seg)
		}
	}

	return a.engine.SegmentAll(speechSegments, samples)
}

// Analyze runs the whole chain and emits one SyllablePitch per detected
// syllable, in time order. Audio with no detectable speech yields an empty
// list, not an error.
func (a *Analyzer) Analyze(samples []float64) []SyllablePitch {
	results := a.Segments(samples)
	windowPitches := a.windows.Analyze(samples)

	var syllables []SyllablePitch
	for _, result := range results {
		for i := 0; i+1 < len(result.Boundaries); i++ {
			start := result.Boundaries[i]
			end := result.Boundaries[i+1]

			frequency, magnitude := dominantPitch(windowPitches, start, end)
			syllables = append(syllables, SyllablePitch{
				StartTime:  start,
				EndTime:    end,
				Frequency:  frequency,
				Magnitude:  magnitude,
				Confidence: result.Confidence,
			})
		}
	}

	a.logger.Debug("analysis complete", logging.Fields{
		"speech_segments": len(results),
		"syllables":       len(syllables),
	})

	return syllables
}

// dominantPitch picks the strongest voice-band window whose start falls
// inside the syllable's time range. Ties keep the earlier window.
func dominantPitch(windowPitches []pitch.WindowPitch, start, end float64) (frequency, magnitude float64) {
	for _, wp := range windowPitches {
		if wp.Timestamp < start || wp.Timestamp >= end {
			continue
		}
		if wp.Magnitude > magnitude {
			frequency = wp.Frequency
			magnitude = wp.Magnitude
		}
	}
	return frequency, magnitude
}
