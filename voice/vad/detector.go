package vad

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cantus-audio/cantus/logging"
	"github.com/cantus-audio/cantus/voice/features"
)

// Per-feature vote weights and the decision threshold. Fixed literals, not
// learned: parity with these exact values is what the tests pin down.
const (
	energyWeight = 0.5
	zcrWeight    = 0.3
	fluxWeight   = 0.2

	speechScoreThreshold = 0.5
)

// Noise floor estimation parameters.
const (
	noiseEstimationFrames = 10  // Frames inspected before the estimate is fixed
	lowEnergyCutoff       = 0.2 // Frames below this energy feed the estimate
	noiseEnergyFactor     = 2.0 // Adaptive energy threshold = 2x noise energy
	noiseZCRFactor        = 1.5 // Adaptive ZCR threshold = 1.5x noise ZCR
)

// Result is one frame's speech/silence classification together with the
// feature values that fed the decision.
type Result struct {
	IsSpeech         bool    `json:"is_speech"`
	Energy           float64 `json:"energy"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
	SpectralFlux     float64 `json:"spectral_flux"`
	Confidence       float64 `json:"confidence"` // [0, 1]
	Timestamp        float64 `json:"timestamp"`  // Frame start, seconds
}

// Segment is a maximal run of same-label frames.
type Segment struct {
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"` // Always > StartTime
	IsSpeech      bool    `json:"is_speech"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgEnergy     float64 `json:"avg_energy"`
}

// Duration returns the segment length in seconds.
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Detector classifies audio frames as speech or silence using a weighted
// vote over energy, zero-crossing rate and spectral flux, with an adaptive
// noise floor and hangover smoothing.
//
// A Detector carries per-stream state (the noise estimate and the feature
// extractor's previous spectrum) and is not safe for concurrent use on one
// instance. Call Reset before reusing an instance on an unrelated stream.
type Detector struct {
	config    Config
	extractor *features.Extractor
	logger    logging.Logger

	noiseEstimated bool
	noiseEnergy    float64
	noiseZCR       float64
}

// NewDetector creates a detector for the given sample rate. Configuration
// errors (invalid frame size) surface here, never per call.
func NewDetector(config Config, sampleRate int) (*Detector, error) {
	extractor, err := features.NewExtractor(config.FrameSize, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Detector{
		config:    config,
		extractor: extractor,
		logger: logging.WithFields(logging.Fields{
			"component": "vad_detector",
		}),
	}, nil
}

// Reset restores the clean initial state: the noise estimate and the
// previous-spectrum cache are discarded, making the next call independent
// of anything this instance has seen before.
func (d *Detector) Reset() {
	d.noiseEstimated = false
	d.noiseEnergy = 0
	d.noiseZCR = 0
	d.extractor.Reset()
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.config
}

// NoiseEstimate returns the background energy/ZCR estimate and whether it
// has been established yet. The estimate is fixed once per instance until
// Reset.
func (d *Detector) NoiseEstimate() (energy, zcr float64, estimated bool) {
	return d.noiseEnergy, d.noiseZCR, d.noiseEstimated
}

// DetectFrames classifies every analysis frame of the input. Frames slide
// at 50% hop. Input shorter than one frame yields an empty result, not an
// error; callers must check for emptiness.
func (d *Detector) DetectFrames(samples []float64) []Result {
	frameFeatures := d.extractFrames(samples)
	if len(frameFeatures) == 0 {
		return nil
	}

	if !d.noiseEstimated && len(frameFeatures) >= noiseEstimationFrames {
		d.estimateNoise(frameFeatures[:noiseEstimationFrames])
	}

	energyThreshold, zcrThreshold := d.thresholds()

	results := make([]Result, len(frameFeatures))
	for i, ff := range frameFeatures {
		results[i] = d.classify(ff, energyThreshold, zcrThreshold)
	}

	d.applyHangover(results)

	return results
}

// DetectSegments classifies the input and merges consecutive same-label
// frames into segments, dropping segments shorter than the label-specific
// minimum duration. The returned list is time-ordered and non-overlapping.
func (d *Detector) DetectSegments(samples []float64) []Segment {
	results := d.DetectFrames(samples)
	segments := d.buildSegments(results)

	d.logger.Debug("vad segmentation complete", logging.Fields{
		"frames":   len(results),
		"segments": len(segments),
	})

	return segments
}

func (d *Detector) extractFrames(samples []float64) []*features.FrameFeatures {
	frameSize := d.config.FrameSize
	hopSize := frameSize / 2

	if len(samples) < frameSize {
		return nil
	}

	numFrames := (len(samples)-frameSize)/hopSize + 1
	frameFeatures := make([]*features.FrameFeatures, 0, numFrames)
	sampleRate := float64(d.extractor.SampleRate())

	for i := 0; i < numFrames; i++ {
		startIdx := i * hopSize
		endIdx := startIdx + frameSize
		if endIdx > len(samples) {
			break
		}

		timestamp := float64(startIdx) / sampleRate
		ff, err := d.extractor.Extract(samples[startIdx:endIdx], timestamp)
		if err != nil {
			continue
		}
		frameFeatures = append(frameFeatures, ff)
	}

	return frameFeatures
}

// estimateNoise fixes the background estimate from the low-energy frames of
// the first frames seen by this instance. With no low-energy frames the
// estimate stays zero and the configured thresholds apply unchanged.
func (d *Detector) estimateNoise(frameFeatures []*features.FrameFeatures) {
	var energies, zcrs []float64
	for _, ff := range frameFeatures {
		if ff.Energy < lowEnergyCutoff {
			energies = append(energies, ff.Energy)
			zcrs = append(zcrs, ff.ZeroCrossingRate)
		}
	}

	if len(energies) > 0 {
		d.noiseEnergy = stat.Mean(energies, nil)
		d.noiseZCR = stat.Mean(zcrs, nil)
	}
	d.noiseEstimated = true

	d.logger.Debug("noise floor estimated", logging.Fields{
		"noise_energy": d.noiseEnergy,
		"noise_zcr":    d.noiseZCR,
		"quiet_frames": len(energies),
	})
}

func (d *Detector) thresholds() (energyThreshold, zcrThreshold float64) {
	energyThreshold = d.config.EnergyThreshold
	zcrThreshold = d.config.ZCRThreshold

	if d.config.Adaptive && d.noiseEstimated {
		energyThreshold = math.Max(energyThreshold, noiseEnergyFactor*d.noiseEnergy)
		zcrThreshold = math.Max(zcrThreshold, noiseZCRFactor*d.noiseZCR)
	}

	return energyThreshold, zcrThreshold
}

func (d *Detector) classify(ff *features.FrameFeatures, energyThreshold, zcrThreshold float64) Result {
	score := 0.0
	if ff.Energy > energyThreshold {
		score += energyWeight
	}
	if ff.ZeroCrossingRate > zcrThreshold {
		score += zcrWeight
	}
	if ff.SpectralFlux > d.config.FluxThreshold {
		score += fluxWeight
	}

	isSpeech := score > speechScoreThreshold

	confidence := score
	if !isSpeech {
		confidence = 1.0 - score
	}

	return Result{
		IsSpeech:         isSpeech,
		Energy:           ff.Energy,
		ZeroCrossingRate: ff.ZeroCrossingRate,
		SpectralFlux:     ff.SpectralFlux,
		Confidence:       confidence,
		Timestamp:        ff.Timestamp,
	}
}

// applyHangover flips silence frames within the hangover window after a
// speech frame back to speech at half confidence, absorbing short dips
// inside continuous speech. Only genuinely classified speech frames extend
// the window; flipped frames do not cascade it.
func (d *Detector) applyHangover(results []Result) {
	hopSize := d.config.FrameSize / 2
	hangoverFrames := int(d.config.HangoverDuration * float64(d.extractor.SampleRate()) / float64(hopSize))
	if hangoverFrames <= 0 {
		return
	}

	lastSpeech := -1
	for i := range results {
		if results[i].IsSpeech {
			lastSpeech = i
			continue
		}
		if lastSpeech >= 0 && i-lastSpeech <= hangoverFrames {
			results[i].IsSpeech = true
			results[i].Confidence /= 2.0
		}
	}
}

func (d *Detector) buildSegments(results []Result) []Segment {
	if len(results) == 0 {
		return nil
	}

	hopDuration := float64(d.config.FrameSize/2) / float64(d.extractor.SampleRate())

	var segments []Segment
	runStart := 0

	flush := func(start, end int) {
		// end is exclusive
		seg := Segment{
			StartTime: results[start].Timestamp,
			EndTime:   results[end-1].Timestamp + hopDuration,
			IsSpeech:  results[start].IsSpeech,
		}

		confidences := make([]float64, 0, end-start)
		energies := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			confidences = append(confidences, results[i].Confidence)
			energies = append(energies, results[i].Energy)
		}
		seg.AvgConfidence = stat.Mean(confidences, nil)
		seg.AvgEnergy = stat.Mean(energies, nil)

		minDuration := d.config.MinSilenceDuration
		if seg.IsSpeech {
			minDuration = d.config.MinSpeechDuration
		}
		if seg.Duration() >= minDuration {
			segments = append(segments, seg)
		}
	}

	for i := 1; i < len(results); i++ {
		if results[i].IsSpeech != results[runStart].IsSpeech {
			flush(runStart, i)
			runStart = i
		}
	}
	flush(runStart, len(results))

	return segments
}
