package syllable

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cantus-audio/cantus/logging"
	"github.com/cantus-audio/cantus/voice/features"
	"github.com/cantus-audio/cantus/voice/vad"
)

// DetectionMethod tags how a segmentation result was derived.
type DetectionMethod string

const (
	MethodEnergy   DetectionMethod = "energy"
	MethodSpectral DetectionMethod = "spectral"
	MethodHybrid   DetectionMethod = "hybrid"
	MethodDuration DetectionMethod = "duration"
	MethodAdaptive DetectionMethod = "adaptive"
)

// Multiplier on the per-segment standard deviation when adaptive
// thresholds are enabled.
const adaptiveThresholdK = 1.5

// Division floor for the normalized energy change ratio.
const energyChangeFloor = 0.01

// Result is the outcome of segmenting one speech segment. Boundaries are
// absolute times, strictly increasing, and always begin at the segment's
// start and finish at its end (collapsing to just those two for degenerate
// input, or one when start equals end).
type Result struct {
	Segment         vad.Segment     `json:"segment"`
	Boundaries      []float64       `json:"boundaries"`
	EnergyProfile   []float64       `json:"energy_profile"`   // Smoothed per-frame energy
	CentroidProfile []float64       `json:"centroid_profile"` // Smoothed per-frame centroid (Hz)
	Confidence      float64         `json:"confidence"`       // [0, 1]; 0 signals unusable input
	Method          DetectionMethod `json:"method"`
}

// SyllableCount returns the number of syllables the boundary list spans.
func (r *Result) SyllableCount() int {
	if len(r.Boundaries) < 2 {
		return 0
	}
	return len(r.Boundaries) - 1
}

// Engine subdivides VAD speech segments into syllable-sized ranges using
// energy- and spectral-centroid change detection. Safe to reuse across
// segments; every call re-extracts features from scratch.
type Engine struct {
	config    Config
	extractor *features.Extractor
	frameSize int
	logger    logging.Logger
}

// NewEngine creates a segmentation engine. The frame size must be a
// positive power of two, validated here.
func NewEngine(config Config, frameSize, sampleRate int) (*Engine, error) {
	extractor, err := features.NewExtractor(frameSize, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:    config,
		extractor: extractor,
		frameSize: frameSize,
		logger: logging.WithFields(logging.Fields{
			"component": "syllable_engine",
		}),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Segment subdivides one VAD speech segment given its underlying audio.
// Never fails: malformed or empty input degrades to the minimal valid
// boundary list with confidence 0, and callers treat low confidence as the
// failure signal.
func (e *Engine) Segment(seg vad.Segment, samples []float64) Result {
	result := Result{
		Segment: seg,
		Method:  MethodHybrid,
	}

	// Feature extraction starts a fresh stream for every segment.
	e.extractor.Reset()

	energies, centroids, offsets := e.extractProfiles(samples)

	// Audio too short for a single frame collapses to the minimal valid
	// boundary list; confidence 0 is the failure signal.
	if len(offsets) == 0 {
		result.Boundaries = finalizeBoundaries(nil, seg.StartTime, seg.EndTime)
		return result
	}

	energies = boxSmooth(energies, e.config.SmoothingWindow)
	centroids = boxSmooth(centroids, e.config.SmoothingWindow)
	result.EnergyProfile = energies
	result.CentroidProfile = centroids

	energyThreshold, centroidThreshold := e.thresholds(energies, centroids)

	var candidates []float64
	candidates = append(candidates, detectEnergyBoundaries(energies, offsets, energyThreshold)...)
	candidates = append(candidates, detectCentroidBoundaries(centroids, offsets, centroidThreshold)...)

	boundaries := e.fuseBoundaries(seg, candidates)
	boundaries = e.splitLongSyllables(boundaries)
	if e.config.LanguageOptimized {
		boundaries = e.mergeShortSyllables(boundaries)
	}
	boundaries = finalizeBoundaries(boundaries, seg.StartTime, seg.EndTime)

	result.Boundaries = boundaries
	result.Confidence = e.scoreConfidence(boundaries, energies, centroids, offsets, seg.StartTime)

	e.logger.Debug("segment analyzed", logging.Fields{
		"start":      seg.StartTime,
		"end":        seg.EndTime,
		"boundaries": len(boundaries),
		"confidence": result.Confidence,
	})

	return result
}

// SegmentAll segments multiple VAD speech segments independently against a
// shared audio buffer. Out-of-range segments are skipped, not fatal; the
// returned list maps 1:1 onto the valid inputs.
func (e *Engine) SegmentAll(segments []vad.Segment, samples []float64) []Result {
	sampleRate := float64(e.extractor.SampleRate())

	var results []Result
	for _, seg := range segments {
		startIdx := int(seg.StartTime * sampleRate)
		endIdx := int(seg.EndTime * sampleRate)

		if startIdx < 0 || endIdx > len(samples) || startIdx >= endIdx {
			e.logger.Warn("segment out of buffer range, skipping", logging.Fields{
				"start": seg.StartTime,
				"end":   seg.EndTime,
			})
			continue
		}

		results = append(results, e.Segment(seg, samples[startIdx:endIdx]))
	}

	return results
}

// extractProfiles computes per-frame energy and centroid series over the
// segment audio at 50% hop, with each frame's time offset from the
// segment start.
func (e *Engine) extractProfiles(samples []float64) (energies, centroids, offsets []float64) {
	hopSize := e.frameSize / 2
	if len(samples) < e.frameSize {
		return nil, nil, nil
	}

	numFrames := (len(samples)-e.frameSize)/hopSize + 1
	sampleRate := float64(e.extractor.SampleRate())

	for i := 0; i < numFrames; i++ {
		startIdx := i * hopSize
		endIdx := startIdx + e.frameSize
		if endIdx > len(samples) {
			break
		}

		offset := float64(startIdx) / sampleRate
		ff, err := e.extractor.Extract(samples[startIdx:endIdx], offset)
		if err != nil {
			continue
		}

		energies = append(energies, ff.Energy)
		centroids = append(centroids, ff.SpectralCentroid)
		offsets = append(offsets, offset)
	}

	return energies, centroids, offsets
}

func (e *Engine) thresholds(energies, centroids []float64) (energyThreshold, centroidThreshold float64) {
	energyThreshold = e.config.EnergyChangeThreshold
	centroidThreshold = e.config.CentroidChangeThreshold

	if !e.config.Adaptive || len(energies) < 2 {
		return energyThreshold, centroidThreshold
	}

	energyMean, energyStd := stat.MeanStdDev(energies, nil)
	centroidMean, centroidStd := stat.MeanStdDev(centroids, nil)

	energyThreshold = math.Max(energyThreshold, energyMean+adaptiveThresholdK*energyStd)
	centroidThreshold = math.Max(centroidThreshold, centroidMean+adaptiveThresholdK*centroidStd)

	return energyThreshold, centroidThreshold
}

// detectEnergyBoundaries marks a candidate wherever the normalized energy
// change between adjacent frames exceeds the threshold.
func detectEnergyBoundaries(energies, offsets []float64, threshold float64) []float64 {
	var candidates []float64
	for i := 1; i < len(energies); i++ {
		change := math.Abs(energies[i]-energies[i-1]) / math.Max(energies[i-1], energyChangeFloor)
		if change > threshold {
			candidates = append(candidates, offsets[i])
		}
	}
	return candidates
}

// detectCentroidBoundaries marks a candidate wherever the absolute spectral
// centroid delta between adjacent frames exceeds the threshold.
func detectCentroidBoundaries(centroids, offsets []float64, threshold float64) []float64 {
	var candidates []float64
	for i := 1; i < len(centroids); i++ {
		if math.Abs(centroids[i]-centroids[i-1]) > threshold {
			candidates = append(candidates, offsets[i])
		}
	}
	return candidates
}

// fuseBoundaries converts candidate offsets to absolute time, sorts them
// preserving first-found order for ties, and applies the forward-greedy
// minimum-spacing filter anchored at the segment start.
func (e *Engine) fuseBoundaries(seg vad.Segment, candidates []float64) []float64 {
	absolute := make([]float64, len(candidates))
	for i, offset := range candidates {
		absolute[i] = seg.StartTime + offset
	}
	sort.Stable(sort.Float64Slice(absolute))

	boundaries := []float64{seg.StartTime}
	last := seg.StartTime
	for _, b := range absolute {
		if b-last >= e.config.MinInterSyllableGap {
			boundaries = append(boundaries, b)
			last = b
		}
	}

	if seg.EndTime > last {
		boundaries = append(boundaries, seg.EndTime)
	}

	return boundaries
}

// splitLongSyllables evenly subdivides any inter-boundary gap exceeding the
// maximum syllable duration into the smallest number of equal parts that
// all fit under it.
func (e *Engine) splitLongSyllables(boundaries []float64) []float64 {
	maxDuration := e.config.MaxSyllableDuration
	if maxDuration <= 0 || len(boundaries) < 2 {
		return boundaries
	}

	var split []float64
	for i := 0; i < len(boundaries)-1; i++ {
		split = append(split, boundaries[i])

		gap := boundaries[i+1] - boundaries[i]
		if gap > maxDuration {
			parts := int(math.Ceil(gap / maxDuration))
			step := gap / float64(parts)
			for j := 1; j < parts; j++ {
				split = append(split, boundaries[i]+float64(j)*step)
			}
		}
	}
	split = append(split, boundaries[len(boundaries)-1])

	return split
}

// mergeShortSyllables drops boundaries that would create syllables shorter
// than the minimum duration. The final boundary is never dropped: it
// replaces the previously kept one so the segment end is preserved.
func (e *Engine) mergeShortSyllables(boundaries []float64) []float64 {
	if len(boundaries) < 3 {
		return boundaries
	}

	kept := []float64{boundaries[0]}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i]-kept[len(kept)-1] >= e.config.MinSyllableDuration {
			kept = append(kept, boundaries[i])
			continue
		}

		if i == len(boundaries)-1 {
			if len(kept) > 1 {
				kept[len(kept)-1] = boundaries[i]
			} else {
				kept = append(kept, boundaries[i])
			}
		}
	}

	return kept
}

// finalizeBoundaries guarantees the exact start and end are present, sorts,
// and removes duplicates so the list is strictly increasing.
func finalizeBoundaries(boundaries []float64, startTime, endTime float64) []float64 {
	const epsilon = 1e-9

	hasStart := false
	hasEnd := false
	for _, b := range boundaries {
		if math.Abs(b-startTime) < epsilon {
			hasStart = true
		}
		if math.Abs(b-endTime) < epsilon {
			hasEnd = true
		}
	}

	if !hasStart {
		boundaries = append(boundaries, startTime)
	}
	if !hasEnd && endTime > startTime {
		boundaries = append(boundaries, endTime)
	}

	sort.Float64s(boundaries)

	unique := boundaries[:0]
	for i, b := range boundaries {
		if i == 0 || b-unique[len(unique)-1] >= epsilon {
			unique = append(unique, b)
		}
	}

	return unique
}
