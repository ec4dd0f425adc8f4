package syllable

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Confidence blend weights over energy consistency, duration
// reasonableness and spectral stability. Fixed literals for parity.
const (
	energyConsistencyWeight = 0.4
	durationWeight          = 0.3
	spectralStabilityWeight = 0.3

	// Syllables near this duration score highest.
	idealSyllableDuration = 0.2
)

// scoreConfidence rates one segmentation result in [0, 1]. Fewer than two
// boundaries, or no frames to rate them against, scores 0.
func (e *Engine) scoreConfidence(boundaries, energies, centroids, offsets []float64, startTime float64) float64 {
	if len(boundaries) < 2 || len(offsets) == 0 {
		return 0.0
	}

	energyScore := 0.0
	durationScore := 0.0
	spectralScore := 0.0
	numSyllables := len(boundaries) - 1

	for i := 0; i < numSyllables; i++ {
		from := boundaries[i]
		to := boundaries[i+1]

		duration := to - from
		durationScore += math.Exp(-2.0 * math.Abs(duration-idealSyllableDuration) / idealSyllableDuration)

		var syllableEnergies, syllableCentroids []float64
		for j, offset := range offsets {
			t := startTime + offset
			if t >= from && t < to {
				syllableEnergies = append(syllableEnergies, energies[j])
				syllableCentroids = append(syllableCentroids, centroids[j])
			}
		}

		energyScore += math.Exp(-10.0 * sampleVariance(syllableEnergies))
		spectralScore += math.Exp(-sampleVariance(syllableCentroids) / 10000.0)
	}

	n := float64(numSyllables)
	confidence := energyConsistencyWeight*energyScore/n +
		durationWeight*durationScore/n +
		spectralStabilityWeight*spectralScore/n

	return math.Min(1.0, math.Max(0.0, confidence))
}

// sampleVariance is a variance that tolerates short inputs: fewer than two
// samples means no observable variation.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	return stat.Variance(values, nil)
}
