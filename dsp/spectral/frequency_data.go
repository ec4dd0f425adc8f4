package spectral

import "gonum.org/v1/gonum/floats"

// FrequencyData holds one analysis window's magnitude spectrum plus the
// metadata needed to interpret it. Frequencies ascend in even steps of
// SampleRate/WindowSize and always parallel Magnitudes bin for bin.
type FrequencyData struct {
	Frequencies []float64 `json:"frequencies"` // Bin center frequencies (Hz, ascending)
	Magnitudes  []float64 `json:"magnitudes"`  // Non-negative bin magnitudes
	SampleRate  int       `json:"sample_rate"`
	WindowSize  int       `json:"window_size"`
	Timestamp   float64   `json:"timestamp"` // Seconds from the start of the analyzed buffer
}

// Peak returns the frequency and magnitude of the strongest bin.
// Returns (0, 0) for an empty spectrum.
func (fd *FrequencyData) Peak() (frequency, magnitude float64) {
	if len(fd.Magnitudes) == 0 {
		return 0, 0
	}

	peakIdx := floats.MaxIdx(fd.Magnitudes)
	return fd.Frequencies[peakIdx], fd.Magnitudes[peakIdx]
}

// PeakInBand returns the strongest bin restricted to [minFreq, maxFreq].
// Returns (0, 0) when no bin falls inside the band.
func (fd *FrequencyData) PeakInBand(minFreq, maxFreq float64) (frequency, magnitude float64) {
	bestIdx := -1
	bestMag := 0.0

	for i, freq := range fd.Frequencies {
		if freq < minFreq || freq > maxFreq {
			continue
		}
		if bestIdx < 0 || fd.Magnitudes[i] > bestMag {
			bestIdx = i
			bestMag = fd.Magnitudes[i]
		}
	}

	if bestIdx < 0 {
		return 0, 0
	}
	return fd.Frequencies[bestIdx], fd.Magnitudes[bestIdx]
}

// TotalEnergy returns the sum of all bin magnitudes.
func (fd *FrequencyData) TotalEnergy() float64 {
	return floats.Sum(fd.Magnitudes)
}

// FrequencyResolution returns the spacing between adjacent bins in Hz.
func (fd *FrequencyData) FrequencyResolution() float64 {
	if fd.WindowSize == 0 {
		return 0
	}
	return float64(fd.SampleRate) / float64(fd.WindowSize)
}
