package syllable

// Config is the immutable parameter set for the segmentation engine.
// Durations and gaps are in seconds, the centroid threshold in Hz, the
// energy threshold as a normalized frame-to-frame change ratio.
type Config struct {
	EnergyChangeThreshold   float64 `json:"energy_change_threshold"`   // |dE|/max(prevE, 0.01) above this marks a boundary
	CentroidChangeThreshold float64 `json:"centroid_change_threshold"` // |dCentroid| in Hz above this marks a boundary

	MinSyllableDuration float64 `json:"min_syllable_duration"`
	MaxSyllableDuration float64 `json:"max_syllable_duration"`
	MinInterSyllableGap float64 `json:"min_inter_syllable_gap"`

	SmoothingWindow int `json:"smoothing_window"` // Box-smoothing width in frames, odd

	LanguageOptimized bool `json:"language_optimized"` // Enable the short-syllable merge pass
	Adaptive          bool `json:"adaptive"`           // Derive thresholds from per-segment statistics
}

// DefaultConfig returns the general-purpose preset.
func DefaultConfig() Config {
	return Config{
		EnergyChangeThreshold:   0.05,
		CentroidChangeThreshold: 150.0,
		MinSyllableDuration:     0.05,
		MaxSyllableDuration:     0.5,
		MinInterSyllableGap:     0.05,
		SmoothingWindow:         3,
		LanguageOptimized:       false,
		Adaptive:                false,
	}
}

// LanguageOptimizedConfig returns the language-tuned preset: the merge pass
// is enabled and the duration floor is tightened toward mora-length
// syllables, so rapid short syllables survive while spurious sub-syllable
// boundaries are folded into their neighbors.
func LanguageOptimizedConfig() Config {
	config := DefaultConfig()
	config.LanguageOptimized = true
	config.MinSyllableDuration = 0.08
	config.MinInterSyllableGap = 0.04
	return config
}

// SignificantChangeConfig returns a preset that only reacts to pronounced
// feature changes, for callers that prefer under- over over-segmentation.
func SignificantChangeConfig() Config {
	config := DefaultConfig()
	config.EnergyChangeThreshold = 0.2
	config.CentroidChangeThreshold = 300.0
	config.MinInterSyllableGap = 0.08
	return config
}

// NoisyEnvironmentConfig returns a preset for recordings with a noise
// floor: heavier smoothing and per-segment adaptive thresholds.
func NoisyEnvironmentConfig() Config {
	config := DefaultConfig()
	config.SmoothingWindow = 5
	config.EnergyChangeThreshold = 0.08
	config.Adaptive = true
	return config
}
