package vad

// Config is the immutable parameter set for one Detector. Thresholds apply
// to the normalized frame features: energy in [0, 1], zero-crossing rate in
// Hz, spectral flux as mean positive magnitude change.
type Config struct {
	FrameSize int `json:"frame_size"` // Analysis frame size in samples (power of two)

	EnergyThreshold float64 `json:"energy_threshold"` // Minimum normalized energy for a speech vote
	ZCRThreshold    float64 `json:"zcr_threshold"`    // Minimum zero-crossing rate (Hz) for a speech vote
	FluxThreshold   float64 `json:"flux_threshold"`   // Minimum spectral flux for a speech vote

	HangoverDuration   float64 `json:"hangover_duration"`    // Seconds of silence absorbed after speech
	MinSpeechDuration  float64 `json:"min_speech_duration"`  // Speech segments below this are dropped
	MinSilenceDuration float64 `json:"min_silence_duration"` // Silence segments below this are dropped

	Adaptive bool `json:"adaptive"` // Raise thresholds above the estimated noise floor
}

// DefaultConfig returns thresholds tuned for close-mic voice recordings.
func DefaultConfig() Config {
	return Config{
		FrameSize:          1024,
		EnergyThreshold:    0.25,
		ZCRThreshold:       50.0,
		FluxThreshold:      1e-4,
		HangoverDuration:   0.15,
		MinSpeechDuration:  0.1,
		MinSilenceDuration: 0.2,
		Adaptive:           true,
	}
}

// NoisyEnvironmentConfig returns a stricter preset for recordings with an
// audible noise floor: higher feature thresholds and a longer hangover so
// speech is not chopped by noise-level dips.
func NoisyEnvironmentConfig() Config {
	config := DefaultConfig()
	config.EnergyThreshold = 0.35
	config.FluxThreshold = 5e-4
	config.HangoverDuration = 0.25
	return config
}
