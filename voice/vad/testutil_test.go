package vad

import "math"

const testSampleRate = 44100

// sineWave generates a pure tone.
func sineWave(freq, duration, amplitude float64) []float64 {
	n := int(duration * testSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	return samples
}

// silence generates a run of zero samples.
func silence(duration float64) []float64 {
	return make([]float64, int(duration*testSampleRate))
}

// whiteNoise generates deterministic uniform noise via a fixed LCG, so
// assertions stay stable across runs.
func whiteNoise(duration, amplitude float64, seed uint32) []float64 {
	n := int(duration * testSampleRate)
	samples := make([]float64, n)
	state := seed
	for i := range samples {
		state = state*1664525 + 1013904223
		samples[i] = amplitude * (2.0*float64(state)/float64(math.MaxUint32) - 1.0)
	}
	return samples
}

// concat joins audio sections into one buffer.
func concat(sections ...[]float64) []float64 {
	var out []float64
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}
