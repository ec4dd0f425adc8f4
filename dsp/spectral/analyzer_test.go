package spectral

import (
	"math"
	"testing"
)

// sineWave generates a pure sinusoid for spectrum validation.
func sineWave(freq float64, sampleRate int, duration, amplitude float64) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestNewAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		sampleRate int
		wantErr    bool
	}{
		{"valid 1024", 1024, 44100, false},
		{"valid 256", 256, 16000, false},
		{"zero size", 0, 44100, true},
		{"negative size", -4, 44100, true},
		{"non power of two", 1000, 44100, true},
		{"off by one", 1023, 44100, true},
		{"zero sample rate", 1024, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(tt.windowSize, tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAnalyzer(%d, %d) error = %v, wantErr %v",
					tt.windowSize, tt.sampleRate, err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeSpectrumShape(t *testing.T) {
	for _, windowSize := range []int{256, 512, 1024, 2048} {
		analyzer, err := NewAnalyzer(windowSize, 44100)
		if err != nil {
			t.Fatalf("NewAnalyzer(%d): %v", windowSize, err)
		}

		signal := sineWave(440.0, 44100, 0.1, 0.5)
		spectrum, err := analyzer.Analyze(signal, 0)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		if len(spectrum.Magnitudes) != windowSize/2 {
			t.Errorf("window %d: got %d magnitudes, want %d",
				windowSize, len(spectrum.Magnitudes), windowSize/2)
		}
		if len(spectrum.Frequencies) != len(spectrum.Magnitudes) {
			t.Errorf("window %d: frequencies (%d) and magnitudes (%d) differ in length",
				windowSize, len(spectrum.Frequencies), len(spectrum.Magnitudes))
		}

		freqStep := 44100.0 / float64(windowSize)
		for i, mag := range spectrum.Magnitudes {
			if mag < 0 {
				t.Errorf("window %d: negative magnitude %f at bin %d", windowSize, mag, i)
			}
			wantFreq := float64(i) * freqStep
			if math.Abs(spectrum.Frequencies[i]-wantFreq) > 1e-9 {
				t.Errorf("window %d: bin %d frequency %f, want %f",
					windowSize, i, spectrum.Frequencies[i], wantFreq)
			}
		}
	}
}

func TestAnalyzePeakFrequency(t *testing.T) {
	const (
		sampleRate = 44100
		windowSize = 1024
	)
	binWidth := float64(sampleRate) / float64(windowSize)

	analyzer, err := NewAnalyzer(windowSize, sampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	for _, freq := range []float64{150.0, 440.0, 880.0} {
		signal := sineWave(freq, sampleRate, 0.05, 0.5)
		spectrum, err := analyzer.Analyze(signal, 0)
		if err != nil {
			t.Fatalf("Analyze(%.0f Hz): %v", freq, err)
		}

		peakFreq, peakMag := spectrum.Peak()
		if peakMag <= 0 {
			t.Errorf("%.0f Hz tone: peak magnitude %f, want > 0", freq, peakMag)
		}

		// Peak lands on the bin nearest the tone frequency.
		wantFreq := math.Round(freq*float64(windowSize)/float64(sampleRate)) * binWidth
		if math.Abs(peakFreq-wantFreq) > binWidth {
			t.Errorf("%.0f Hz tone: peak at %.2f Hz, want %.2f Hz within one bin (%.2f Hz)",
				freq, peakFreq, wantFreq, binWidth)
		}
	}
}

func TestAnalyzeShortInput(t *testing.T) {
	analyzer, err := NewAnalyzer(1024, 44100)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	if _, err := analyzer.Analyze(make([]float64, 512), 0); err == nil {
		t.Error("expected error for input shorter than one window")
	}
}

func TestFrequencyDataDerived(t *testing.T) {
	analyzer, err := NewAnalyzer(1024, 44100)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	signal := sineWave(440.0, 44100, 0.05, 0.5)
	spectrum, err := analyzer.Analyze(signal, 1.5)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if spectrum.Timestamp != 1.5 {
		t.Errorf("timestamp %f, want 1.5", spectrum.Timestamp)
	}
	if spectrum.TotalEnergy() <= 0 {
		t.Errorf("total energy %f, want > 0", spectrum.TotalEnergy())
	}
	if got := spectrum.FrequencyResolution(); math.Abs(got-44100.0/1024.0) > 1e-9 {
		t.Errorf("frequency resolution %f, want %f", got, 44100.0/1024.0)
	}

	// Band restriction must never report a frequency outside the band.
	freq, mag := spectrum.PeakInBand(80, 1100)
	if mag <= 0 || freq < 80 || freq > 1100 {
		t.Errorf("PeakInBand returned %.2f Hz / %f, want voice-band peak", freq, mag)
	}
}
