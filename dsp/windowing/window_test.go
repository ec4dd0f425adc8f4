package windowing

import (
	"math"
	"testing"
)

func TestHammingCoefficients(t *testing.T) {
	window := NewHamming(512)

	coeffs := window.Coefficients()
	if len(coeffs) != 512 {
		t.Fatalf("got %d coefficients, want 512", len(coeffs))
	}

	// Hamming endpoints sit at 0.08, the center at 1.0.
	if math.Abs(coeffs[0]-0.08) > 1e-9 {
		t.Errorf("first coefficient %f, want 0.08", coeffs[0])
	}
	if math.Abs(coeffs[511]-0.08) > 1e-9 {
		t.Errorf("last coefficient %f, want 0.08", coeffs[511])
	}

	peak := 0.0
	for _, c := range coeffs {
		peak = math.Max(peak, c)
	}
	if math.Abs(peak-1.0) > 1e-4 {
		t.Errorf("peak coefficient %f, want ~1.0", peak)
	}
}

func TestHannCoefficients(t *testing.T) {
	window := NewHann(512)

	coeffs := window.Coefficients()
	if math.Abs(coeffs[0]) > 1e-9 {
		t.Errorf("first Hann coefficient %f, want 0", coeffs[0])
	}
	if math.Abs(coeffs[511]) > 1e-9 {
		t.Errorf("last Hann coefficient %f, want 0", coeffs[511])
	}
}

func TestApplySizeMismatch(t *testing.T) {
	window := NewHamming(512)

	if got := window.Apply(make([]float64, 100)); got != nil {
		t.Error("Apply with wrong length should return nil")
	}
	if err := window.ApplyInPlace(make([]float64, 100)); err == nil {
		t.Error("ApplyInPlace with wrong length should error")
	}
}

func TestApplyInPlaceMatchesApply(t *testing.T) {
	window := NewHamming(64)

	signal := make([]float64, 64)
	for i := range signal {
		signal[i] = 1.0
	}

	applied := window.Apply(signal)
	if err := window.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}

	for i := range signal {
		if math.Abs(signal[i]-applied[i]) > 1e-12 {
			t.Fatalf("sample %d: in-place %f != copy %f", i, signal[i], applied[i])
		}
	}
}
