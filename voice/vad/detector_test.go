package vad

import (
	"testing"
)

func newTestDetector(t *testing.T, config Config) *Detector {
	t.Helper()
	detector, err := NewDetector(config, testSampleRate)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return detector
}

func TestNewDetectorValidation(t *testing.T) {
	config := DefaultConfig()
	config.FrameSize = 1000
	if _, err := NewDetector(config, testSampleRate); err == nil {
		t.Error("expected error for non-power-of-two frame size")
	}
}

func TestDetectFramesEmptyInput(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	if got := detector.DetectFrames(nil); len(got) != 0 {
		t.Errorf("nil input: got %d results, want 0", len(got))
	}
	if got := detector.DetectFrames(make([]float64, 100)); len(got) != 0 {
		t.Errorf("sub-frame input: got %d results, want 0", len(got))
	}
	if got := detector.DetectSegments(make([]float64, 100)); len(got) != 0 {
		t.Errorf("sub-frame input: got %d segments, want 0", len(got))
	}
}

func TestDetectFramesSteadyTone(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	results := detector.DetectFrames(sineWave(220, 0.5, 0.5))
	if len(results) == 0 {
		t.Fatal("no frames for 0.5s tone")
	}

	for i, r := range results {
		if !r.IsSpeech {
			t.Errorf("frame %d (t=%.3f): tone classified as silence", i, r.Timestamp)
		}
		if r.Confidence <= 0.5 || r.Confidence > 1.0 {
			t.Errorf("frame %d: confidence %f outside (0.5, 1]", i, r.Confidence)
		}
		if i > 0 && r.Timestamp <= results[i-1].Timestamp {
			t.Errorf("frame %d: timestamps not increasing", i)
		}
	}
}

func TestDetectFramesSilence(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	results := detector.DetectFrames(silence(1.0))
	for i, r := range results {
		if r.IsSpeech {
			t.Errorf("frame %d: silence classified as speech", i)
		}
		if r.Confidence != 1.0 {
			t.Errorf("frame %d: silence confidence %f, want 1.0", i, r.Confidence)
		}
	}
}

func TestDetectSegmentsToneSilenceTone(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	audio := concat(
		sineWave(220, 0.5, 0.5),
		silence(0.5),
		sineWave(220, 0.5, 0.5),
	)
	segments := detector.DetectSegments(audio)

	speechCount := 0
	silenceCount := 0
	for i, seg := range segments {
		if seg.EndTime <= seg.StartTime {
			t.Errorf("segment %d: end %.3f not after start %.3f", i, seg.EndTime, seg.StartTime)
		}
		if seg.AvgConfidence < 0 || seg.AvgConfidence > 1 {
			t.Errorf("segment %d: confidence %f outside [0, 1]", i, seg.AvgConfidence)
		}
		if i > 0 && seg.StartTime < segments[i-1].EndTime-1e-9 {
			t.Errorf("segment %d overlaps previous: %.3f < %.3f",
				i, seg.StartTime, segments[i-1].EndTime)
		}

		minDuration := detector.Config().MinSilenceDuration
		if seg.IsSpeech {
			minDuration = detector.Config().MinSpeechDuration
			speechCount++
		} else {
			silenceCount++
		}
		if seg.Duration() < minDuration {
			t.Errorf("segment %d: duration %.3f below minimum %.3f", i, seg.Duration(), minDuration)
		}
	}

	if speechCount < 2 {
		t.Errorf("got %d speech segments, want at least 2", speechCount)
	}
	if silenceCount < 1 {
		t.Errorf("got %d silence segments, want at least 1", silenceCount)
	}
}

func TestHangoverBridgesShortGap(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	// A 50ms dip inside continuous speech sits well within the default
	// 150ms hangover and must not split the segment.
	audio := concat(
		sineWave(220, 0.3, 0.5),
		silence(0.05),
		sineWave(220, 0.3, 0.5),
	)
	segments := detector.DetectSegments(audio)

	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1 bridged speech segment", len(segments))
	}
	if !segments[0].IsSpeech {
		t.Error("bridged segment classified as silence")
	}
	if segments[0].Duration() < 0.5 {
		t.Errorf("bridged segment duration %.3f, want most of the 0.65s input", segments[0].Duration())
	}
}

func TestAdaptiveThresholdSuppressesNoise(t *testing.T) {
	// Quiet noise establishes the floor, then louder noise sits above the
	// configured energy threshold but below the adaptive one.
	audio := concat(
		whiteNoise(0.2, 0.0049, 12345),
		whiteNoise(0.5, 0.0112, 54321),
	)

	adaptive := newTestDetector(t, DefaultConfig())
	speechFrames := 0
	for _, r := range adaptive.DetectFrames(audio) {
		if r.IsSpeech {
			speechFrames++
		}
	}
	if speechFrames != 0 {
		t.Errorf("adaptive: %d noise frames classified as speech, want 0", speechFrames)
	}

	fixed := DefaultConfig()
	fixed.Adaptive = false
	detector := newTestDetector(t, fixed)
	speechFrames = 0
	for _, r := range detector.DetectFrames(audio) {
		if r.IsSpeech {
			speechFrames++
		}
	}
	if speechFrames == 0 {
		t.Error("fixed thresholds: expected the louder noise to cross the configured threshold")
	}
}

func TestResetClearsNoiseEstimate(t *testing.T) {
	detector := newTestDetector(t, DefaultConfig())

	detector.DetectFrames(whiteNoise(0.5, 0.0049, 999))
	noiseEnergy, _, estimated := detector.NoiseEstimate()
	if !estimated {
		t.Fatal("noise estimate not established after first call")
	}
	if noiseEnergy <= 0.05 {
		t.Fatalf("noise energy estimate %f, want clearly above silence", noiseEnergy)
	}

	detector.Reset()
	if _, _, stillEstimated := detector.NoiseEstimate(); stillEstimated {
		t.Error("noise estimate survived Reset")
	}

	// After Reset the second call's estimate depends only on its own audio.
	detector.DetectFrames(silence(0.5))
	resetEnergy, _, estimated := detector.NoiseEstimate()
	if !estimated {
		t.Fatal("noise estimate not re-established after Reset")
	}
	if resetEnergy > 0.01 {
		t.Errorf("estimate after Reset %f carries over the first call's noise", resetEnergy)
	}

	// Without Reset the first call's estimate stays fixed.
	carried := newTestDetector(t, DefaultConfig())
	carried.DetectFrames(whiteNoise(0.5, 0.0049, 999))
	carried.DetectFrames(silence(0.5))
	carriedEnergy, _, _ := carried.NoiseEstimate()
	if carriedEnergy <= 0.05 {
		t.Errorf("estimate without Reset %f, want the first call's value retained", carriedEnergy)
	}
}
