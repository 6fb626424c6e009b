package music

import "testing"

func TestGlobalKeyEstimator(t *testing.T) {
	t.Run("argmax of summed energy", func(t *testing.T) {
		chroma := make([][]float64, 12)
		for pc := range chroma {
			chroma[pc] = []float64{0.1, 0.1, 0.1}
		}
		// Pitch class 7 (G) dominates across frames.
		chroma[7] = []float64{0.9, 0.8, 0.9}

		key, err := GlobalKeyEstimator{}.EstimateKey(chroma)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "G" {
			t.Errorf("key = %q, want G", key)
		}
	})

	t.Run("wrong row count", func(t *testing.T) {
		if _, err := (GlobalKeyEstimator{}).EstimateKey(make([][]float64, 11)); err == nil {
			t.Error("expected error for 11-row matrix")
		}
	})

	t.Run("ties resolve to the lower pitch class", func(t *testing.T) {
		chroma := make([][]float64, 12)
		for pc := range chroma {
			chroma[pc] = []float64{1.0}
		}
		key, err := GlobalKeyEstimator{}.EstimateKey(chroma)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "C" {
			t.Errorf("key = %q, want C", key)
		}
	})
}

func TestInMajorScale(t *testing.T) {
	// C major: C D E F G A B.
	inC := []int{0, 2, 4, 5, 7, 9, 11}
	outC := []int{1, 3, 6, 8, 10}
	for _, pc := range inC {
		if !InMajorScale(pc, 0) {
			t.Errorf("pitch class %d should be in C major", pc)
		}
	}
	for _, pc := range outC {
		if InMajorScale(pc, 0) {
			t.Errorf("pitch class %d should not be in C major", pc)
		}
	}

	// F# (6) is in G major.
	if !InMajorScale(6, 7) {
		t.Error("F# should be in G major")
	}
	// F (5) is not.
	if InMajorScale(5, 7) {
		t.Error("F should not be in G major")
	}
}
