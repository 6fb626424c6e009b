package music

import "fmt"

// majorScale is the interval pattern of a major scale in semitones from
// the tonic.
var majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}

// KeyEstimator reduces a chroma-energy matrix (12 pitch-class rows by time
// frames) to a tonic pitch class. It is an interface so a per-segment
// estimator can replace the global one without touching the classifier.
type KeyEstimator interface {
	EstimateKey(chroma [][]float64) (string, error)
}

// GlobalKeyEstimator assumes one stable key for the whole track: the pitch
// class with the greatest total energy summed across all frames, read as
// the tonic of a major scale.
type GlobalKeyEstimator struct{}

// EstimateKey implements KeyEstimator.
func (GlobalKeyEstimator) EstimateKey(chroma [][]float64) (string, error) {
	if len(chroma) != 12 {
		return "", fmt.Errorf("chroma matrix has %d rows, want 12", len(chroma))
	}

	best, bestEnergy := 0, 0.0
	for pc, row := range chroma {
		var total float64
		for _, e := range row {
			total += e
		}
		if pc == 0 || total > bestEnergy {
			best = pc
			bestEnergy = total
		}
	}
	return pitchClassNames[best], nil
}

// InMajorScale reports whether a pitch class belongs to the major scale
// built on the given tonic.
func InMajorScale(pc, tonic int) bool {
	interval := ((pc-tonic)%12 + 12) % 12
	for _, step := range majorScale {
		if interval == step {
			return true
		}
	}
	return false
}
