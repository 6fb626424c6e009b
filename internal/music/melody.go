package music

import (
	"fmt"

	"github.com/dygy/chordlens/internal/timeline"
)

// Role is the harmonic function of a melody note relative to the active
// chord and the estimated key.
type Role string

const (
	RoleChordTone   Role = "chord_tone"
	RoleScaleNote   Role = "scale_note"
	RolePassingNote Role = "passing_note"
)

// DefaultStride keeps every Nth voiced frame to bound payload size.
const DefaultStride = 5

// PitchTrack is the pitch engine's per-frame output: equal-length arrays of
// estimated frequency, voiced flag, confidence and timestamps.
type PitchTrack struct {
	Frequency  []float64 `json:"frequency"`
	Voiced     []bool    `json:"voiced"`
	Confidence []float64 `json:"confidence"`
	Time       []float64 `json:"time"`
}

// Validate checks the equal-length invariant.
func (p *PitchTrack) Validate() error {
	n := len(p.Time)
	if len(p.Frequency) != n || len(p.Voiced) != n || len(p.Confidence) != n {
		return fmt.Errorf("pitch track arrays have mismatched lengths (%d freq, %d voiced, %d conf, %d time)",
			len(p.Frequency), len(p.Voiced), len(p.Confidence), n)
	}
	return nil
}

// MelodyEvent is one classified melody note.
type MelodyEvent struct {
	Time  float64 `json:"time"`
	Pitch float64 `json:"pitch"`
	Note  string  `json:"note"`
	Role  Role    `json:"role"`
}

// Classifier converts a pitch track into discrete, role-tagged melody
// events against an already-built chord timeline and key estimate.
type Classifier struct {
	Stride int
}

// NewClassifier creates a classifier with the given voiced-frame stride;
// values below 1 fall back to DefaultStride.
func NewClassifier(stride int) *Classifier {
	if stride < 1 {
		stride = DefaultStride
	}
	return &Classifier{Stride: stride}
}

// Classify emits every Nth voiced frame as a melody event. A frame
// contributes only if its pitch is defined and its voiced flag is set.
// The stride is uniform over voiced frames, not time-based.
func (c *Classifier) Classify(track *PitchTrack, chords *timeline.Timeline, key string) ([]MelodyEvent, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}

	var events []MelodyEvent
	voiced := 0
	for i := range track.Time {
		if !track.Voiced[i] {
			continue
		}
		note, pc, ok := NoteFromHz(track.Frequency[i])
		if !ok {
			continue
		}
		if voiced%c.Stride == 0 {
			chord := chords.ActiveChordAt(track.Time[i])
			events = append(events, MelodyEvent{
				Time:  track.Time[i],
				Pitch: track.Frequency[i],
				Note:  note,
				Role:  ClassifyRole(pc, chord, key),
			})
		}
		voiced++
	}
	return events, nil
}

// ClassifyRole determines the harmonic role of a pitch class: chord tone if
// it belongs to the active chord's pitch-class set, otherwise scale note if
// it belongs to the major scale on the key tonic, otherwise passing note.
// With no usable chord and no key, the note defaults to a passing note.
func ClassifyRole(pc int, chordLabel, key string) Role {
	if set, ok := ChordPitchClasses(chordLabel); ok && set[pc] {
		return RoleChordTone
	}
	if tonic, ok := PitchClassOf(key); ok && InMajorScale(pc, tonic) {
		return RoleScaleNote
	}
	return RolePassingNote
}
