package music

import (
	"fmt"
	"math"
)

// pitchClassNames maps pitch class numbers (0=C ... 11=B) to names.
var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// pitchClassIndex maps note names, including flat spellings, back to
// pitch class numbers.
var pitchClassIndex = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// PitchClassName returns the name of a pitch class number.
func PitchClassName(pc int) string {
	return pitchClassNames[((pc%12)+12)%12]
}

// PitchClassOf resolves a note name (sharp or flat spelling) to its pitch
// class number.
func PitchClassOf(name string) (int, bool) {
	pc, ok := pitchClassIndex[name]
	return pc, ok
}

// NoteFromHz converts a frequency to the nearest equal-tempered note,
// returning its name with octave (e.g. "A4") and its pitch class. ok is
// false for non-positive or non-finite frequencies.
func NoteFromHz(hz float64) (name string, pc int, ok bool) {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return "", 0, false
	}
	midi := int(math.Round(69 + 12*math.Log2(hz/440.0)))
	if midi < 0 || midi > 127 {
		return "", 0, false
	}
	pc = midi % 12
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", pitchClassNames[pc], octave), pc, true
}
