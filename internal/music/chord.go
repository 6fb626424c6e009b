package music

import "strings"

// Quality is a normalized chord-quality tag used to select an interval
// template. Extensions (7ths, sus, dim, aug) are not modeled yet; labels
// collapse onto the triad qualities below.
type Quality string

const (
	QualityMajor Quality = "maj"
	QualityMinor Quality = "min"
)

// chordTemplates is the declarative template table: semitone intervals from
// the chord root for each quality. New qualities extend this table without
// touching classification logic.
var chordTemplates = map[Quality][]int{
	QualityMajor: {0, 4, 7},
	QualityMinor: {0, 3, 7},
}

// ParseChord splits a recognizer label like "C#m" into its root pitch class
// and normalized quality. A label containing "m" without "maj" is minor;
// everything else is major. ok is false for the no-chord sentinel and
// labels without a recognizable root.
func ParseChord(label string) (root int, quality Quality, ok bool) {
	if label == "" || label == "N" {
		return 0, "", false
	}

	// Root is the leading note letter plus an optional accidental.
	rootLen := 1
	if len(label) >= 2 && (label[1] == '#' || label[1] == 'b') {
		rootLen = 2
	}
	root, found := pitchClassIndex[label[:rootLen]]
	if !found {
		return 0, "", false
	}

	rest := label[rootLen:]
	if strings.Contains(rest, "m") && !strings.Contains(rest, "maj") {
		return root, QualityMinor, true
	}
	return root, QualityMajor, true
}

// ChordPitchClasses returns the set of pitch classes sounding in the given
// chord label, derived from the root and the quality's interval template.
func ChordPitchClasses(label string) (map[int]bool, bool) {
	root, quality, ok := ParseChord(label)
	if !ok {
		return nil, false
	}
	set := make(map[int]bool, 3)
	for _, interval := range chordTemplates[quality] {
		set[(root+interval)%12] = true
	}
	return set, true
}
