package music

import "testing"

func TestParseChord(t *testing.T) {
	tests := []struct {
		label   string
		root    int
		quality Quality
		ok      bool
	}{
		{"C", 0, QualityMajor, true},
		{"Cmaj", 0, QualityMajor, true},
		{"Cmaj7", 0, QualityMajor, true},
		{"Cm", 0, QualityMinor, true},
		{"C#m", 1, QualityMinor, true},
		{"Bb", 10, QualityMajor, true},
		{"Bbm", 10, QualityMinor, true},
		{"Am7", 9, QualityMinor, true},
		{"G", 7, QualityMajor, true},
		{"N", 0, "", false},
		{"", 0, "", false},
		{"?", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			root, quality, ok := ParseChord(tt.label)
			if ok != tt.ok {
				t.Fatalf("ParseChord(%q) ok = %v, want %v", tt.label, ok, tt.ok)
			}
			if !ok {
				return
			}
			if root != tt.root || quality != tt.quality {
				t.Errorf("ParseChord(%q) = (%d, %q), want (%d, %q)", tt.label, root, quality, tt.root, tt.quality)
			}
		})
	}
}

func TestChordPitchClasses(t *testing.T) {
	t.Run("major triad", func(t *testing.T) {
		set, ok := ChordPitchClasses("C")
		if !ok {
			t.Fatal("expected ok")
		}
		for _, pc := range []int{0, 4, 7} {
			if !set[pc] {
				t.Errorf("pitch class %d missing from C major", pc)
			}
		}
		if len(set) != 3 {
			t.Errorf("set has %d entries, want 3", len(set))
		}
	})

	t.Run("minor triad", func(t *testing.T) {
		set, ok := ChordPitchClasses("Am")
		if !ok {
			t.Fatal("expected ok")
		}
		for _, pc := range []int{9, 0, 4} {
			if !set[pc] {
				t.Errorf("pitch class %d missing from A minor", pc)
			}
		}
	})

	t.Run("root wraps past the octave", func(t *testing.T) {
		set, ok := ChordPitchClasses("B")
		if !ok {
			t.Fatal("expected ok")
		}
		// B D# F#: 11, 3, 6
		for _, pc := range []int{11, 3, 6} {
			if !set[pc] {
				t.Errorf("pitch class %d missing from B major", pc)
			}
		}
	})

	t.Run("no-chord sentinel", func(t *testing.T) {
		if _, ok := ChordPitchClasses("N"); ok {
			t.Error("expected no pitch classes for N")
		}
	})
}
