package music

import (
	"testing"

	"github.com/dygy/chordlens/internal/timeline"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		name  string
		pc    int
		chord string
		key   string
		want  Role
	}{
		{"chord root", 0, "C", "C", RoleChordTone},
		{"chord third", 4, "C", "C", RoleChordTone},
		{"chord fifth", 7, "C", "C", RoleChordTone},
		{"minor third of minor chord", 0, "Am", "C", RoleChordTone},
		{"in key but not chord", 2, "C", "C", RoleScaleNote},
		{"chromatic note", 1, "C", "C", RolePassingNote},
		{"no chord, in key", 2, timeline.NoChordLabel, "C", RoleScaleNote},
		{"no chord, no key", 2, timeline.NoChordLabel, "", RolePassingNote},
		{"out of key without chord", 6, "C", "C", RolePassingNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyRole(tt.pc, tt.chord, tt.key); got != tt.want {
				t.Errorf("ClassifyRole(%d, %q, %q) = %q, want %q", tt.pc, tt.chord, tt.key, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	chords := timeline.Build([]timeline.RawEvent{
		{Timestamp: 0.0, Chord: "C"},
	})

	t.Run("roles against active chord and key", func(t *testing.T) {
		track := &PitchTrack{
			Time:       []float64{0.0, 0.5, 1.0, 1.5},
			Frequency:  []float64{523.25, 659.25, 587.33, 554.37}, // C5 E5 D5 C#5
			Voiced:     []bool{true, true, true, true},
			Confidence: []float64{0.9, 0.9, 0.9, 0.9},
		}

		c := NewClassifier(1)
		events, err := c.Classify(track, chords, "C")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 4 {
			t.Fatalf("got %d events, want 4", len(events))
		}

		wantNotes := []string{"C5", "E5", "D5", "C#5"}
		wantRoles := []Role{RoleChordTone, RoleChordTone, RoleScaleNote, RolePassingNote}
		for i, ev := range events {
			if ev.Note != wantNotes[i] {
				t.Errorf("event %d: note = %q, want %q", i, ev.Note, wantNotes[i])
			}
			if ev.Role != wantRoles[i] {
				t.Errorf("event %d: role = %q, want %q", i, ev.Role, wantRoles[i])
			}
		}
	})

	t.Run("stride keeps every Nth voiced frame", func(t *testing.T) {
		n := 20
		track := &PitchTrack{
			Time:       make([]float64, n),
			Frequency:  make([]float64, n),
			Voiced:     make([]bool, n),
			Confidence: make([]float64, n),
		}
		for i := 0; i < n; i++ {
			track.Time[i] = float64(i) * 0.1
			track.Frequency[i] = 440.0
			track.Voiced[i] = true
			track.Confidence[i] = 1.0
		}
		// Unvoiced frames must not advance the stride counter.
		track.Voiced[3] = false
		track.Voiced[4] = false

		c := NewClassifier(5)
		events, err := c.Classify(track, chords, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 18 voiced frames, stride 5: voiced indices 0, 5, 10, 15.
		if len(events) != 4 {
			t.Errorf("got %d events, want 4", len(events))
		}
	})

	t.Run("unvoiced and invalid frames skipped", func(t *testing.T) {
		track := &PitchTrack{
			Time:       []float64{0.0, 0.5, 1.0},
			Frequency:  []float64{440.0, 0.0, 440.0},
			Voiced:     []bool{false, true, true},
			Confidence: []float64{0.9, 0.9, 0.9},
		}
		c := NewClassifier(1)
		events, err := c.Classify(track, chords, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}
		if events[0].Time != 1.0 {
			t.Errorf("event time = %v, want 1.0", events[0].Time)
		}
	})

	t.Run("mismatched array lengths rejected", func(t *testing.T) {
		track := &PitchTrack{
			Time:       []float64{0.0, 0.5},
			Frequency:  []float64{440.0},
			Voiced:     []bool{true, true},
			Confidence: []float64{0.9, 0.9},
		}
		if _, err := NewClassifier(1).Classify(track, chords, ""); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestNewClassifier(t *testing.T) {
	if c := NewClassifier(0); c.Stride != DefaultStride {
		t.Errorf("stride = %d, want %d", c.Stride, DefaultStride)
	}
	if c := NewClassifier(3); c.Stride != 3 {
		t.Errorf("stride = %d, want 3", c.Stride)
	}
}
