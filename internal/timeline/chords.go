package timeline

import (
	"encoding/json"
	"sort"
	"strconv"
)

// NoChordLabel is the output label for the recognizer's "N" (silence) events.
const NoChordLabel = "No Chord"

// barGap is the inter-event gap that starts a new bar. This is a fixed
// heuristic, not tempo-aware.
const barGap = 2.0

// RawEvent is a chord-change record as emitted by the recognition engine.
// Timestamp is kept untyped so malformed rows survive JSON decoding and can
// be skipped instead of failing the whole extraction.
type RawEvent struct {
	Timestamp any    `json:"timestamp"`
	Chord     string `json:"chord"`
}

// ChordEvent is one cleaned, bar/beat-annotated entry of the timeline.
type ChordEvent struct {
	Time       float64 `json:"time"`
	Chord      string  `json:"chord"`
	Confidence float64 `json:"confidence"`
	Beat       int     `json:"beat"`
	Bar        int     `json:"bar"`
}

// Stats counts what happened to the raw event stream.
type Stats struct {
	TotalEvents int `json:"total_events"`
	Skipped     int `json:"skipped"`
	NoChord     int `json:"no_chord"`
	Processed   int `json:"processed"`
}

// Timeline is the cleaned chord sequence for one track.
type Timeline struct {
	Events   []ChordEvent `json:"events"`
	Stats    Stats        `json:"stats"`
	Duration float64      `json:"duration"`
}

// Build converts raw recognizer events into a bar/beat-annotated timeline.
// Malformed events (unparseable timestamp or missing label) are counted and
// skipped, never fatal.
func Build(raw []RawEvent) *Timeline {
	tl := &Timeline{}

	bar, beat, prevTime := 1, 0, 0.0
	var lastValidTime float64
	haveEvents := false

	for _, item := range raw {
		tl.Stats.TotalEvents++

		t, ok := coerceFloat(item.Timestamp)
		if !ok || item.Chord == "" {
			tl.Stats.Skipped++
			continue
		}

		// prevTime tracks the start of the current bar: a gap of barGap or
		// more since then begins a new bar.
		if t-prevTime >= barGap {
			bar++
			beat = 1
			prevTime = t
		} else {
			beat++
		}
		lastValidTime = t
		haveEvents = true

		chord := item.Chord
		if chord == "N" {
			chord = NoChordLabel
			tl.Stats.NoChord++
		}

		tl.Events = append(tl.Events, ChordEvent{
			Time:       t,
			Chord:      chord,
			Confidence: 1.0,
			Beat:       beat,
			Bar:        bar,
		})
		tl.Stats.Processed++
	}

	if haveEvents {
		tl.Duration = lastValidTime
	}
	return tl
}

// ActiveChordAt returns the label of the last event starting at or before t,
// or NoChordLabel when no event has started yet. Events are sorted by time,
// so this is a binary search.
func (tl *Timeline) ActiveChordAt(t float64) string {
	n := len(tl.Events)
	if n == 0 {
		return NoChordLabel
	}
	// First index whose time is strictly greater than t.
	i := sort.Search(n, func(i int) bool { return tl.Events[i].Time > t })
	if i == 0 {
		return NoChordLabel
	}
	return tl.Events[i-1].Chord
}

// coerceFloat converts the engine's untyped timestamp to seconds. Numbers,
// json.Number and numeric strings are accepted; everything else is rejected.
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
