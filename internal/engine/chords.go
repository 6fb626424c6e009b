// Package engine wraps the external audio-analysis tools. Each client runs
// a Python engine through the process runner and decodes the JSON artifact
// it writes to disk.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/exec"
	"github.com/dygy/chordlens/internal/timeline"
)

// ChordExtractor runs the chord-recognition engine (chordino) over an
// audio file.
type ChordExtractor struct {
	runner *exec.Runner
}

// NewChordExtractor creates a chord extractor
func NewChordExtractor(runner *exec.Runner) *ChordExtractor {
	return &ChordExtractor{runner: runner}
}

// Extract returns the ordered raw chord-change events for the audio file.
// Individual events may still be malformed; only a failure of the engine
// itself is an error here.
func (e *ChordExtractor) Extract(ctx context.Context, audioPath, outputPath string) ([]timeline.RawEvent, error) {
	result, err := e.runner.RunScript(ctx, "chords.py", audioPath, outputPath)
	if err != nil {
		return nil, apperrors.NewProcessError("chordino", "chord_extraction", result.ExitCode, result.Stderr, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read chord events: %w", err)
	}

	var events []timeline.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse chord events: %w", err)
	}
	return events, nil
}
