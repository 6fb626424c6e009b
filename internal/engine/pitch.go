package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/exec"
	"github.com/dygy/chordlens/internal/music"
)

// PitchTracker runs the pitch-tracking engine over an audio file.
type PitchTracker struct {
	runner *exec.Runner
}

// NewPitchTracker creates a pitch tracker
func NewPitchTracker(runner *exec.Runner) *PitchTracker {
	return &PitchTracker{runner: runner}
}

// Track returns the per-frame pitch track for the audio file. The engine's
// arrays must be equal length; a mismatch is an engine failure, not
// something the classifier should paper over.
func (p *PitchTracker) Track(ctx context.Context, audioPath, outputPath string) (*music.PitchTrack, error) {
	result, err := p.runner.RunScript(ctx, "pitch.py", audioPath, outputPath)
	if err != nil {
		return nil, apperrors.NewProcessError("crepe", "pitch_tracking", result.ExitCode, result.Stderr, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read pitch track: %w", err)
	}

	var track music.PitchTrack
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("parse pitch track: %w", err)
	}
	if err := track.Validate(); err != nil {
		return nil, fmt.Errorf("pitch track: %w", err)
	}
	return &track, nil
}
