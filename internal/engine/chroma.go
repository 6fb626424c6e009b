package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/exec"
)

// ChromaAnalyzer runs the chroma front-end over an audio file.
type ChromaAnalyzer struct {
	runner *exec.Runner
}

// NewChromaAnalyzer creates a chroma analyzer
func NewChromaAnalyzer(runner *exec.Runner) *ChromaAnalyzer {
	return &ChromaAnalyzer{runner: runner}
}

type chromaOutput struct {
	Chroma [][]float64 `json:"chroma"`
}

// Analyze returns the 12-row chroma-energy matrix for the audio file.
func (c *ChromaAnalyzer) Analyze(ctx context.Context, audioPath, outputPath string) ([][]float64, error) {
	result, err := c.runner.RunScript(ctx, "chroma.py", audioPath, outputPath)
	if err != nil {
		return nil, apperrors.NewProcessError("librosa", "chroma", result.ExitCode, result.Stderr, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read chroma matrix: %w", err)
	}

	var out chromaOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse chroma matrix: %w", err)
	}
	if len(out.Chroma) != 12 {
		return nil, fmt.Errorf("chroma matrix has %d rows, want 12", len(out.Chroma))
	}
	return out.Chroma, nil
}
