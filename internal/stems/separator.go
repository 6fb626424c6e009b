// Package stems invokes the external source-separation engine and maps its
// filesystem output onto named stems.
package stems

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/exec"
)

// Stem names produced by the separation engine.
const (
	StemVocals = "vocals"
	StemDrums  = "drums"
	StemBass   = "bass"
	StemOther  = "other"
)

// DerivedInstrumental is the on-demand mix synthesized from the non-vocal
// stems; it is not produced by the engine itself.
const DerivedInstrumental = "instrumental"

// Names lists the engine's stems in presentation order.
var Names = []string{StemVocals, StemDrums, StemBass, StemOther}

// StemSet maps stem name to the file holding it. Only stems whose file
// actually exists appear.
type StemSet map[string]string

// DefaultModel is the separation model identifier passed to the engine.
const DefaultModel = "htdemucs"

// Separator invokes demucs and resolves its output convention
// (outputDir/<model>/<track-basename>/<stem>.wav).
type Separator struct {
	runner    *exec.Runner
	model     string
	outputDir string
	logger    *slog.Logger
}

// NewSeparator creates a separator writing under outputDir. An empty model
// selects DefaultModel.
func NewSeparator(runner *exec.Runner, model, outputDir string, logger *slog.Logger) *Separator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Separator{
		runner:    runner,
		model:     model,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Model returns the separation model identifier in use.
func (s *Separator) Model() string {
	return s.model
}

// TrackDir returns where this separator's output for the given track name
// is expected to live.
func (s *Separator) TrackDir(trackName string) string {
	return filepath.Join(s.outputDir, s.model, trackName)
}

// Separate runs the engine over the audio file and returns the stems that
// exist on disk plus the directory holding them. Any error returned here
// is recoverable for the caller: the pipeline falls back to the
// unseparated source.
func (s *Separator) Separate(ctx context.Context, audioPath string) (StemSet, string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create separation output dir: %w", err)
	}

	s.logger.Info("starting stem separation", "audio", audioPath, "model", s.model)
	result, err := s.runner.RunModule(ctx, "demucs.separate", "-n", s.model, "--out", s.outputDir, audioPath)
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return nil, "", apperrors.NewProcessError("demucs", "separation", exitCode, stderr, err)
	}

	trackName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	modelDir := filepath.Join(s.outputDir, s.model)

	res := ResolveOutputDir(modelDir, trackName)
	switch res.Outcome {
	case ResolutionNotFound:
		return nil, "", fmt.Errorf("no output directory for track %q under %s", trackName, modelDir)
	case ResolutionAmbiguous:
		return nil, "", fmt.Errorf("ambiguous output for track %q: %d candidates under %s",
			trackName, len(res.Candidates), modelDir)
	}

	set := make(StemSet, len(Names))
	for _, stem := range Names {
		path := filepath.Join(res.Dir, stem+".wav")
		if _, err := os.Stat(path); err == nil {
			set[stem] = path
		}
	}
	if len(set) == 0 {
		return nil, "", fmt.Errorf("no stems found in %s", res.Dir)
	}

	s.logger.Info("stem separation complete", "dir", res.Dir, "stems", len(set))
	return set, res.Dir, nil
}
