// Package pipeline assembles the per-track annotation from the external
// engines' outputs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dygy/chordlens/internal/music"
	"github.com/dygy/chordlens/internal/progress"
	"github.com/dygy/chordlens/internal/stems"
	"github.com/dygy/chordlens/internal/timeline"
	"github.com/dygy/chordlens/internal/workspace"
)

// Placeholder values until tempo and meter detection exist.
const (
	PlaceholderBPM           = 120.0
	PlaceholderTimeSignature = "4/4"
)

// Engine interfaces, satisfied by the clients in internal/engine and by
// fakes in tests.
type ChordExtractor interface {
	Extract(ctx context.Context, audioPath, outputPath string) ([]timeline.RawEvent, error)
}

type PitchTracker interface {
	Track(ctx context.Context, audioPath, outputPath string) (*music.PitchTrack, error)
}

type ChromaAnalyzer interface {
	Analyze(ctx context.Context, audioPath, outputPath string) ([][]float64, error)
}

type StemSeparator interface {
	Separate(ctx context.Context, audioPath string) (stems.StemSet, string, error)
}

// Result is the aggregate annotation for one track. It is produced once
// per request, serialized for the client and persisted verbatim.
type Result struct {
	Duration      float64               `json:"duration"`
	BPM           float64               `json:"bpm"`
	Key           string                `json:"key"`
	TimeSignature string                `json:"timeSignature"`
	Chords        []timeline.ChordEvent `json:"chords"`
	Melody        []music.MelodyEvent   `json:"melody"`
	AudioURL      string                `json:"audioUrl"`
	Stems         map[string]string     `json:"stems"`
	Stats         timeline.Stats        `json:"stats"`
}

// Config holds orchestrator tuning.
type Config struct {
	MelodyStride      int
	SeparationTimeout time.Duration
	ExtractionTimeout time.Duration
}

// DefaultConfig returns default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		MelodyStride:      music.DefaultStride,
		SeparationTimeout: 5 * time.Minute,
		ExtractionTimeout: 3 * time.Minute,
	}
}

// Orchestrator coordinates separation, extraction and classification for
// one request. All computation past the engine calls is pure.
type Orchestrator struct {
	separator  StemSeparator
	chords     ChordExtractor
	pitch      PitchTracker
	chroma     ChromaAnalyzer
	keys       music.KeyEstimator
	classifier *music.Classifier
	cfg        Config
	logger     *slog.Logger
	reporter   *progress.Reporter
}

// New creates an orchestrator over the given engines.
func New(separator StemSeparator, chords ChordExtractor, pitch PitchTracker, chroma ChromaAnalyzer, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		separator:  separator,
		chords:     chords,
		pitch:      pitch,
		chroma:     chroma,
		keys:       music.GlobalKeyEstimator{},
		classifier: music.NewClassifier(cfg.MelodyStride),
		cfg:        cfg,
		logger:     logger,
	}
}

// SetKeyEstimator swaps the key estimation strategy.
func (o *Orchestrator) SetKeyEstimator(ke music.KeyEstimator) {
	o.keys = ke
}

// SetReporter attaches a CLI progress reporter; the server leaves it nil.
func (o *Orchestrator) SetReporter(r *progress.Reporter) {
	o.reporter = r
}

func (o *Orchestrator) startStage(stage progress.Stage) {
	if o.reporter != nil {
		o.reporter.StartStage(stage)
	}
}

func (o *Orchestrator) stageComplete(format string, args ...any) {
	if o.reporter != nil {
		o.reporter.StageComplete(format, args...)
	}
}

// Annotate runs the full pipeline over the uploaded audio file. Stem
// separation failure is non-fatal: the unseparated source feeds both chord
// and melody extraction and the result carries no stems. Chord or melody
// engine failure aborts the request.
func (o *Orchestrator) Annotate(ctx context.Context, audioPath string, ws *workspace.Workspace) (*Result, error) {
	chordSource, melodySource := audioPath, audioPath
	var stemSet stems.StemSet

	o.startStage(progress.StageSeparate)
	sepCtx, sepCancel := context.WithTimeout(ctx, o.cfg.SeparationTimeout)
	set, stemDir, err := o.separator.Separate(sepCtx, audioPath)
	sepCancel()
	if err != nil {
		// Degrade to the original mix; stems stay empty.
		o.logger.Warn("stem separation failed, using original audio", "error", err)
		o.stageComplete("Separation unavailable, using original mix")
	} else {
		stemSet = set
		o.logger.Info("stems resolved", "dir", stemDir, "count", len(set))
		o.stageComplete("%d stems extracted", len(set))
		if p, ok := set[stems.StemOther]; ok {
			chordSource = p
		}
		if p, ok := set[stems.StemVocals]; ok {
			melodySource = p
		}
	}

	extCtx, extCancel := context.WithTimeout(ctx, o.cfg.ExtractionTimeout)
	defer extCancel()

	o.startStage(progress.StageChords)
	raw, err := o.chords.Extract(extCtx, chordSource, ws.ChordsJSON())
	if err != nil {
		return nil, fmt.Errorf("chord extraction failed: %w", err)
	}
	tl := timeline.Build(raw)
	o.logger.Info("chord timeline built",
		"processed", tl.Stats.Processed, "skipped", tl.Stats.Skipped, "duration", tl.Duration)
	o.stageComplete("%d chord events (%d skipped)", tl.Stats.Processed, tl.Stats.Skipped)

	// Key estimation runs over the full mix. A chroma failure downgrades to
	// an unknown key rather than aborting; the classifier then falls back
	// to passing-note defaults.
	o.startStage(progress.StageKey)
	var key string
	chromaMat, err := o.chroma.Analyze(extCtx, audioPath, ws.ChromaJSON())
	if err != nil {
		o.logger.Warn("chroma analysis failed, key unknown", "error", err)
		o.stageComplete("Key unknown (chroma unavailable)")
	} else if key, err = o.keys.EstimateKey(chromaMat); err != nil {
		o.logger.Warn("key estimation failed", "error", err)
		key = ""
	} else {
		o.stageComplete("Estimated key: %s major", key)
	}

	o.startStage(progress.StageMelody)
	track, err := o.pitch.Track(extCtx, melodySource, ws.PitchJSON())
	if err != nil {
		return nil, fmt.Errorf("melody extraction failed: %w", err)
	}
	melody, err := o.classifier.Classify(track, tl, key)
	if err != nil {
		return nil, fmt.Errorf("melody extraction failed: %w", err)
	}
	o.stageComplete("%d melody events", len(melody))

	result := &Result{
		Duration:      tl.Duration,
		BPM:           PlaceholderBPM,
		Key:           key,
		TimeSignature: PlaceholderTimeSignature,
		Chords:        tl.Events,
		Melody:        melody,
		Stems:         map[string]string{},
		Stats:         tl.Stats,
	}
	for name, path := range stemSet {
		result.Stems[name] = path
	}
	return result, nil
}
