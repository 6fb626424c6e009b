package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dygy/chordlens/internal/audio"
	"github.com/dygy/chordlens/internal/config"
	"github.com/dygy/chordlens/internal/engine"
	"github.com/dygy/chordlens/internal/exec"
	"github.com/dygy/chordlens/internal/mix"
	"github.com/dygy/chordlens/internal/pipeline"
	"github.com/dygy/chordlens/internal/progress"
	"github.com/dygy/chordlens/internal/server"
	"github.com/dygy/chordlens/internal/stems"
	"github.com/dygy/chordlens/internal/store"
	"github.com/dygy/chordlens/internal/workspace"
)

var version = "0.1.0"

var (
	configPath  string
	inputPath   string
	outputPath  string
	verboseFlag bool
	listenAddr  string
	dataDir     string
	mixTypeFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chordlens",
	Short: "Annotate audio with chords, melody roles, key and stems",
	Long: `chordlens turns an audio recording into a time-aligned musical
annotation: a bar/beat-segmented chord timeline, a melody timeline with
harmonic role tags, a global key estimate and separated instrument stems.

Pipeline: audio → stem separation → chord/key/melody extraction → annotation`,
	Version: version,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Annotate a single audio file",
	Long: `Run the full annotation pipeline over one audio file and print the
result as JSON.

Examples:
  chordlens analyze --input track.wav
  chordlens analyze -i track.mp3 -o annotation.json --verbose`,
	RunE: runAnalyze,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation API server",
	Long: `Start the HTTP API consumed by the playback client.

Example:
  chordlens serve --addr :8080`,
	RunE: runServe,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	RunE:  runList,
}

var mixCmd = &cobra.Command{
	Use:   "mix <stems-dir>",
	Short: "Synthesize a derived mix from separated stems",
	Long: `Produce a playable mix from an existing stem directory.

Examples:
  chordlens mix data/stems/htdemucs/mytrack --type instrumental
  chordlens mix data/stems/htdemucs/mytrack --type vocals`,
	Args: cobra.ExactArgs(1),
	RunE: runMix,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "chordlens.toml", "path to config file")

	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "audio file to annotate (required)")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write result JSON here instead of stdout")
	analyzeCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose progress output")
	analyzeCmd.MarkFlagRequired("input")

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")

	mixCmd.Flags().StringVar(&mixTypeFlag, "type", stems.DerivedInstrumental, "mix type: instrumental or vocals")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mixCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	reporter := progress.NewReporter(os.Stderr, verboseFlag)

	reporter.StartStage(progress.StageValidate)
	format, err := audio.ValidateInput(inputPath)
	if err != nil {
		reporter.Error(err)
		return err
	}
	reporter.StageComplete("Valid %s file", format)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	runner := exec.NewRunner(cfg.PythonPath, cfg.ScriptsDir)
	separator := stems.NewSeparator(runner, cfg.SeparationModel, cfg.StemsDir(), logger)
	orch := pipeline.New(
		separator,
		engine.NewChordExtractor(runner),
		engine.NewPitchTracker(runner),
		engine.NewChromaAnalyzer(runner),
		pipeline.Config{
			MelodyStride:      cfg.MelodyStride,
			SeparationTimeout: cfg.SeparationTimeout.Std(),
			ExtractionTimeout: cfg.ExtractionTimeout.Std(),
		},
		logger,
	)
	orch.SetReporter(reporter)

	ws, err := workspace.Create(cfg.WorkDir())
	if err != nil {
		return err
	}
	defer ws.Cleanup()

	result, err := orch.Annotate(context.Background(), inputPath, ws)
	if err != nil {
		reporter.Error(err)
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else {
		fmt.Println(string(data))
	}
	reporter.Done(outputPath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run()
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Created"})
	for _, sm := range summaries {
		t.AppendRow(table.Row{sm.ID, sm.Title, sm.Artist, sm.CreatedAt.Format("2006-01-02 15:04")})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func runMix(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	synth := mix.NewSynthesizer(logger)

	path, err := synth.Mix(args[0], mixTypeFlag)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
