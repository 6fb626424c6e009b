// Package server exposes the annotation pipeline over HTTP for the
// playback client.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dygy/chordlens/internal/config"
	"github.com/dygy/chordlens/internal/engine"
	"github.com/dygy/chordlens/internal/exec"
	"github.com/dygy/chordlens/internal/mix"
	"github.com/dygy/chordlens/internal/pipeline"
	"github.com/dygy/chordlens/internal/stems"
	"github.com/dygy/chordlens/internal/store"
)

// Server is the HTTP server
type Server struct {
	cfg       config.Config
	router    *chi.Mux
	logger    *slog.Logger
	store     *store.Store
	orch      *pipeline.Orchestrator
	mixer     *mix.Synthesizer
	separator *stems.Separator
}

// New creates a server wired to the external engines and the local store.
func New(cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}

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

	s := &Server{
		cfg:       cfg,
		router:    chi.NewRouter(),
		logger:    logger,
		store:     st,
		orch:      orch,
		mixer:     mix.NewSynthesizer(logger),
		separator: separator,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Delete("/analyses/{id}", s.handleDeleteAnalysis)
		r.Get("/mix/{track}/{type}", s.handleMix)
	})

	// Uploaded and derived audio for playback/download.
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.cfg.DataDir))))
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // separation can take a while
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		s.store.Close()
		close(done)
	}()

	s.logger.Info("server starting", slog.String("addr", s.cfg.ListenAddr))
	fmt.Printf("\n  chordlens API running at: http://localhost%s\n\n", s.cfg.ListenAddr)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
