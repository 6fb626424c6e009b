package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dygy/chordlens/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	return &Server{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestWriteError(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.writeError(rec, http.StatusBadRequest, "no file uploaded")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"] != "no file uploaded" {
		t.Errorf("error field = %q", body["error"])
	}
}

func TestAudioURL(t *testing.T) {
	s := testServer(t)

	t.Run("path under data dir", func(t *testing.T) {
		path := filepath.Join(s.cfg.DataDir, "stems", "htdemucs", "track", "vocals.wav")
		if got := s.audioURL(path); got != "/audio/stems/htdemucs/track/vocals.wav" {
			t.Errorf("url = %q", got)
		}
	})

	t.Run("path outside data dir stays verbatim", func(t *testing.T) {
		if got := s.audioURL("/etc/passwd"); got != "/etc/passwd" {
			t.Errorf("url = %q", got)
		}
	})
}
