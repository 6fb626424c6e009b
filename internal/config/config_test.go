package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != ":8080" {
			t.Errorf("listen_addr = %q", cfg.ListenAddr)
		}
		if cfg.SeparationModel != "htdemucs" {
			t.Errorf("separation_model = %q", cfg.SeparationModel)
		}
		if cfg.MelodyStride != 5 {
			t.Errorf("melody_stride = %d", cfg.MelodyStride)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chordlens.toml")
		content := `
listen_addr = ":9090"
melody_stride = 3
separation_timeout = "90s"
log_level = "debug"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != ":9090" {
			t.Errorf("listen_addr = %q", cfg.ListenAddr)
		}
		if cfg.MelodyStride != 3 {
			t.Errorf("melody_stride = %d", cfg.MelodyStride)
		}
		if cfg.SeparationTimeout.Std() != 90*time.Second {
			t.Errorf("separation_timeout = %v", cfg.SeparationTimeout.Std())
		}
		// Unset keys keep their defaults.
		if cfg.DataDir != "data" {
			t.Errorf("data_dir = %q", cfg.DataDir)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chordlens.toml")
		if err := os.WriteFile(path, []byte(`melody_stride = 0`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("malformed toml rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chordlens.toml")
		if err := os.WriteFile(path, []byte(`listen_addr = `), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestDirectoryLayout(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/chordlens"

	if got := cfg.UploadsDir(); got != filepath.Join("/srv/chordlens", "uploads") {
		t.Errorf("uploads dir = %q", got)
	}
	if got := cfg.DBPath(); got != filepath.Join("/srv/chordlens", "chordlens.db") {
		t.Errorf("db path = %q", got)
	}
}

func TestEnsureDirs(t *testing.T) {
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, dir := range []string{cfg.UploadsDir(), cfg.StemsDir(), cfg.WorkDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s was not created", dir)
		}
	}
}
