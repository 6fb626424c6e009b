package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreate(t *testing.T) {
	t.Run("under a base dir", func(t *testing.T) {
		base := t.TempDir()
		ws, err := Create(base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer ws.Cleanup()

		if !strings.HasPrefix(ws.Dir, base) {
			t.Errorf("dir %q not under %q", ws.Dir, base)
		}
		if info, err := os.Stat(ws.Dir); err != nil || !info.IsDir() {
			t.Error("workspace directory was not created")
		}
	})

	t.Run("distinct workspaces never collide", func(t *testing.T) {
		base := t.TempDir()
		a, err := Create(base)
		if err != nil {
			t.Fatal(err)
		}
		defer a.Cleanup()
		b, err := Create(base)
		if err != nil {
			t.Fatal(err)
		}
		defer b.Cleanup()

		if a.Dir == b.Dir || a.ID == b.ID {
			t.Error("workspaces share identity")
		}
	})
}

func TestArtifactPaths(t *testing.T) {
	ws := &Workspace{Dir: "/work/abc"}
	if got := ws.ChordsJSON(); got != filepath.Join("/work/abc", "chords.json") {
		t.Errorf("chords path = %q", got)
	}
	if got := ws.PitchJSON(); got != filepath.Join("/work/abc", "pitch.json") {
		t.Errorf("pitch path = %q", got)
	}
	if got := ws.ChromaJSON(); got != filepath.Join("/work/abc", "chroma.json") {
		t.Errorf("chroma path = %q", got)
	}
}

func TestCleanup(t *testing.T) {
	ws, err := Create(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.Dir, "chords.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Error("workspace directory still exists")
	}
}
