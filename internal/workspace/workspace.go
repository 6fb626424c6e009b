package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Workspace holds the intermediate engine artifacts for a single request.
// Each request gets a globally unique directory, which also isolates
// concurrent requests' temporary files from one another.
type Workspace struct {
	ID        string
	Dir       string
	CreatedAt time.Time
}

// Create makes a new isolated workspace under baseDir, or the system temp
// directory when baseDir is empty.
func Create(baseDir string) (*Workspace, error) {
	id := uuid.NewString()

	var dir string
	var err error
	if baseDir == "" {
		dir, err = os.MkdirTemp("", "chordlens-"+id[:8]+"-*")
	} else {
		dir = filepath.Join(baseDir, id)
		err = os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		ID:        id,
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// Artifact paths for the engine outputs.
func (w *Workspace) ChordsJSON() string { return filepath.Join(w.Dir, "chords.json") }
func (w *Workspace) PitchJSON() string  { return filepath.Join(w.Dir, "pitch.json") }
func (w *Workspace) ChromaJSON() string { return filepath.Join(w.Dir, "chroma.json") }

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
