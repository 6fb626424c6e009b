package stems

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolution is the outcome of locating the separation engine's output
// directory for a track.
type Resolution int

const (
	ResolutionFound Resolution = iota
	ResolutionAmbiguous
	ResolutionNotFound
)

// ResolveResult is the typed outcome of output-directory resolution.
// Candidates is populated for the ambiguous case so callers can log what
// was rejected.
type ResolveResult struct {
	Outcome    Resolution
	Dir        string
	Candidates []string
}

// ResolveOutputDir locates the per-track directory the separation engine
// created under modelDir. The engine rewrites awkward track names (spaces
// become underscores), so when the exact name is absent the siblings are
// scanned for a normalized match. Exactly one plausible candidate resolves;
// several is ambiguous rather than a guess.
func ResolveOutputDir(modelDir, trackName string) ResolveResult {
	exact := filepath.Join(modelDir, trackName)
	if info, err := os.Stat(exact); err == nil && info.IsDir() {
		return ResolveResult{Outcome: ResolutionFound, Dir: exact}
	}

	entries, err := os.ReadDir(modelDir)
	if err != nil {
		return ResolveResult{Outcome: ResolutionNotFound}
	}

	want := normalizeTrackName(trackName)
	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if normalizeTrackName(entry.Name()) == want {
			candidates = append(candidates, filepath.Join(modelDir, entry.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		return ResolveResult{Outcome: ResolutionNotFound}
	case 1:
		return ResolveResult{Outcome: ResolutionFound, Dir: candidates[0]}
	default:
		return ResolveResult{Outcome: ResolutionAmbiguous, Candidates: candidates}
	}
}

// normalizeTrackName folds the renames the separation engine applies to
// track directory names.
func normalizeTrackName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
