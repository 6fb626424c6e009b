package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrEmptyUpload       = errors.New("no file selected")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrCorruptedFile     = errors.New("file corrupted or unreadable")
	ErrNotFound          = errors.New("analysis not found")
	ErrStemsNotFound     = errors.New("stem directory not found")
	ErrSynthesis         = errors.New("unable to synthesize mix")
)

// ProcessError represents a failure in an external engine process
type ProcessError struct {
	Tool     string // "demucs", "chordino", "crepe", "librosa"
	Stage    string // "separation", "chord_extraction", "pitch_tracking", "chroma"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether the pipeline has a fallback for this
// failure. Only stem separation degrades; the annotation engines are
// mandatory stages.
func (e *ProcessError) IsRecoverable() bool {
	return e.Stage == "separation"
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}
