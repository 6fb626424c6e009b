package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestProcessError(t *testing.T) {
	t.Run("message includes stderr when present", func(t *testing.T) {
		err := NewProcessError("demucs", "separation", 1, "CUDA out of memory", errors.New("exit status 1"))
		msg := err.Error()
		if !strings.Contains(msg, "demucs") || !strings.Contains(msg, "CUDA out of memory") {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("message without stderr", func(t *testing.T) {
		err := NewProcessError("chordino", "chord_extraction", 2, "", errors.New("exit status 2"))
		if strings.Contains(err.Error(), ": $") {
			t.Errorf("message = %q", err.Error())
		}
		if !strings.Contains(err.Error(), "exit 2") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("unwraps to its cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewProcessError("crepe", "pitch_tracking", 1, "", cause)
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to reach the cause")
		}
	})

	t.Run("only separation is recoverable", func(t *testing.T) {
		tests := []struct {
			stage string
			want  bool
		}{
			{"separation", true},
			{"chord_extraction", false},
			{"pitch_tracking", false},
			{"chroma", false},
		}
		for _, tt := range tests {
			err := NewProcessError("tool", tt.stage, 1, "", nil)
			if err.IsRecoverable() != tt.want {
				t.Errorf("stage %s: recoverable = %v, want %v", tt.stage, err.IsRecoverable(), tt.want)
			}
		}
	})
}
