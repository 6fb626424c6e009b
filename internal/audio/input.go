// Package audio validates uploaded audio files before they enter the
// pipeline.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/dygy/chordlens/internal/errors"
)

const MaxFileSize = 100 * 1024 * 1024 // 100MB

// Format represents an audio file format
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatUnknown Format = "unknown"
)

// ValidateInput checks that the file exists, is within the size limit and
// is a format the engines accept.
func ValidateInput(path string) (Format, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return FormatUnknown, fmt.Errorf("%w: %s", apperrors.ErrCorruptedFile, path)
	}
	if err != nil {
		return FormatUnknown, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() == 0 {
		return FormatUnknown, fmt.Errorf("%w: %s", apperrors.ErrEmptyUpload, path)
	}
	if info.Size() > MaxFileSize {
		return FormatUnknown, fmt.Errorf("%w: maximum size is 100MB", apperrors.ErrFileTooLarge)
	}

	format, err := detectFormat(path)
	if err != nil {
		return FormatUnknown, err
	}
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: please provide a WAV, MP3 or FLAC file", apperrors.ErrUnsupportedFormat)
	}
	return format, nil
}

// detectFormat checks magic bytes, falling back to the extension.
func detectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %v", apperrors.ErrCorruptedFile, err)
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := f.Read(header)
	if err != nil || n < 4 {
		return FormatUnknown, fmt.Errorf("%w: could not read file header", apperrors.ErrCorruptedFile)
	}

	switch {
	case string(header[:4]) == "RIFF" && n >= 12 && string(header[8:12]) == "WAVE":
		return FormatWAV, nil
	case string(header[:4]) == "fLaC":
		return FormatFLAC, nil
	case string(header[:3]) == "ID3":
		return FormatMP3, nil
	case header[0] == 0xFF && header[1]&0xE0 == 0xE0: // MP3 frame sync
		return FormatMP3, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	case ".flac":
		return FormatFLAC, nil
	}
	return FormatUnknown, nil
}
