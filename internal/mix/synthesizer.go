// Package mix reconstructs derived mixes from already-separated stems.
package mix

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gofrs/flock"

	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/stems"
)

// instrumentalSources are the stems summed into the instrumental mix.
var instrumentalSources = []string{stems.StemDrums, stems.StemBass, stems.StemOther}

const outputBitDepth = 16

// Synthesizer produces playable mixes from a stem directory. Instrumental
// synthesis is cached on disk and serialized per directory so concurrent
// requests never read a partially written file.
type Synthesizer struct {
	logger *slog.Logger
}

// NewSynthesizer creates a mix synthesizer
func NewSynthesizer(logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{logger: logger}
}

// Mix returns the path of a playable file for the requested mix type:
// "vocals" passes the vocals stem through, "instrumental" sums the
// non-vocal stems (synthesizing and caching on first request).
func (s *Synthesizer) Mix(stemDir, mixType string) (string, error) {
	if info, err := os.Stat(stemDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", apperrors.ErrStemsNotFound, stemDir)
	}

	switch mixType {
	case stems.StemVocals:
		path := filepath.Join(stemDir, stems.StemVocals+".wav")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: vocals stem missing in %s", apperrors.ErrSynthesis, stemDir)
		}
		return path, nil
	case stems.DerivedInstrumental:
		return s.instrumental(stemDir)
	default:
		return "", fmt.Errorf("%w: unknown mix type %q", apperrors.ErrSynthesis, mixType)
	}
}

// instrumental returns the cached derived mix, synthesizing it under a
// per-directory lock on first request.
func (s *Synthesizer) instrumental(stemDir string) (string, error) {
	target := filepath.Join(stemDir, stems.DerivedInstrumental+".wav")
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	lock := flock.New(filepath.Join(stemDir, "."+stems.DerivedInstrumental+".lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock stem dir: %w", err)
	}
	defer lock.Unlock()

	// Another request may have synthesized it while we waited.
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	var (
		sum    []float64
		format *audio.Format
		loaded int
	)
	for _, stem := range instrumentalSources {
		samples, fmtInfo, err := loadSamples(filepath.Join(stemDir, stem+".wav"))
		if err != nil {
			s.logger.Warn("skipping stem", "stem", stem, "error", err)
			continue
		}
		loaded++
		if sum == nil {
			sum = samples
			format = fmtInfo
			continue
		}
		// Truncate to the shortest contributing stem.
		if len(samples) < len(sum) {
			sum = sum[:len(samples)]
		}
		for i := range sum {
			sum[i] += samples[i]
		}
	}
	if loaded == 0 || len(sum) == 0 {
		return "", fmt.Errorf("%w: no contributing stems in %s", apperrors.ErrSynthesis, stemDir)
	}

	// Hard-clip and convert back to 16-bit PCM.
	data := make([]int, len(sum))
	for i, v := range sum {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		data[i] = int(v * 32767)
	}

	if err := writeWAV(target, data, format); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSynthesis, err)
	}

	s.logger.Info("synthesized instrumental mix", "path", target, "samples", len(data))
	return target, nil
}

// loadSamples decodes a WAV file into normalized float samples in [-1, 1].
// Integer PCM is rescaled by its bit depth's maximum magnitude.
func loadSamples(path string) ([]float64, *audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, nil, errors.New("empty audio buffer")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = outputBitDepth
	}
	scale := float64(int(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return samples, buf.Format, nil
}

// writeWAV persists 16-bit PCM samples next to the source stems via a temp
// file and rename, so readers never observe a partial write.
func writeWAV(target string, data []int, format *audio.Format) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".mix-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := wav.NewEncoder(tmp, format.SampleRate, outputBitDepth, format.NumChannels, 1)
	err = enc.Write(&audio.IntBuffer{
		Format:         format,
		Data:           data,
		SourceBitDepth: outputBitDepth,
	})
	if err != nil {
		tmp.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
