package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dygy/chordlens/internal/audio"
	apperrors "github.com/dygy/chordlens/internal/errors"
	"github.com/dygy/chordlens/internal/pipeline"
	"github.com/dygy/chordlens/internal/workspace"
)

const maxUploadSize = audio.MaxFileSize

// analyzeResponse is the analysis result plus its persistence id.
type analyzeResponse struct {
	ID string `json:"id"`
	*pipeline.Result
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleAnalyze accepts an uploaded track, runs the full pipeline
// synchronously and persists the result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.ErrNoFile.Error())
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, apperrors.ErrEmptyUpload.Error())
		return
	}

	ws, err := workspace.Create(s.cfg.WorkDir())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to create workspace")
		return
	}
	defer ws.Cleanup()

	// The upload is persisted under the request's unique id so concurrent
	// requests never collide on filenames.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	uploadName := ws.ID + ext
	uploadPath := filepath.Join(s.cfg.UploadsDir(), uploadName)
	if err := saveUpload(file, uploadPath); err != nil {
		s.logger.Error("save upload failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	if _, err := audio.ValidateInput(uploadPath); err != nil {
		os.Remove(uploadPath)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.orch.Annotate(r.Context(), uploadPath, ws)
	if err != nil {
		s.logger.Error("annotation failed", "file", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result.AudioURL = "/audio/uploads/" + uploadName
	for name, path := range result.Stems {
		result.Stems[name] = s.audioURL(path)
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	blob, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to encode result")
		return
	}
	id, err := s.store.Save(title, r.FormValue("artist"), uploadPath, blob)
	if err != nil {
		s.logger.Error("persist failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	s.writeJSON(w, http.StatusOK, analyzeResponse{ID: id, Result: result})
}

// handleListAnalyses returns summaries of saved analyses.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

// handleGetAnalysis returns a stored result blob verbatim.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, apperrors.ErrNotFound.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(a.Result)
}

// handleDeleteAnalysis removes a saved analysis and best-effort deletes
// the associated audio file.
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	audioPath, err := s.store.Delete(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, apperrors.ErrNotFound.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	if audioPath != "" {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove audio file", "path", audioPath, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMix serves a derived mix for an already-separated track.
func (s *Server) handleMix(w http.ResponseWriter, r *http.Request) {
	track := chi.URLParam(r, "track")
	mixType := chi.URLParam(r, "type")

	path, err := s.mixer.Mix(s.separator.TrackDir(track), mixType)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStemsNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		default:
			s.logger.Error("mix synthesis failed", "track", track, "type", mixType, "error", err)
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

// audioURL maps an absolute path under the data dir to its served URL.
func (s *Server) audioURL(path string) string {
	rel, err := filepath.Rel(s.cfg.DataDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return "/audio/" + filepath.ToSlash(rel)
}

func saveUpload(src io.Reader, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, src)
	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
