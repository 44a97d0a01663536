package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iamsrishanth/PodcastAI/internal/media"
	"github.com/iamsrishanth/PodcastAI/internal/pipeline"
	"github.com/iamsrishanth/PodcastAI/internal/tts"
)

// maxUploadBytes bounds the multipart form held in memory before
// spilling to disk.
const maxUploadBytes = 32 << 20

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	portraitA, err := s.saveUpload(r, "portrait_a")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	portraitB, err := s.saveUpload(r, "portrait_b")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := pipeline.Request{
		PortraitA:    portraitA,
		PortraitB:    portraitB,
		Scenario:     r.FormValue("scenario"),
		SpeakerAName: r.FormValue("speaker_a_name"),
		SpeakerBName: r.FormValue("speaker_b_name"),
		VoiceA:       r.FormValue("voice_a"),
		VoiceB:       r.FormValue("voice_b"),
		Layout:       media.Layout(r.FormValue("layout")),
	}
	if r.FormValue("use_lip_sync") == "false" {
		req.DisableLipSync = true
	}
	if files := r.MultipartForm.File["background"]; len(files) > 0 {
		background, err := s.saveUpload(r, "background")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.BackgroundPath = background
	}

	job, err := s.tracker.Submit(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// handleStatus serves /api/status/{id} and /api/status/{id}/stream.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/status/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}
	if sub == "stream" {
		s.streamStatus(w, r, id)
		return
	}
	if sub != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	job, ok := s.tracker.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown job: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := s.tracker.History()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "missing history id")
		return
	}
	if err := s.tracker.Forget(id); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Stages())
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, tts.VoicePresets)
}

// saveUpload stores a multipart file under the inputs directory with a
// collision-free name and returns its path.
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	src, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%s file is required", field)
	}
	defer src.Close()

	ext := filepath.Ext(header.Filename)
	path := filepath.Join(s.cfg.Paths.InputsDir(), fmt.Sprintf("%s_%s%s", field, uuid.NewString(), ext))
	if err := writeUpload(src, path); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", field, err)
	}
	return path, nil
}

func writeUpload(src multipart.File, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
