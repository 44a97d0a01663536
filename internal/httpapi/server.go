package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/iamsrishanth/PodcastAI/internal/config"
	"github.com/iamsrishanth/PodcastAI/internal/jobs"
)

// Server exposes the generation API: submit a run, poll or stream its
// progress, browse the archive and download artifacts.
type Server struct {
	cfg     *config.Config
	tracker *jobs.Tracker

	mux    *http.ServeMux
	server *http.Server
}

func NewServer(cfg *config.Config, tracker *jobs.Tracker) *Server {
	s := &Server{
		cfg:     cfg,
		tracker: tracker,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/status/", s.handleStatus)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/history/", s.handleHistoryItem)
	s.mux.HandleFunc("/api/steps", s.handleSteps)
	s.mux.HandleFunc("/api/voices", s.handleVoices)
	s.mux.Handle("/outputs/", http.StripPrefix("/outputs/", http.FileServer(http.Dir(s.cfg.Paths.OutputsDir()))))
}
