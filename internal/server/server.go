package server

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// New creates a server around the given pipeline.
func New(cfg Config, p *pipeline.Pipeline) (*Server, error) {
	if p == nil {
		return nil, errors.New("nil pipeline")
	}
	return newServer(cfg, p), nil
}

func newServer(cfg Config, p pipelineInterface) *Server {
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 50
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 120
	}
	return &Server{
		pipeline:    p,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
		timeoutSec:  cfg.TimeoutSec,
	}
}

// Handler returns the server's HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/score", s.corsMiddleware(s.scoreHandler))
	mux.HandleFunc("/ocr/image", s.corsMiddleware(s.ocrImageHandler))
	mux.HandleFunc("/ocr/pdf", s.corsMiddleware(s.ocrPDFHandler))
	mux.HandleFunc("/ws", s.ocrWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
