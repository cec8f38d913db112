package server

import (
	"context"
	"image"

	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// pipelineInterface defines the methods the server needs from a pipeline.
type pipelineInterface interface {
	ProcessImage(ctx context.Context, img image.Image) (*pipeline.ImageResult, error)
	ProcessPDFWithProgress(ctx context.Context, filename, pageRange string,
		progress func(pipeline.PageProgress)) (*pipeline.PDFResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    pipelineInterface
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	ShutdownTimeout int
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ScoreRequest is the /score request payload.
type ScoreRequest struct {
	Extracted string `json:"extracted"`
	Reference string `json:"reference"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
