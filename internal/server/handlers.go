package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/qalam-ocr/qalam/internal/accuracy"
	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// scoreHandler scores extracted text against a reference. The engine is
// total, so any well-formed request yields a 200 with a report.
func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	report := accuracy.Score(req.Extracted, req.Reference)
	scoreRequestsTotal.Inc()
	scoreOverallAccuracy.Observe(report.OverallAccuracy)

	s.writeJSON(w, http.StatusOK, report)
}

// ocrImageHandler processes image OCR requests.
func (s *Server) ocrImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	result, err := s.pipeline.ProcessImage(ctx, img)
	if err != nil {
		ocrRequestsTotal.WithLabelValues("image", "error").Inc()
		slog.Error("image OCR failed", "error", err)
		s.writeErrorResponse(w, "OCR processing failed", http.StatusInternalServerError)
		return
	}
	ocrRequestsTotal.WithLabelValues("image", "success").Inc()
	ocrProcessingDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	ocrTextLength.WithLabelValues("image").Observe(float64(len(result.Text)))

	if reference := r.FormValue("reference"); reference != "" {
		report := accuracy.Score(result.Text, reference)
		result.Accuracy = &report
	}

	s.writeJSON(w, http.StatusOK, result)
}

// ocrPDFHandler processes PDF OCR requests.
func (s *Server) ocrPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	// pdfcpu works on files, so spool the upload to disk first.
	tmpFile, err := os.CreateTemp("", "qalam-upload-*.pdf")
	if err != nil {
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, file); err != nil {
		_ = tmpFile.Close()
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	if err := tmpFile.Close(); err != nil {
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	result, err := s.pipeline.ProcessPDFWithProgress(ctx, tmpPath, r.FormValue("pages"), nil)
	if err != nil {
		ocrRequestsTotal.WithLabelValues("pdf", "error").Inc()
		slog.Error("PDF OCR failed", "error", err)
		s.writeErrorResponse(w, "PDF processing failed", http.StatusInternalServerError)
		return
	}
	ocrRequestsTotal.WithLabelValues("pdf", "success").Inc()
	ocrProcessingDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())

	// The stored filename is a temp path; report the uploaded name.
	result.Filename = header.Filename
	pipeline.SortPages(result)

	if reference := r.FormValue("reference"); reference != "" {
		attachPageAccuracy(result, reference)
	}

	s.writeJSON(w, http.StatusOK, result)
}

// attachPageAccuracy scores each page of a PDF result against the reference.
func attachPageAccuracy(result *pipeline.PDFResult, reference string) {
	for i := range result.Pages {
		report := accuracy.Score(result.Pages[i].Text, reference)
		result.Pages[i].Accuracy = &report
		ocrTextLength.WithLabelValues("pdf").Observe(float64(len(result.Pages[i].Text)))
	}
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
