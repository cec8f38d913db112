package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qalam-ocr/qalam/internal/accuracy"
	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS enforcement for WebSocket is left to the deployment;
		// the HTTP endpoints carry the configured origin.
		return true
	},
}

// WebSocketRequest is a client request over the WebSocket connection.
type WebSocketRequest struct {
	Type      string `json:"type"` // "score" or "pdf"
	Extracted string `json:"extracted,omitempty"`
	Reference string `json:"reference,omitempty"`
	// PDF carries the document bytes, base64-encoded by encoding/json.
	PDF   []byte `json:"pdf,omitempty"`
	Pages string `json:"pages,omitempty"`
}

// WebSocketResponse is a server message over the WebSocket connection.
type WebSocketResponse struct {
	Type     string  `json:"type"`   // "page", "result", "error"
	Status   string  `json:"status"` // "processing", "completed", "error"
	Progress float64 `json:"progress,omitempty"`
	Result   any     `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// ocrWebSocketHandler handles WebSocket connections for scoring and
// page-by-page PDF OCR progress.
func (s *Server) ocrWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep the connection alive while long PDF jobs run.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, data []byte) {
	var req WebSocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeWebSocketError(conn, "Invalid request JSON")
		return
	}

	switch req.Type {
	case "score":
		report := accuracy.Score(req.Extracted, req.Reference)
		scoreRequestsTotal.Inc()
		scoreOverallAccuracy.Observe(report.OverallAccuracy)
		s.writeWebSocketResponse(conn, WebSocketResponse{
			Type:   "result",
			Status: "completed",
			Result: report,
		})
	case "pdf":
		s.handleWebSocketPDF(ctx, conn, req)
	default:
		s.writeWebSocketError(conn, "Unknown request type: "+req.Type)
	}
}

func (s *Server) handleWebSocketPDF(ctx context.Context, conn *websocket.Conn, req WebSocketRequest) {
	if len(req.PDF) == 0 {
		s.writeWebSocketError(conn, "No PDF data provided")
		return
	}
	if int64(len(req.PDF)) > s.maxUploadMB*1024*1024 {
		s.writeWebSocketError(conn, "PDF too large")
		return
	}

	tmpFile, err := os.CreateTemp("", "qalam-ws-*.pdf")
	if err != nil {
		s.writeWebSocketError(conn, "Failed to store PDF")
		return
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(req.PDF); err != nil {
		_ = tmpFile.Close()
		s.writeWebSocketError(conn, "Failed to store PDF")
		return
	}
	if err := tmpFile.Close(); err != nil {
		s.writeWebSocketError(conn, "Failed to store PDF")
		return
	}

	workCtx, cancel := context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	// PageNumber is document-absolute and pages complete in no particular
	// order, so progress counts completed pages instead. The pipeline
	// serializes the callback, so a plain counter is safe.
	completed := 0
	result, err := s.pipeline.ProcessPDFWithProgress(workCtx, tmpPath, req.Pages,
		func(p pipeline.PageProgress) {
			completed++
			page := p.Result
			if req.Reference != "" {
				report := accuracy.Score(page.Text, req.Reference)
				page.Accuracy = &report
			}
			s.writeWebSocketResponse(conn, WebSocketResponse{
				Type:     "page",
				Status:   "processing",
				Progress: float64(completed) / float64(p.TotalPages),
				Result:   page,
			})
		})
	if err != nil {
		ocrRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeWebSocketError(conn, "PDF processing failed: "+err.Error())
		return
	}
	ocrRequestsTotal.WithLabelValues("pdf", "success").Inc()
	ocrProcessingDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())

	pipeline.SortPages(result)
	if req.Reference != "" {
		attachPageAccuracy(result, req.Reference)
	}

	s.writeWebSocketResponse(conn, WebSocketResponse{
		Type:   "result",
		Status: "completed",
		Result: result,
	})
}

func (s *Server) writeWebSocketResponse(conn *websocket.Conn, resp WebSocketResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to write WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) writeWebSocketError(conn *websocket.Conn, message string) {
	s.writeWebSocketResponse(conn, WebSocketResponse{
		Type:   "error",
		Status: "error",
		Error:  message,
	})
}
