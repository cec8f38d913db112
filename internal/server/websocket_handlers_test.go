package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalam-ocr/qalam/internal/accuracy"
)

func dialWebSocket(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketScore(t *testing.T) {
	conn := dialWebSocket(t, testServer(t, &fakePipeline{}))

	req := WebSocketRequest{Type: "score", Extracted: "hello world", Reference: "hello world"}
	require.NoError(t, conn.WriteJSON(req))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp WebSocketResponse
	require.NoError(t, conn.ReadJSON(&resp))

	assert.Equal(t, "result", resp.Type)
	assert.Equal(t, "completed", resp.Status)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var report accuracy.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.InDelta(t, 100.0, report.OverallAccuracy, 1e-9)
}

func TestWebSocketPDFProgress(t *testing.T) {
	// A page range makes page numbers document-absolute (5-8) while only
	// four pages are selected, and pages complete out of order. Progress
	// must still climb 0.25, 0.5, 0.75, 1.0.
	conn := dialWebSocket(t, testServer(t, &fakePipeline{
		text:  "صفحہ",
		pages: []int{7, 5, 8, 6},
	}))

	req := WebSocketRequest{Type: "pdf", PDF: []byte("%PDF-1.4 fake"), Pages: "5-8"}
	require.NoError(t, conn.WriteJSON(req))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 1; i <= 4; i++ {
		var resp WebSocketResponse
		require.NoError(t, conn.ReadJSON(&resp))
		require.Equal(t, "page", resp.Type)
		assert.Equal(t, "processing", resp.Status)
		assert.InDelta(t, float64(i)/4.0, resp.Progress, 1e-9)
		assert.LessOrEqual(t, resp.Progress, 1.0)
	}

	var final WebSocketResponse
	require.NoError(t, conn.ReadJSON(&final))
	assert.Equal(t, "result", final.Type)
	assert.Equal(t, "completed", final.Status)
}

func TestWebSocketUnknownType(t *testing.T) {
	conn := dialWebSocket(t, testServer(t, &fakePipeline{}))

	require.NoError(t, conn.WriteJSON(WebSocketRequest{Type: "bogus"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp WebSocketResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)
	assert.NotEmpty(t, resp.Error)
}
