package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/internal/service"
	"github.com/msto63/exprkit/internal/store"
	"github.com/msto63/exprkit/pkg/core/health"
	"github.com/msto63/exprkit/pkg/core/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.Wrap(exlog.Discard())

	st, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "http.db")})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc, err := service.NewService(service.Config{Store: st, Logger: logger})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	registry := health.NewRegistry("exprkit", "test")
	svc.RegisterHealth(registry)

	return NewRouter("test", svc, registry, logger)
}

func postJSON(t *testing.T, h http.Handler, path, text string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(TextRequest{Text: text})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestParseEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := postJSON(t, h, "/api/v1/parse", "a = b + 1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if resp.Rendered != "a = (b + 1)" {
		t.Errorf("Rendered = %q", resp.Rendered)
	}
	if resp.Tree["type"] != "Assignment" || resp.Tree["target"] != "a" {
		t.Errorf("Tree = %v", resp.Tree)
	}
	if resp.RequestID == "" || rec.Header().Get(requestIDHeader) != resp.RequestID {
		t.Errorf("request id mismatch: body %q header %q", resp.RequestID, rec.Header().Get(requestIDHeader))
	}
}

func TestParseErrors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		text     string
		status   int
		code     string
		position int
	}{
		{"1 + ", http.StatusBadRequest, "EXPR_UNEXPECTED_FACTOR", 4},
		{"2 ? 3", http.StatusBadRequest, "EXPR_INVALID_CHARACTER", 2},
		{"(1", http.StatusBadRequest, "EXPR_SYNTAX", 2},
		{"1 2", http.StatusBadRequest, "EXPR_SYNTAX", 2},
		{strings.Repeat("1", 5000), http.StatusRequestEntityTooLarge, "EXPR_INPUT_TOO_LONG", -1},
	}

	for _, tt := range tests {
		name := tt.text
		if len(name) > 10 {
			name = name[:10]
		}
		t.Run(name, func(t *testing.T) {
			rec := postJSON(t, h, "/api/v1/parse", tt.text)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}

			var resp ErrorResponse
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if tt.position >= 0 && (resp.Position == nil || *resp.Position != tt.position) {
				t.Errorf("position = %v, want %d", resp.Position, tt.position)
			}
		})
	}
}

func TestEvaluateVariablesAndHistory(t *testing.T) {
	h := newTestRouter(t)

	if rec := postJSON(t, h, "/api/v1/evaluate", "x = 2 * 21"); rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d (%s)", rec.Code, rec.Body)
	}

	rec := postJSON(t, h, "/api/v1/evaluate", "x / 0")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("division by zero status = %d", rec.Code)
	}
	rec = postJSON(t, h, "/api/v1/evaluate", "y")
	if rec.Code != http.StatusNotFound {
		t.Errorf("undefined variable status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/variables", nil))
	var vars VariablesResponse
	json.Unmarshal(rec.Body.Bytes(), &vars)
	if vars.Total != 1 || vars.Variables["x"] != 42 {
		t.Errorf("variables = %+v", vars)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil))
	var history HistoryResponse
	json.Unmarshal(rec.Body.Bytes(), &history)
	if history.Total != 2 || history.Entries[0].Input != "y" {
		t.Errorf("history = %+v", history)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/variables", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deleted":1`) {
		t.Errorf("delete = %d %s", rec.Code, rec.Body)
	}
}

func TestTokenizeEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := postJSON(t, h, "/api/v1/tokenize", "a=1")
	var resp TokenizeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	if len(resp.Tokens) != 4 {
		t.Fatalf("tokens = %+v", resp.Tokens)
	}
	if resp.Tokens[1].Kind != "Assign" || resp.Tokens[1].Position != 1 {
		t.Errorf("assign token = %+v", resp.Tokens[1])
	}
	if resp.Tokens[3].Kind != "EndOfInput" || resp.Tokens[3].Position != 3 {
		t.Errorf("end token = %+v", resp.Tokens[3])
	}
}

func TestRequestValidation(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/parse", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET parse status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}

	var report health.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if report.Status != health.StatusHealthy || len(report.Checks) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestWebSocket(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	exchange := func(msg map[string]interface{}) map[string]interface{} {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
		var resp map[string]interface{}
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		return resp
	}

	if resp := exchange(map[string]interface{}{"type": "ping", "id": "1"}); resp["type"] != "pong" || resp["id"] != "1" {
		t.Errorf("ping response = %v", resp)
	}

	resp := exchange(map[string]interface{}{
		"type":    "evaluate",
		"id":      "2",
		"payload": map[string]string{"text": "n = (1 + 2) * 3"},
	})
	payload, _ := resp["payload"].(map[string]interface{})
	if resp["type"] != "evaluate" || payload["value"] != float64(9) || payload["request_id"] != "2" {
		t.Errorf("evaluate response = %v", resp)
	}

	resp = exchange(map[string]interface{}{
		"type":    "parse",
		"payload": map[string]string{"text": "n +"},
	})
	payload, _ = resp["payload"].(map[string]interface{})
	if resp["type"] != "error" || payload["code"] != "EXPR_UNEXPECTED_FACTOR" {
		t.Errorf("parse error response = %v", resp)
	}

	resp = exchange(map[string]interface{}{"type": "explode"})
	if resp["type"] != "error" {
		t.Errorf("unknown type response = %v", resp)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func dialWebSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketRejectsOversizedMessages(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()
	conn := dialWebSocket(t, srv)

	text := strings.Repeat("1 + ", maxBodyBytes/4) + "1"
	if err := conn.WriteJSON(map[string]interface{}{
		"type":    "evaluate",
		"payload": map[string]string{"text": text},
	}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	// the server drops the connection instead of answering; the close
	// frame may be lost to a reset when the payload is still unread
	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("oversized message was answered: %s", data)
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseMessageTooBig {
		t.Errorf("close code = %d, want %d", closeErr.Code, websocket.CloseMessageTooBig)
	}
}

func TestWebSocketSendsPings(t *testing.T) {
	saved := pingPeriod
	pingPeriod = 20 * time.Millisecond
	defer func() { pingPeriod = saved }()

	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()
	conn := dialWebSocket(t, srv)

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(data string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	// control frames are only processed while reading
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received from the server")
	}
}
