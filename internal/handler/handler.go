package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/foundation/expr/parser"
	"github.com/msto63/exprkit/internal/service"
	"github.com/msto63/exprkit/internal/store"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/health"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 64 * 1024

// defaultHistoryLimit applies when no limit query parameter is given
const defaultHistoryLimit = 50

// TextRequest is the body of parse, tokenize and evaluate requests
type TextRequest struct {
	Text string `json:"text"`
}

// ParseResponse represents a parse result
type ParseResponse struct {
	RequestID string                 `json:"request_id"`
	Rendered  string                 `json:"rendered"`
	Dump      string                 `json:"dump"`
	Tree      map[string]interface{} `json:"tree"`
	Variables []string               `json:"variables"`
	Cached    bool                   `json:"cached"`
}

// TokenResponse represents one token
type TokenResponse struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// TokenizeResponse represents a tokenize result
type TokenizeResponse struct {
	RequestID string          `json:"request_id"`
	Tokens    []TokenResponse `json:"tokens"`
}

// EvaluateResponse represents an evaluation result
type EvaluateResponse struct {
	RequestID string `json:"request_id"`
	Rendered  string `json:"rendered"`
	Value     int64  `json:"value"`
	Assigned  string `json:"assigned,omitempty"`
}

// VariablesResponse lists variables
type VariablesResponse struct {
	Variables map[string]int64 `json:"variables"`
	Total     int              `json:"total"`
}

// HistoryResponse lists history entries
type HistoryResponse struct {
	Entries []*store.HistoryEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// ErrorResponse represents an error
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Position  *int   `json:"position,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler serves the HTTP API
type Handler struct {
	service   *service.Service
	health    *health.Registry
	logger    *logging.Logger
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler
func NewHandler(version string, svc *service.Service, registry *health.Registry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.New("exprkit-http")
	}
	return &Handler{
		service:   svc,
		health:    registry,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, requestID)
	r = r.WithContext(coreGrpc.WithRequestID(r.Context(), requestID))

	path := strings.Trim(r.URL.Path, "/")

	switch path {
	case "":
		h.handleRoot(w, r)
	case "health", "api/v1/health":
		h.handleHealth(w, r)
	case "api/v1/parse":
		h.handleParse(w, r)
	case "api/v1/tokenize":
		h.handleTokenize(w, r)
	case "api/v1/evaluate":
		h.handleEvaluate(w, r)
	case "api/v1/variables":
		h.handleVariables(w, r)
	case "api/v1/history":
		h.handleHistory(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", "")
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "exprkit",
		"version": h.version,
		"mode":    h.service.Mode().String(),
		"endpoints": []string{
			"POST   /api/v1/parse",
			"POST   /api/v1/tokenize",
			"POST   /api/v1/evaluate",
			"GET    /api/v1/variables",
			"DELETE /api/v1/variables",
			"GET    /api/v1/history",
			"GET    /health",
			"GET    /ws",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET", "")
		return
	}
	if h.health == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  health.StatusHealthy,
			"version": h.version,
			"uptime":  time.Since(h.startTime).String(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	result, err := h.service.Parse(r.Context(), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newParseResponse(result))
}

func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	result, err := h.service.Tokenize(r.Context(), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newTokenizeResponse(result))
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(r.Context(), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newEvaluateResponse(result))
}

func (h *Handler) handleVariables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vars, err := h.service.Variables(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, VariablesResponse{Variables: vars, Total: len(vars)})

	case http.MethodDelete:
		n, err := h.service.ClearVariables(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})

	default:
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET or DELETE", "")
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET", "")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, string(exerr.CodeInvalidInput), "limit must be a non-negative integer", "")
			return
		}
		limit = n
	}

	entries, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*store.HistoryEntry{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: len(entries)})
}

// readText decodes a TextRequest and writes the error response itself
func (h *Handler) readText(w http.ResponseWriter, r *http.Request) (*TextRequest, bool) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST", "")
		return nil, false
	}

	var req TextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, string(exerr.CodeInputTooLong), "Request body too large", "")
			return nil, false
		}
		h.writeError(w, http.StatusBadRequest, string(exerr.CodeInvalidInput), "Invalid request body", "")
		return nil, false
	}
	return &req, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, requestID string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	resp := newErrorResponse(err)
	if resp.RequestID == "" {
		resp.RequestID = coreGrpc.GetRequestID(r.Context())
	}

	status := exerr.GetCode(err).HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "request_id", resp.RequestID, "error", err)
	}
	h.writeJSON(w, status, resp)
}

func newErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Code: string(exerr.GetCode(err))}
	if coded, ok := exerr.As(err); ok {
		resp.RequestID = coded.RequestID()
	}
	if pos := parser.Position(err); pos >= 0 {
		resp.Position = &pos
	}
	return resp
}

func newParseResponse(result *service.ParseResult) ParseResponse {
	variables := result.Variables
	if variables == nil {
		variables = []string{}
	}
	return ParseResponse{
		RequestID: result.RequestID,
		Rendered:  result.Rendered,
		Dump:      ast.Dump(result.Tree, 0),
		Tree:      ast.ToMap(result.Tree),
		Variables: variables,
		Cached:    result.Cached,
	}
}

func newTokenizeResponse(result *service.TokenizeResult) TokenizeResponse {
	tokens := make([]TokenResponse, len(result.Tokens))
	for i, tok := range result.Tokens {
		tokens[i] = TokenResponse{
			Kind:     tok.Kind.String(),
			Text:     tok.Text(),
			Position: tok.Position,
		}
	}
	return TokenizeResponse{RequestID: result.RequestID, Tokens: tokens}
}

func newEvaluateResponse(result *service.EvaluateResult) EvaluateResponse {
	return EvaluateResponse{
		RequestID: result.RequestID,
		Rendered:  result.Rendered,
		Value:     result.Value,
		Assigned:  result.Assigned,
	}
}
