package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/msto63/exprkit/internal/service"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// readTimeout closes idle connections that send neither messages nor pongs
const readTimeout = 120 * time.Second

// writeTimeout bounds control frame writes
const writeTimeout = 10 * time.Second

// pingPeriod must stay below readTimeout so a live peer's pongs keep the
// read deadline moving
var pingPeriod = readTimeout * 9 / 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves parse, tokenize and evaluate requests over a
// WebSocket connection. Messages on one connection are handled in order.
type WebSocketHandler struct {
	service *service.Service
	logger  *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service, logger *logging.Logger) *WebSocketHandler {
	if logger == nil {
		logger = logging.New("exprkit-websocket")
	}
	return &WebSocketHandler{service: svc, logger: logger}
}

// WSMessage is a client message
type WSMessage struct {
	Type    string          `json:"type"` // "parse", "tokenize", "evaluate", "ping"
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// WSResponse is a server message. ID echoes the request's ID.
type WSResponse struct {
	Type    string      `json:"type"` // "parse", "tokenize", "evaluate", "pong", "error"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// ServeHTTP upgrades the connection and serves it until it closes
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

func (h *WebSocketHandler) handleConnection(parent context.Context, conn *websocket.Conn) {
	defer conn.Close()

	session := uuid.New().String()
	logger := h.logger.With("session", session)
	logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	go keepAlive(ctx, conn, logger)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", "error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		h.sendResponse(conn, logger, h.dispatch(ctx, msg))
	}
}

// dispatch runs one message and builds its response
func (h *WebSocketHandler) dispatch(ctx context.Context, msg WSMessage) WSResponse {
	if msg.Type == "ping" {
		return WSResponse{Type: "pong", ID: msg.ID}
	}

	var req TextRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return wsError(msg.ID, ErrorResponse{Code: "INVALID_INPUT", Error: "Invalid payload"})
		}
	}

	requestID := msg.ID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = coreGrpc.WithRequestID(ctx, requestID)

	switch msg.Type {
	case "parse":
		result, err := h.service.Parse(ctx, req.Text)
		if err != nil {
			return wsError(msg.ID, newErrorResponse(err))
		}
		return WSResponse{Type: msg.Type, ID: msg.ID, Payload: newParseResponse(result)}

	case "tokenize":
		result, err := h.service.Tokenize(ctx, req.Text)
		if err != nil {
			return wsError(msg.ID, newErrorResponse(err))
		}
		return WSResponse{Type: msg.Type, ID: msg.ID, Payload: newTokenizeResponse(result)}

	case "evaluate":
		result, err := h.service.Evaluate(ctx, req.Text)
		if err != nil {
			return wsError(msg.ID, newErrorResponse(err))
		}
		return WSResponse{Type: msg.Type, ID: msg.ID, Payload: newEvaluateResponse(result)}

	default:
		return wsError(msg.ID, ErrorResponse{Code: "UNKNOWN_TYPE", Error: "Unknown message type: " + msg.Type})
	}
}

// keepAlive pings the peer until ctx is done. WriteControl may run
// concurrently with the handler's WriteJSON calls.
func keepAlive(ctx context.Context, conn *websocket.Conn, logger *logging.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				logger.Debug("WebSocket ping failed", "error", err)
				return
			}
		}
	}
}

func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, logger *logging.Logger, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		logger.Error("WebSocket send error", "error", err)
	}
}

func wsError(id string, payload ErrorResponse) WSResponse {
	return WSResponse{Type: "error", ID: id, Payload: payload}
}
