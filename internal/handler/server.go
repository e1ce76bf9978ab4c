package handler

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/msto63/exprkit/internal/service"
	"github.com/msto63/exprkit/pkg/core/health"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// requestIDHeader carries the request id in both directions
const requestIDHeader = "X-Request-ID"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
	Logger       *logging.Logger
}

// Server is the HTTP and WebSocket front end
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

// NewServer creates the HTTP server for svc
func NewServer(cfg ServerConfig, svc *service.Service, registry *health.Registry) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.New("exprkit-http")
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(cfg.Version, svc, registry, cfg.Logger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: cfg.Logger,
	}
}

// NewRouter wires the API handler and the WebSocket endpoint
func NewRouter(version string, svc *service.Service, registry *health.Registry, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(svc, logger))
	mux.Handle("/", NewHandler(version, svc, registry, logger))
	return loggingMiddleware(logger, mux)
}

// Serve serves on listener until Shutdown
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting exprkit HTTP server", "address", listener.Addr().String())
	err := s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping exprkit HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"request_id", wrapper.Header().Get(requestIDHeader),
			"duration", time.Since(start).String(),
		)
	})
}

// responseWrapper captures the status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
