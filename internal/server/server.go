package server

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "github.com/msto63/exprkit/api/exprv1"
	exerr "github.com/msto63/exprkit/foundation/core/error"
	"github.com/msto63/exprkit/internal/service"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/health"
	"github.com/msto63/exprkit/pkg/core/logging"
	"github.com/msto63/exprkit/pkg/core/version"
)

// Server is the exprkit gRPC server
type Server struct {
	service   *service.Service
	grpc      *coreGrpc.Server
	health    *health.Registry
	status    *grpchealth.Server
	logger    *logging.Logger
	config    Config
	startTime time.Time
}

// Config holds server configuration
type Config struct {
	Host             string
	Port             int
	EnableReflection bool

	// HealthInterval is how often the gRPC health status is refreshed from
	// the health registry; zero disables refreshing
	HealthInterval time.Duration

	Logger *logging.Logger
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:             "127.0.0.1",
		Port:             9310,
		EnableReflection: true,
		HealthInterval:   15 * time.Second,
	}
}

// New creates a new gRPC server for svc
func New(cfg Config, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, exerr.New("service is required").
			WithCode(exerr.CodeInvalidInput).
			WithOperation("server.New")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New("exprkit-grpc")
	}

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	grpcCfg.EnableReflection = cfg.EnableReflection
	grpcCfg.Logger = cfg.Logger

	grpcServer := coreGrpc.NewServer(grpcCfg)

	healthRegistry := health.NewRegistry("exprkit", version.Version)
	svc.RegisterHealth(healthRegistry)

	status := grpchealth.NewServer()

	server := &Server{
		service:   svc,
		grpc:      grpcServer,
		health:    healthRegistry,
		status:    status,
		logger:    cfg.Logger,
		config:    cfg,
		startTime: time.Now(),
	}

	pb.RegisterExprServiceServer(grpcServer.GRPCServer(), server)
	healthpb.RegisterHealthServer(grpcServer.GRPCServer(), status)
	server.refreshHealth(context.Background())

	return server, nil
}

// Serve serves on listener until the server stops
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.logger.Info("Starting exprkit gRPC server", "address", listener.Addr().String())
	go s.watchHealth(ctx)
	return s.grpc.Serve(listener)
}

// Start listens on the configured address and serves until stopped
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting exprkit gRPC server", "host", s.config.Host, "port", s.config.Port)
	go s.watchHealth(ctx)
	return s.grpc.Start()
}

// Stop stops the server, forcing it once ctx is done
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping exprkit gRPC server")
	s.status.Shutdown()
	s.grpc.StopWithTimeout(ctx)
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Address returns the listening address
func (s *Server) Address() string {
	return s.grpc.Address()
}

// Uptime returns how long the server has existed
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *Server) watchHealth(ctx context.Context) {
	if s.config.HealthInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshHealth(ctx)
		}
	}
}

// refreshHealth maps the registry report onto the gRPC health service for
// both the overall server and ExprService
func (s *Server) refreshHealth(ctx context.Context) {
	report := s.health.Check(ctx)

	status := healthpb.HealthCheckResponse_SERVING
	if report.Status == health.StatusUnhealthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("Health check failed", "report", report.String())
	}

	s.status.SetServingStatus("", status)
	s.status.SetServingStatus(pb.ServiceName, status)
}
