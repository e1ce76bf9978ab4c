package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/internal/handler"
	"github.com/msto63/exprkit/internal/server"
	"github.com/msto63/exprkit/internal/service"
	"github.com/msto63/exprkit/internal/store"
	"github.com/msto63/exprkit/pkg/core/cache"
	"github.com/msto63/exprkit/pkg/core/config"
	"github.com/msto63/exprkit/pkg/core/logging"
	"github.com/msto63/exprkit/pkg/core/version"
)

var serveNoHTTP bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and HTTP servers",
	Long: `Starts the gRPC service and the HTTP/WebSocket API on the addresses
from the [server] section of the configuration.

Variables and the request history are kept in the SQLite store. When the
configuration was loaded from a file, changes to its log level take effect
without a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoHTTP, "no-http", false, "only start the gRPC server")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.FromConfig(appConfig, "exprkit", levelVar)
	if verbose {
		levelVar.Set(exlog.LevelDebug)
	}
	exlog.SetDefault(logger)
	log := logging.Wrap(logger)

	storeCfg := store.Config{
		Path:        appConfig.Store.Path,
		BusyTimeout: appConfig.Store.BusyTimeout.Duration,
	}
	st, err := store.Open(storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svcCfg := service.Config{
		Mode:           appConfig.ParseMode(),
		MaxInputLength: appConfig.Parser.MaxInputLength,
		Store:          st,
		DisableHistory: appConfig.Store.DisableHistory,
		HistoryLimit:   appConfig.Store.HistoryLimit,
		Logger:         log.With("component", "service"),
	}
	if !appConfig.Cache.Disabled {
		trees := cache.NewTreeCache(cache.Config{
			MaxItems:        appConfig.Cache.MaxItems,
			TTL:             appConfig.Cache.TTL.Duration,
			CleanupInterval: cache.DefaultConfig().CleanupInterval,
		})
		defer trees.Close()
		svcCfg.Trees = trees
	}

	svc, err := service.NewService(svcCfg)
	if err != nil {
		return err
	}

	grpcCfg := server.DefaultConfig()
	grpcCfg.Host = appConfig.Server.Host
	grpcCfg.Port = appConfig.Server.GRPCPort
	grpcCfg.EnableReflection = appConfig.Server.Reflection
	grpcCfg.Logger = log.With("component", "grpc")

	grpcServer, err := server.New(grpcCfg, svc)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Start(ctx)
	}()

	var httpServer *handler.Server
	if !serveNoHTTP {
		httpServer = handler.NewServer(handler.ServerConfig{
			Address:      appConfig.HTTPAddress(),
			ReadTimeout:  appConfig.Server.ReadTimeout.Duration,
			WriteTimeout: appConfig.Server.WriteTimeout.Duration,
			Version:      version.Version,
			Logger:       log.With("component", "http"),
		}, svc, grpcServer.HealthRegistry())
		go func() {
			errCh <- httpServer.Start()
		}()
	}

	if path := configPath(); path != "" {
		go watchConfig(ctx, path, log)
	}

	fmt.Printf("exprkit %s\n", version.Version)
	fmt.Printf("  gRPC  %s\n", appConfig.GRPCAddress())
	if httpServer != nil {
		fmt.Printf("  HTTP  %s\n", appConfig.HTTPAddress())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", "signal", sig.String())
	case err = <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout.Duration)
	defer shutdownCancel()

	if httpServer != nil {
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Warn("HTTP shutdown incomplete", "error", shutdownErr)
		}
	}
	grpcServer.Stop(shutdownCtx)

	return err
}

// configPath returns the file the configuration came from, if any
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path, ok := config.Discover(); ok {
		return path
	}
	return ""
}

// watchConfig applies log level changes from the config file
func watchConfig(ctx context.Context, path string, log *logging.Logger) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn("Ignoring invalid config change", "path", path, "error", err)
			return
		}
		if verbose {
			return
		}
		level := logging.ParseLevel(cfg.General.LogLevel)
		if level != levelVar.Level() {
			levelVar.Set(level)
			log.Info("Log level changed", "level", cfg.General.LogLevel)
		}
	})
	if err != nil {
		log.Warn("Config watch stopped", "path", path, "error", err)
	}
}
