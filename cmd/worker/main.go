package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
	"github.com/nemanja-m/gofarm/internal/worker/api/grpc"
	"github.com/nemanja-m/gofarm/internal/worker/api/rest"
	"github.com/nemanja-m/gofarm/internal/worker/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "worker",
		Short:        "Runs render processes for frame ranges and reports their liveness",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")

	return cmd
}

func run(configPath string) error {
	cfg, err := config.LoadWorker(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	launcher, err := service.NewProcessLauncher(cfg.Render, logger)
	if err != nil {
		return err
	}
	tracker := service.NewJobTracker(launcher, service.NewProcessProber(), logger)

	api := rest.NewAPI(tracker, cfg.Polling.RetryAfter, logger)
	server := rest.NewServer(cfg.REST, api, logger)

	go func() {
		logger.Info("Starting worker API server", "addr", cfg.REST.Addr, "command", cfg.Render.Command)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", "error", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Addr != "" {
		grpcServer = grpc.NewServer(cfg.GRPC, tracker, logger)
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server error", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker")

	if grpcServer != nil {
		grpcServer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Worker stopped")
	return nil
}
