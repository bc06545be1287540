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

	"github.com/nemanja-m/gofarm/internal/orchestrator/api/rest"
	"github.com/nemanja-m/gofarm/internal/orchestrator/client"
	"github.com/nemanja-m/gofarm/internal/orchestrator/service"
	"github.com/nemanja-m/gofarm/internal/orchestrator/storage"
	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
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
		Use:          "orchestrator",
		Short:        "Splits render ranges into batches and dispatches them to workers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")

	return cmd
}

func run(configPath string) error {
	cfg, err := config.LoadOrchestrator(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	workerClient, closeClient, err := client.New(cfg.Workers, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	jobStore := storage.NewInMemoryJobStore()
	dispatcher := service.NewDispatcher(cfg.Workers.Endpoints, workerClient, jobStore, logger)
	aggregator := service.NewAggregator(workerClient, jobStore, logger)
	jobService := service.NewJobService(cfg.Batch.Size, cfg.Batch.MaxBatches, jobStore, dispatcher, aggregator, logger)

	api := rest.NewAPI(jobService, cfg.Polling.RetryAfter, logger)
	server := rest.NewServer(cfg.REST, api, logger)

	go func() {
		logger.Info("Starting orchestrator API server",
			"addr", cfg.REST.Addr,
			"workers", len(cfg.Workers.Endpoints),
			"transport", cfg.Workers.Transport,
			"batch_size", cfg.Batch.Size,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down orchestrator")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Orchestrator stopped")
	return nil
}
