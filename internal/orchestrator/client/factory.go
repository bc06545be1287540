package client

import (
	"fmt"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

// New builds the worker client for the configured transport, wrapped in the
// per-worker probe breakers. The returned close func releases connections.
func New(cfg config.WorkersConfig, logger logging.Logger) (core.WorkerClient, func() error, error) {
	var (
		next    core.WorkerClient
		closeFn = func() error { return nil }
	)

	switch cfg.Transport {
	case config.TransportHTTP, "":
		next = NewHTTPWorkerClient(cfg.RequestTimeout)
	case config.TransportGRPC:
		grpcClient, err := NewGRPCWorkerClient(cfg.Endpoints, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		next = grpcClient
		closeFn = grpcClient.Close
	default:
		return nil, nil, fmt.Errorf("unsupported worker transport: %q", cfg.Transport)
	}

	return NewBreakerWorkerClient(next, cfg.Endpoints, cfg.Breaker, logger), closeFn, nil
}
