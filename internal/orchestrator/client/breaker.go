package client

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

// BreakerWorkerClient guards probes with one circuit breaker per worker. An open
// breaker fails the probe fast, which the aggregator reads as "still running".
// Submissions bypass the breakers and always reach the worker.
type BreakerWorkerClient struct {
	next     core.WorkerClient
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewBreakerWorkerClient(next core.WorkerClient, workers []string, cfg config.BreakerConfig, logger logging.Logger) *BreakerWorkerClient {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(workers))
	for _, worker := range workers {
		breakers[worker] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        worker,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Worker circuit breaker state changed", "worker", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return &BreakerWorkerClient{next: next, breakers: breakers}
}

func (c *BreakerWorkerClient) Submit(ctx context.Context, worker string, r core.Range) (string, error) {
	return c.next.Submit(ctx, worker, r)
}

func (c *BreakerWorkerClient) Probe(ctx context.Context, worker, handle string) (core.ProbeResult, error) {
	cb, ok := c.breakers[worker]
	if !ok {
		return c.next.Probe(ctx, worker, handle)
	}
	result, err := cb.Execute(func() (any, error) {
		return c.next.Probe(ctx, worker, handle)
	})
	if err != nil {
		return "", err
	}
	return result.(core.ProbeResult), nil
}

// State reports the breaker state for a worker, mainly for diagnostics.
func (c *BreakerWorkerClient) State(worker string) gobreaker.State {
	if cb, ok := c.breakers[worker]; ok {
		return cb.State()
	}
	return gobreaker.StateClosed
}
