package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/config"
)

type countingClient struct {
	submits  int
	probes   int
	probeErr error
}

func (c *countingClient) Submit(ctx context.Context, worker string, r core.Range) (string, error) {
	c.submits++
	return "1", nil
}

func (c *countingClient) Probe(ctx context.Context, worker, handle string) (core.ProbeResult, error) {
	c.probes++
	if c.probeErr != nil {
		return "", c.probeErr
	}
	return core.ProbeCompleted, nil
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func TestBreakerWorkerClient_OpensAfterFailures(t *testing.T) {
	next := &countingClient{probeErr: errors.New("connection refused")}
	c := NewBreakerWorkerClient(next, []string{"w0"}, testBreakerConfig(), &mockLogger{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Probe(ctx, "w0", "1")
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, c.State("w0"))

	_, err := c.Probe(ctx, "w0", "1")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 3, next.probes, "open breaker must not reach the worker")
}

func TestBreakerWorkerClient_SubmitBypassesBreaker(t *testing.T) {
	next := &countingClient{probeErr: errors.New("connection refused")}
	c := NewBreakerWorkerClient(next, []string{"w0"}, testBreakerConfig(), &mockLogger{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Probe(ctx, "w0", "1")
	}
	require.Equal(t, gobreaker.StateOpen, c.State("w0"))

	handle, err := c.Submit(ctx, "w0", core.Range{From: 1, To: 1})
	require.NoError(t, err)
	require.Equal(t, "1", handle)
	require.Equal(t, 1, next.submits)
}

func TestBreakerWorkerClient_PassesResults(t *testing.T) {
	next := &countingClient{}
	c := NewBreakerWorkerClient(next, []string{"w0"}, testBreakerConfig(), &mockLogger{})

	result, err := c.Probe(context.Background(), "w0", "1")
	require.NoError(t, err)
	require.Equal(t, core.ProbeCompleted, result)

	// Workers outside the configured pool skip the breaker.
	result, err = c.Probe(context.Background(), "w9", "1")
	require.NoError(t, err)
	require.Equal(t, core.ProbeCompleted, result)
	require.Equal(t, gobreaker.StateClosed, c.State("w9"))
}
