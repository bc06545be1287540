package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/rpc"
)

// GRPCWorkerClient keeps one connection per worker address.
type GRPCWorkerClient struct {
	conns   map[string]*grpc.ClientConn
	clients map[string]*rpc.WorkerClient
	timeout time.Duration
}

func NewGRPCWorkerClient(workers []string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCWorkerClient, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}, opts...)

	c := &GRPCWorkerClient{
		conns:   make(map[string]*grpc.ClientConn, len(workers)),
		clients: make(map[string]*rpc.WorkerClient, len(workers)),
		timeout: timeout,
	}
	for _, worker := range workers {
		if _, exists := c.conns[worker]; exists {
			continue
		}
		conn, err := grpc.NewClient(worker, dialOpts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to worker %s: %w", worker, err)
		}
		c.conns[worker] = conn
		c.clients[worker] = rpc.NewWorkerClient(conn)
	}
	return c, nil
}

func (c *GRPCWorkerClient) client(worker string) (*rpc.WorkerClient, error) {
	client, ok := c.clients[worker]
	if !ok {
		return nil, fmt.Errorf("unknown worker %s", worker)
	}
	return client, nil
}

func (c *GRPCWorkerClient) Submit(ctx context.Context, worker string, r core.Range) (string, error) {
	client, err := c.client(worker)
	if err != nil {
		return "", err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := client.Submit(ctx, rpc.NewSubmitRequest(r.From, r.To))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(resp.GetValue(), 10), nil
}

func (c *GRPCWorkerClient) Probe(ctx context.Context, worker, handle string) (core.ProbeResult, error) {
	client, err := c.client(worker)
	if err != nil {
		return "", err
	}
	pid, err := strconv.ParseInt(handle, 10, 64)
	if err != nil {
		return core.ProbeNotFound, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := client.Probe(ctx, wrapperspb.Int64(pid))
	if status.Code(err) == codes.NotFound {
		return core.ProbeNotFound, nil
	}
	if err != nil {
		return "", err
	}

	switch resp.GetValue() {
	case string(core.ProbeRunning):
		return core.ProbeRunning, nil
	case string(core.ProbeCompleted):
		return core.ProbeCompleted, nil
	default:
		return "", fmt.Errorf("unexpected probe state %q", resp.GetValue())
	}
}

func (c *GRPCWorkerClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *GRPCWorkerClient) Close() error {
	var firstErr error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
