package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/rpc"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

// mockLogger is a no-op logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) Fatal(msg string, args ...any) {}

type mockTracker struct {
	mu     sync.Mutex
	next   core.Handle
	states map[core.Handle]core.ProbeState
}

func newMockTracker() *mockTracker {
	return &mockTracker{states: make(map[core.Handle]core.ProbeState)}
}

func (m *mockTracker) Submit(ctx context.Context, r core.Range) (*core.WorkItem, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.states[m.next] = core.ProbeStateRunning
	return &core.WorkItem{Handle: m.next, Range: r}, nil
}

func (m *mockTracker) Probe(ctx context.Context, h core.Handle) (core.ProbeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[h]
	if !ok {
		return core.ProbeStateNotFound, nil
	}
	return state, nil
}

func (m *mockTracker) complete(h core.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[h] = core.ProbeStateCompleted
}

func startServer(t *testing.T, tracker core.JobTracker) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(config.WorkerGRPCConfig{KeepaliveMinTime: time.Second}, tracker, &mockLogger{})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWorkerService_SubmitAndProbe(t *testing.T) {
	tracker := newMockTracker()
	client := rpc.NewWorkerClient(startServer(t, tracker))
	ctx := context.Background()

	handle, err := client.Submit(ctx, rpc.NewSubmitRequest(6, 10))
	require.NoError(t, err)
	require.Equal(t, int64(1), handle.GetValue())

	state, err := client.Probe(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, "running", state.GetValue())

	tracker.complete(core.Handle(handle.GetValue()))

	state, err = client.Probe(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, "completed", state.GetValue())
}

func TestWorkerService_Errors(t *testing.T) {
	client := rpc.NewWorkerClient(startServer(t, newMockTracker()))
	ctx := context.Background()

	_, err := client.Submit(ctx, rpc.NewSubmitRequest(10, 6))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Submit(ctx, &structpb.Struct{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Probe(ctx, wrapperspb.Int64(77))
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	conn := startServer(t, newMockTracker())

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: rpc.WorkerServiceName,
	})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
