package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
)

// mockLogger is a no-op logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) Fatal(msg string, args ...any) {}

func TestHTTPWorkerClient_Submit(t *testing.T) {
	var (
		got    submitRequest
		method string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Location", "/api/work/4242")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"handle":"4242","links":{"self":"/api/work/4242"}}`))
	}))
	defer srv.Close()

	c := NewHTTPWorkerClient(time.Second)
	handle, err := c.Submit(context.Background(), srv.URL+"/", core.Range{From: 6, To: 10})
	require.NoError(t, err)
	require.Equal(t, "4242", handle)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/api/work", path)
	require.Equal(t, submitRequest{From: 6, To: 10}, got)
}

func TestHTTPWorkerClient_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to start work","message":"exec: not found","code":500}`))
	}))
	defer srv.Close()

	c := NewHTTPWorkerClient(time.Second)
	_, err := c.Submit(context.Background(), srv.URL, core.Range{From: 1, To: 5})
	require.ErrorContains(t, err, "worker http 500: failed to start work: exec: not found")
}

func TestHTTPWorkerClient_SubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPWorkerClient(time.Second)
	_, err := c.Submit(context.Background(), url, core.Range{From: 1, To: 5})
	require.Error(t, err)
}

func TestHTTPWorkerClient_Probe(t *testing.T) {
	states := map[string]int{
		"/api/work/1": http.StatusAccepted,
		"/api/work/2": http.StatusOK,
		"/api/work/3": http.StatusNotFound,
		"/api/work/4": http.StatusBadGateway,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(states[r.URL.Path])
	}))
	defer srv.Close()

	c := NewHTTPWorkerClient(time.Second)
	ctx := context.Background()

	result, err := c.Probe(ctx, srv.URL, "1")
	require.NoError(t, err)
	require.Equal(t, core.ProbeRunning, result)

	result, err = c.Probe(ctx, srv.URL, "2")
	require.NoError(t, err)
	require.Equal(t, core.ProbeCompleted, result)

	result, err = c.Probe(ctx, srv.URL, "3")
	require.NoError(t, err)
	require.Equal(t, core.ProbeNotFound, result)

	_, err = c.Probe(ctx, srv.URL, "4")
	require.ErrorContains(t, err, "worker http 502")
}
