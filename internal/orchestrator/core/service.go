package core

import (
	"context"

	"github.com/google/uuid"
)

// WorkerClient talks to worker nodes. Handles are opaque to the orchestrator.
type WorkerClient interface {
	Submit(ctx context.Context, worker string, r Range) (handle string, err error)
	Probe(ctx context.Context, worker, handle string) (ProbeResult, error)
}

// JobService defines the interface for job submission and polling
type JobService interface {
	SubmitJob(ctx context.Context, r Range) (*Job, error)
	PollJob(ctx context.Context, id uuid.UUID) (*Job, error)
	GetJob(id uuid.UUID) (*Job, error)
	GetJobs(filter JobFilter) ([]*Job, int, error)
}
