package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

// Aggregator polls the workers bound to a job and folds their answers into one
// job status. A job is completed only when every batch probe says completed; an
// unreachable worker or unknown handle keeps the job in progress.
type Aggregator struct {
	client   core.WorkerClient
	jobStore core.JobStore
	logger   logging.Logger
}

func NewAggregator(client core.WorkerClient, jobStore core.JobStore, logger logging.Logger) *Aggregator {
	return &Aggregator{
		client:   client,
		jobStore: jobStore,
		logger:   logger,
	}
}

func (a *Aggregator) Aggregate(ctx context.Context, id uuid.UUID) (*core.Job, error) {
	job, err := a.jobStore.GetJobByID(id)
	if err != nil {
		return nil, err
	}
	// Terminal states are sticky; PENDING means dispatch is still in flight.
	if job.Status != core.JobStatusInProgress {
		return job, nil
	}

	probeCtx := context.WithoutCancel(ctx)

	results := make([]core.ProbeResult, len(job.Batches))
	var g errgroup.Group
	for i, b := range job.Batches {
		i, b := i, b
		g.Go(func() error {
			result, err := a.client.Probe(probeCtx, b.Worker, b.Handle)
			if err != nil {
				a.logger.Warn("Batch probe inconclusive",
					"job_id", job.ID.String(),
					"batch", b.Index,
					"worker", b.Worker,
					"handle", b.Handle,
					"error", err,
				)
				results[i] = core.ProbeRunning
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	completed := 0
	for _, r := range results {
		if r == core.ProbeCompleted {
			completed++
		}
	}

	a.logger.Debug("Job polled",
		"job_id", job.ID.String(),
		"completed_batches", completed,
		"total_batches", len(results),
	)

	if completed < len(results) {
		return job, nil
	}

	updated, err := a.jobStore.TransitionJob(job.ID, core.JobStatusInProgress, func(j *core.Job) {
		now := time.Now().UTC()
		j.Status = core.JobStatusCompleted
		j.CompletedAt = &now
	})
	if errors.Is(err, core.ErrStatusConflict) {
		// A concurrent poll already moved the job.
		return updated, nil
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info("Job completed", "job_id", job.ID.String(), "num_batches", len(results))
	return updated, nil
}
