package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

// Dispatcher submits every batch of a job to its round-robin worker and binds the
// returned handles. One failed submission fails the whole job; submissions that
// did succeed are left running on their workers.
type Dispatcher struct {
	workers  []string
	client   core.WorkerClient
	jobStore core.JobStore
	logger   logging.Logger
}

func NewDispatcher(workers []string, client core.WorkerClient, jobStore core.JobStore, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		workers:  append([]string(nil), workers...),
		client:   client,
		jobStore: jobStore,
		logger:   logger,
	}
}

// Dispatch expects job to be stored as PENDING and moves it to IN_PROGRESS or FAILED.
func (d *Dispatcher) Dispatch(ctx context.Context, job *core.Job, ranges []core.Range) (*core.Job, error) {
	// Placement is fixed before any call is made.
	batches := make([]core.Batch, len(ranges))
	for i, r := range ranges {
		worker, err := core.Place(i, d.workers)
		if err != nil {
			return d.fail(job, []core.BatchFailure{{Index: i, Range: r, Err: err}})
		}
		batches[i] = core.Batch{Index: i, Range: r, Worker: worker}
	}

	// In-flight submissions are never cancelled, even if the caller goes away.
	submitCtx := context.WithoutCancel(ctx)

	errs := make([]error, len(batches))
	var g errgroup.Group
	for i := range batches {
		i := i
		g.Go(func() error {
			b := &batches[i]
			handle, err := d.client.Submit(submitCtx, b.Worker, b.Range)
			if err != nil {
				errs[i] = err
				return err
			}
			b.Handle = handle
			d.logger.Debug("Batch dispatched",
				"job_id", job.ID.String(),
				"batch", b.Index,
				"range", b.Range.String(),
				"worker", b.Worker,
				"handle", handle,
			)
			return nil
		})
	}
	// Wait returns only after every submission settled.
	_ = g.Wait()

	var failures []core.BatchFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, core.BatchFailure{
				Index:  i,
				Range:  batches[i].Range,
				Worker: batches[i].Worker,
				Err:    err,
			})
		}
	}
	if len(failures) > 0 {
		return d.fail(job, failures)
	}

	updated, err := d.jobStore.TransitionJob(job.ID, core.JobStatusPending, func(j *core.Job) {
		now := time.Now().UTC()
		j.Status = core.JobStatusInProgress
		j.Batches = batches
		j.DispatchedAt = &now
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("Job dispatched",
		"job_id", job.ID.String(),
		"num_batches", len(batches),
		"num_workers", len(d.workers),
	)
	return updated, nil
}

func (d *Dispatcher) fail(job *core.Job, failures []core.BatchFailure) (*core.Job, error) {
	now := time.Now().UTC()
	batchErrors := make([]core.BatchError, 0, len(failures))
	for _, f := range failures {
		d.logger.Error("Batch dispatch failed",
			"job_id", job.ID.String(),
			"batch", f.Index,
			"range", f.Range.String(),
			"worker", f.Worker,
			"error", f.Err,
		)
		batchErrors = append(batchErrors, core.BatchError{
			Index:     f.Index,
			Range:     f.Range,
			Worker:    f.Worker,
			Error:     f.Err.Error(),
			Timestamp: now,
		})
	}

	updated, err := d.jobStore.TransitionJob(job.ID, core.JobStatusPending, func(j *core.Job) {
		j.Status = core.JobStatusFailed
		j.Batches = nil
		j.CompletedAt = &now
		j.Errors = batchErrors
	})
	if err != nil {
		return nil, err
	}

	d.logger.Warn("Job failed during dispatch", "job_id", job.ID.String(), "failed_batches", len(failures))
	return updated, &core.DispatchError{JobID: job.ID, Failures: failures}
}
