package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

type jobService struct {
	batchSize  int
	maxBatches int
	jobStore   core.JobStore
	dispatcher *Dispatcher
	aggregator *Aggregator
	logger     logging.Logger
}

func NewJobService(
	batchSize int,
	maxBatches int,
	jobStore core.JobStore,
	dispatcher *Dispatcher,
	aggregator *Aggregator,
	logger logging.Logger,
) core.JobService {
	return &jobService{
		batchSize:  batchSize,
		maxBatches: maxBatches,
		jobStore:   jobStore,
		dispatcher: dispatcher,
		aggregator: aggregator,
		logger:     logger,
	}
}

// SubmitJob plans r, registers a PENDING job and dispatches it. On dispatch
// failure the FAILED job is returned together with a *core.DispatchError.
func (s *jobService) SubmitJob(ctx context.Context, r core.Range) (*core.Job, error) {
	ranges, err := core.Plan(r, s.batchSize, s.maxBatches)
	if err != nil {
		return nil, err
	}

	job := &core.Job{
		ID:          uuid.New(),
		Status:      core.JobStatusPending,
		Range:       r,
		BatchSize:   s.batchSize,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.jobStore.SaveJob(job); err != nil {
		return nil, err
	}

	s.logger.Info("Submitting job",
		"job_id", job.ID.String(),
		"from", r.From,
		"to", r.To,
		"batch_size", s.batchSize,
		"num_batches", len(ranges),
	)

	return s.dispatcher.Dispatch(ctx, job, ranges)
}

func (s *jobService) PollJob(ctx context.Context, id uuid.UUID) (*core.Job, error) {
	return s.aggregator.Aggregate(ctx, id)
}

func (s *jobService) GetJob(id uuid.UUID) (*core.Job, error) {
	return s.jobStore.GetJobByID(id)
}

func (s *jobService) GetJobs(filter core.JobFilter) ([]*core.Job, int, error) {
	return s.jobStore.GetJobs(filter)
}
