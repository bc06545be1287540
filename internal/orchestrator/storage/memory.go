package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
)

// InMemoryJobStore is the process-wide job registry. Jobs are never removed.
type InMemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*core.Job
}

func NewInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs: make(map[uuid.UUID]*core.Job),
	}
}

var _ core.JobStore = (*InMemoryJobStore)(nil)

func (s *InMemoryJobStore) SaveJob(job *core.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", core.ErrJobExists, job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *InMemoryJobStore) GetJobByID(id uuid.UUID) (*core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrJobNotFound, id)
	}
	return job.Clone(), nil
}

// GetJobs returns jobs ordered by submission time, newest first.
func (s *InMemoryJobStore) GetJobs(filter core.JobFilter) ([]*core.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]*core.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, job)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].SubmittedAt.Equal(filtered[j].SubmittedAt) {
			return filtered[i].ID.String() < filtered[j].ID.String()
		}
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})

	total := len(filtered)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	page := make([]*core.Job, 0, end-start)
	for _, job := range filtered[start:end] {
		page = append(page, job.Clone())
	}
	return page, total, nil
}

// TransitionJob applies fn to the stored job if its status is still from. The
// whole check-and-mutate runs under the store lock, so two pollers cannot both
// move the same job.
func (s *InMemoryJobStore) TransitionJob(id uuid.UUID, from core.JobStatus, fn func(job *core.Job)) (*core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrJobNotFound, id)
	}
	if job.Status != from {
		return job.Clone(), fmt.Errorf("%w: job %s is %s, expected %s", core.ErrStatusConflict, id, job.Status, from)
	}

	updated := job.Clone()
	fn(updated)
	s.jobs[id] = updated
	return updated.Clone(), nil
}
