package core

import "github.com/google/uuid"

// JobStore is the job registry. Reads return copies; mutation goes through
// TransitionJob, which applies fn only while the job is still in status from.
type JobStore interface {
	SaveJob(job *Job) error
	GetJobByID(id uuid.UUID) (*Job, error)
	GetJobs(filter JobFilter) ([]*Job, int, error)
	TransitionJob(id uuid.UUID, from JobStatus, fn func(job *Job)) (*Job, error)
}
