package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// IsTerminal reports whether no transition leaves the status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Range is an inclusive interval of unit (frame) indices.
type Range struct {
	From int64
	To   int64
}

// Len is the number of units in r. It wraps to 0 for the full int64 range.
func (r Range) Len() uint64 {
	return uint64(r.To) - uint64(r.From) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.From, r.To)
}

// Batch is one partition of a job's range, bound to the worker that accepted it.
type Batch struct {
	Index  int
	Range  Range
	Worker string
	Handle string
}

type Job struct {
	ID        uuid.UUID
	Status    JobStatus
	Range     Range
	BatchSize int

	// Batches is populated only when every batch was dispatched; a failed
	// dispatch leaves it empty.
	Batches []Batch

	SubmittedAt  time.Time
	DispatchedAt *time.Time
	CompletedAt  *time.Time

	Errors []BatchError
}

// BatchError records why one batch could not be dispatched.
type BatchError struct {
	Index     int
	Range     Range
	Worker    string
	Error     string
	Timestamp time.Time
}

// Clone returns a deep copy so callers never share a record with the store.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Batches != nil {
		c.Batches = append([]Batch(nil), j.Batches...)
	}
	if j.Errors != nil {
		c.Errors = append([]BatchError(nil), j.Errors...)
	}
	if j.DispatchedAt != nil {
		t := *j.DispatchedAt
		c.DispatchedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

type JobFilter struct {
	Status *JobStatus
	Limit  int
	Offset int
}

// ProbeResult is a worker's answer about one dispatched batch.
type ProbeResult string

const (
	ProbeRunning   ProbeResult = "running"
	ProbeCompleted ProbeResult = "completed"
	ProbeNotFound  ProbeResult = "not_found"
)
