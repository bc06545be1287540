package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidRange       = errors.New("invalid range")
	ErrNoWorkersAvailable = errors.New("no workers available")
	ErrJobNotFound        = errors.New("job not found")
	ErrJobExists          = errors.New("job already exists")
	ErrDispatchFailed     = errors.New("dispatch failed")

	// ErrStatusConflict is returned when a status transition finds the job in a
	// different status than the caller expected.
	ErrStatusConflict = errors.New("job status changed concurrently")
)

// DispatchError lists every batch of a job whose submission failed.
type DispatchError struct {
	JobID    uuid.UUID
	Failures []BatchFailure
}

type BatchFailure struct {
	Index  int
	Range  Range
	Worker string
	Err    error
}

func (e *DispatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("batch %d %s on %s: %v", f.Index, f.Range, f.Worker, f.Err))
	}
	return fmt.Sprintf("dispatch failed for job %s: %s", e.JobID, strings.Join(parts, "; "))
}

func (e *DispatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, ErrDispatchFailed)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
