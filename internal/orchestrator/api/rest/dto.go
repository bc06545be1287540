package rest

import (
	"time"

	"github.com/nemanja-m/gofarm/internal/shared/httpx"
)

type SubmitJobResponse struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	NumBatches  int       `json:"num_batches"`
	Links       Links     `json:"links"`
}

type Links struct {
	Self    string `json:"self"`
	Batches string `json:"batches,omitempty"`
}

type RangeInfo struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type GetJobResponse struct {
	JobID      string         `json:"job_id"`
	Status     string         `json:"status"`
	Range      RangeInfo      `json:"range"`
	BatchSize  int            `json:"batch_size"`
	NumBatches int            `json:"num_batches"`
	Timestamps TimestampsInfo `json:"timestamps"`
	Errors     []ErrorInfo    `json:"errors"`
	Links      Links          `json:"links"`
}

type TimestampsInfo struct {
	Submitted  time.Time  `json:"submitted"`
	Dispatched *time.Time `json:"dispatched"`
	Completed  *time.Time `json:"completed"`
}

type ErrorInfo struct {
	Batch     int       `json:"batch"`
	Range     RangeInfo `json:"range"`
	Worker    string    `json:"worker"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type ListJobsResponse struct {
	Jobs       []JobSummary `json:"jobs"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

type JobSummary struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Range       RangeInfo  `json:"range"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type GetBatchesResponse struct {
	Batches []BatchInfo `json:"batches"`
}

type BatchInfo struct {
	Index  int       `json:"index"`
	Range  RangeInfo `json:"range"`
	Worker string    `json:"worker"`
	Handle string    `json:"handle"`
}

// DispatchFailedResponse is returned when at least one batch could not be submitted.
type DispatchFailedResponse struct {
	httpx.ErrorResponse
	JobID    string      `json:"job_id"`
	Failures []ErrorInfo `json:"failures"`
}
