package rest

import (
	"fmt"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
)

func jobLinks(job *core.Job) Links {
	self := fmt.Sprintf("/api/jobs/%s", job.ID)
	return Links{Self: self, Batches: self + "/batches"}
}

func toRangeInfo(r core.Range) RangeInfo {
	return RangeInfo{From: r.From, To: r.To}
}

func toErrorInfos(errs []core.BatchError) []ErrorInfo {
	infos := make([]ErrorInfo, 0, len(errs))
	for _, e := range errs {
		infos = append(infos, ErrorInfo{
			Batch:     e.Index,
			Range:     toRangeInfo(e.Range),
			Worker:    e.Worker,
			Error:     e.Error,
			Timestamp: e.Timestamp,
		})
	}
	return infos
}

func ToSubmitJobResponse(job *core.Job) SubmitJobResponse {
	return SubmitJobResponse{
		JobID:       job.ID.String(),
		Status:      string(job.Status),
		SubmittedAt: job.SubmittedAt,
		NumBatches:  len(job.Batches),
		Links:       jobLinks(job),
	}
}

func ToGetJobResponse(job *core.Job) GetJobResponse {
	return GetJobResponse{
		JobID:      job.ID.String(),
		Status:     string(job.Status),
		Range:      toRangeInfo(job.Range),
		BatchSize:  job.BatchSize,
		NumBatches: len(job.Batches),
		Timestamps: TimestampsInfo{
			Submitted:  job.SubmittedAt,
			Dispatched: job.DispatchedAt,
			Completed:  job.CompletedAt,
		},
		Errors: toErrorInfos(job.Errors),
		Links:  jobLinks(job),
	}
}

func ToJobSummary(job *core.Job) JobSummary {
	return JobSummary{
		JobID:       job.ID.String(),
		Status:      string(job.Status),
		Range:       toRangeInfo(job.Range),
		SubmittedAt: job.SubmittedAt,
		CompletedAt: job.CompletedAt,
	}
}

func ToGetBatchesResponse(job *core.Job) GetBatchesResponse {
	batches := make([]BatchInfo, 0, len(job.Batches))
	for _, b := range job.Batches {
		batches = append(batches, BatchInfo{
			Index:  b.Index,
			Range:  toRangeInfo(b.Range),
			Worker: b.Worker,
			Handle: b.Handle,
		})
	}
	return GetBatchesResponse{Batches: batches}
}

// ToDispatchFailedResponse prefers the recorded job errors, which carry
// timestamps, and falls back to the raw failures.
func ToDispatchFailedResponse(job *core.Job, de *core.DispatchError, code int) DispatchFailedResponse {
	var failures []ErrorInfo
	if job != nil && len(job.Errors) > 0 {
		failures = toErrorInfos(job.Errors)
	} else {
		failures = make([]ErrorInfo, 0, len(de.Failures))
		for _, f := range de.Failures {
			failures = append(failures, ErrorInfo{
				Batch:  f.Index,
				Range:  toRangeInfo(f.Range),
				Worker: f.Worker,
				Error:  f.Err.Error(),
			})
		}
	}

	resp := DispatchFailedResponse{
		JobID:    de.JobID.String(),
		Failures: failures,
	}
	resp.Error = "dispatch failed"
	resp.Message = de.Error()
	resp.Code = code
	return resp
}
