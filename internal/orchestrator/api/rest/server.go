package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/httpx"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
)

const defaultListLimit = 10

type API struct {
	jobService core.JobService
	retryAfter time.Duration
	logger     logging.Logger
}

func NewAPI(jobService core.JobService, retryAfter time.Duration, logger logging.Logger) *API {
	return &API{
		jobService: jobService,
		retryAfter: retryAfter,
		logger:     logger,
	}
}

func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.health)
	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/", a.submitJob)
		r.Get("/", a.listJobs)
		r.Get("/{id}", a.pollJob)
		r.Get("/{id}/batches", a.getJobBatches)
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// submitJob handles POST /api/jobs
func (a *API) submitJob(w http.ResponseWriter, r *http.Request) {
	var req httpx.RangeRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	job, err := a.jobService.SubmitJob(r.Context(), core.Range{From: *req.From, To: *req.To})
	if err != nil {
		var de *core.DispatchError
		switch {
		case errors.Is(err, core.ErrInvalidRange):
			httpx.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		case errors.As(err, &de):
			a.logger.Warn("Job dispatch failed", "job_id", de.JobID.String(), "failures", len(de.Failures))
			httpx.RespondJSON(w, http.StatusInternalServerError,
				ToDispatchFailedResponse(job, de, http.StatusInternalServerError))
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "failed to submit job", err.Error())
		}
		return
	}

	resp := ToSubmitJobResponse(job)
	w.Header().Set("Location", resp.Links.Self)
	httpx.SetRetryAfter(w, a.retryAfter)
	httpx.RespondJSON(w, http.StatusAccepted, resp)
}

// pollJob handles GET /api/jobs/{id}. Each call probes outstanding batches.
func (a *API) pollJob(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseJobID(w, r)
	if !ok {
		return
	}

	job, err := a.jobService.PollJob(r.Context(), id)
	if err != nil {
		a.respondLookupError(w, id, err)
		return
	}

	resp := ToGetJobResponse(job)
	if job.Status.IsTerminal() {
		httpx.RespondJSON(w, http.StatusOK, resp)
		return
	}
	httpx.SetRetryAfter(w, a.retryAfter)
	httpx.RespondJSON(w, http.StatusAccepted, resp)
}

// listJobs handles GET /api/jobs with filters and pagination
func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := core.JobFilter{Limit: defaultListLimit}
	if statusStr := query.Get("status"); statusStr != "" {
		status, err := parseStatus(statusStr)
		if err != nil {
			httpx.RespondError(w, http.StatusBadRequest, "invalid status", err.Error())
			return
		}
		filter.Status = &status
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	jobs, total, err := a.jobService.GetJobs(filter)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "failed to list jobs", err.Error())
		return
	}

	summaries := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, ToJobSummary(job))
	}

	var nextOffset *int
	if end := filter.Offset + len(jobs); end < total {
		nextOffset = &end
	}

	httpx.RespondJSON(w, http.StatusOK, ListJobsResponse{
		Jobs:       summaries,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		NextOffset: nextOffset,
	})
}

// getJobBatches handles GET /api/jobs/{id}/batches. It reads the registry
// without probing workers.
func (a *API) getJobBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseJobID(w, r)
	if !ok {
		return
	}

	job, err := a.jobService.GetJob(id)
	if err != nil {
		a.respondLookupError(w, id, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, ToGetBatchesResponse(job))
}

func (a *API) parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "job not found", fmt.Sprintf("no job with id %q", raw))
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) respondLookupError(w http.ResponseWriter, id uuid.UUID, err error) {
	if errors.Is(err, core.ErrJobNotFound) {
		httpx.RespondError(w, http.StatusNotFound, "job not found", fmt.Sprintf("no job with id %s", id))
		return
	}
	httpx.RespondError(w, http.StatusInternalServerError, "failed to get job", err.Error())
}

func parseStatus(s string) (core.JobStatus, error) {
	status := core.JobStatus(strings.ToUpper(s))
	switch status {
	case core.JobStatusPending, core.JobStatusInProgress, core.JobStatusCompleted, core.JobStatusFailed:
		return status, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func NewServer(cfg config.RESTConfig, api *API, logger logging.Logger) *http.Server {
	r := chi.NewRouter()
	api.RegisterRoutes(r)

	handler := httpx.ChainMiddleware(
		r,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(logger),
		httpx.LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
