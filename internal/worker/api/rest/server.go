package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/httpx"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

type API struct {
	tracker    core.JobTracker
	retryAfter time.Duration
	logger     logging.Logger
}

func NewAPI(tracker core.JobTracker, retryAfter time.Duration, logger logging.Logger) *API {
	return &API{
		tracker:    tracker,
		retryAfter: retryAfter,
		logger:     logger,
	}
}

func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.health)
	r.Post("/api/work", a.submitWork)
	r.Get("/api/work/{handle}", a.probeWork)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// submitWork handles POST /api/work
func (a *API) submitWork(w http.ResponseWriter, r *http.Request) {
	var req httpx.RangeRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	item, err := a.tracker.Submit(r.Context(), core.Range{From: *req.From, To: *req.To})
	if err != nil {
		if errors.Is(err, core.ErrInvalidRange) {
			httpx.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "failed to start work", err.Error())
		return
	}

	self := fmt.Sprintf("/api/work/%s", item.Handle)
	w.Header().Set("Location", self)
	httpx.SetRetryAfter(w, a.retryAfter)
	httpx.RespondJSON(w, http.StatusAccepted, SubmitWorkResponse{
		Handle: item.Handle.String(),
		From:   item.Range.From,
		To:     item.Range.To,
		Links:  Links{Self: self},
	})
}

// probeWork handles GET /api/work/{handle}
func (a *API) probeWork(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "handle")
	handle, err := core.ParseHandle(raw)
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "work not found", err.Error())
		return
	}

	state, err := a.tracker.Probe(r.Context(), handle)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "probe failed", err.Error())
		return
	}

	resp := ProbeWorkResponse{Handle: handle.String(), State: string(state)}
	switch state {
	case core.ProbeStateNotFound:
		httpx.RespondError(w, http.StatusNotFound, "work not found", fmt.Sprintf("no work with handle %s", handle))
	case core.ProbeStateRunning:
		httpx.SetRetryAfter(w, a.retryAfter)
		httpx.RespondJSON(w, http.StatusAccepted, resp)
	default:
		httpx.RespondJSON(w, http.StatusOK, resp)
	}
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
