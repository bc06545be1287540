package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nemanja-m/gofarm/internal/shared/logging"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

type jobTracker struct {
	launcher core.Launcher
	prober   core.LivenessProber

	mu    sync.RWMutex
	items map[core.Handle]*core.WorkItem

	logger logging.Logger
}

// NewJobTracker returns a tracker with no concurrency limit: every valid submission
// launches immediately. Items live for the lifetime of the tracker.
func NewJobTracker(launcher core.Launcher, prober core.LivenessProber, logger logging.Logger) core.JobTracker {
	return &jobTracker{
		launcher: launcher,
		prober:   prober,
		items:    make(map[core.Handle]*core.WorkItem),
		logger:   logger,
	}
}

func (t *jobTracker) Submit(ctx context.Context, r core.Range) (*core.WorkItem, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	handle, err := t.launcher.Launch(ctx, r)
	if err != nil {
		t.logger.Error("Failed to launch work", "range", r.String(), "error", err)
		return nil, fmt.Errorf("failed to launch work for %s: %w", r, err)
	}

	item := &core.WorkItem{
		Handle:    handle,
		Range:     r,
		StartedAt: time.Now().UTC(),
	}

	// A reused pid replaces the stale entry it collides with.
	t.mu.Lock()
	t.items[handle] = item
	t.mu.Unlock()

	t.logger.Info("Work submitted", "handle", handle.String(), "from", r.From, "to", r.To)

	return item, nil
}

func (t *jobTracker) Probe(ctx context.Context, h core.Handle) (core.ProbeState, error) {
	t.mu.RLock()
	_, exists := t.items[h]
	t.mu.RUnlock()

	if !exists {
		return core.ProbeStateNotFound, nil
	}

	alive, err := t.prober.IsAlive(ctx, h)
	if err != nil {
		return "", fmt.Errorf("failed to probe handle %s: %w", h, err)
	}
	if alive {
		return core.ProbeStateRunning, nil
	}
	return core.ProbeStateCompleted, nil
}
