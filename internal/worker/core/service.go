package core

import "context"

// JobTracker accepts ranges, starts background work for them and answers liveness queries.
type JobTracker interface {
	Submit(ctx context.Context, r Range) (*WorkItem, error)
	Probe(ctx context.Context, h Handle) (ProbeState, error)
}

// Launcher starts the unit of work for a range and returns immediately.
type Launcher interface {
	Launch(ctx context.Context, r Range) (Handle, error)
}

// LivenessProber reports whether the work behind a handle is still observable.
type LivenessProber interface {
	IsAlive(ctx context.Context, h Handle) (bool, error)
}
