package service

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/nemanja-m/gofarm/internal/worker/core"
)

// processProber answers liveness by asking the OS whether the pid still exists.
// The exit status is never consulted, so a crashed render looks completed.
type processProber struct{}

func NewProcessProber() core.LivenessProber {
	return processProber{}
}

func (processProber) IsAlive(ctx context.Context, h core.Handle) (bool, error) {
	return process.PidExistsWithContext(ctx, int32(h))
}
