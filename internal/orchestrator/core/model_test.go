package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJobStatusIsTerminal(t *testing.T) {
	require.False(t, JobStatusPending.IsTerminal())
	require.False(t, JobStatusInProgress.IsTerminal())
	require.True(t, JobStatusCompleted.IsTerminal())
	require.True(t, JobStatusFailed.IsTerminal())
}

func TestJobClone(t *testing.T) {
	now := time.Now()
	job := &Job{
		ID:           uuid.New(),
		Status:       JobStatusInProgress,
		Batches:      []Batch{{Index: 0, Range: Range{1, 5}, Worker: "w0", Handle: "10"}},
		DispatchedAt: &now,
	}

	clone := job.Clone()
	clone.Batches[0].Handle = "changed"
	*clone.DispatchedAt = now.Add(time.Hour)
	clone.Status = JobStatusCompleted

	require.Equal(t, "10", job.Batches[0].Handle)
	require.Equal(t, now, *job.DispatchedAt)
	require.Equal(t, JobStatusInProgress, job.Status)
	require.Nil(t, (*Job)(nil).Clone())
}

func TestDispatchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&DispatchError{
		JobID: uuid.New(),
		Failures: []BatchFailure{
			{Index: 2, Range: Range{11, 15}, Worker: "http://w2", Err: cause},
		},
	})

	require.ErrorIs(t, err, ErrDispatchFailed)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "batch 2 [11,15] on http://w2: connection refused")

	var de *DispatchError
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Failures, 1)
}
