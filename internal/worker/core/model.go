package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrInvalidRange   = errors.New("invalid range")
	ErrHandleNotFound = errors.New("handle not found")
)

// Range is an inclusive interval of unit (frame) indices.
type Range struct {
	From int64
	To   int64
}

func (r Range) Validate() error {
	if r.To < r.From {
		return fmt.Errorf("%w: to (%d) must be >= from (%d)", ErrInvalidRange, r.To, r.From)
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.From, r.To)
}

// Handle identifies a unit of work on one worker. It is the OS process id of the
// render process, so it can be reused by the OS once that process has exited.
type Handle int

func (h Handle) String() string {
	return strconv.Itoa(int(h))
}

func ParseHandle(s string) (Handle, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrHandleNotFound, s)
	}
	return Handle(n), nil
}

type ProbeState string

const (
	ProbeStateRunning   ProbeState = "running"
	ProbeStateCompleted ProbeState = "completed"
	ProbeStateNotFound  ProbeState = "not_found"
)

// WorkItem is one accepted submission. Items are never evicted.
type WorkItem struct {
	Handle    Handle
	Range     Range
	StartedAt time.Time
}
