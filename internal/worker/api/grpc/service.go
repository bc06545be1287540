package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nemanja-m/gofarm/internal/shared/logging"
	"github.com/nemanja-m/gofarm/internal/shared/rpc"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

type WorkerService struct {
	tracker core.JobTracker
	logger  logging.Logger
}

func NewWorkerService(tracker core.JobTracker, logger logging.Logger) *WorkerService {
	return &WorkerService{
		tracker: tracker,
		logger:  logger,
	}
}

var _ rpc.WorkerServer = (*WorkerService)(nil)

func (s *WorkerService) Submit(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	from, to, err := rpc.ParseSubmitRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.tracker.Submit(ctx, core.Range{From: from, To: to})
	if err != nil {
		if errors.Is(err, core.ErrInvalidRange) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Int64(int64(item.Handle)), nil
}

func (s *WorkerService) Probe(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.NotFound, "no work with handle %d", req.GetValue())
	}
	handle := core.Handle(req.GetValue())

	state, err := s.tracker.Probe(ctx, handle)
	if err != nil {
		s.logger.Error("Probe failed", "handle", handle.String(), "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	if state == core.ProbeStateNotFound {
		return nil, status.Errorf(codes.NotFound, "no work with handle %s", handle)
	}
	return wrapperspb.String(string(state)), nil
}
