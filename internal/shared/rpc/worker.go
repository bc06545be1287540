// Package rpc describes the worker's gRPC surface. Messages are protobuf well-known
// types so the service needs no generated code: Submit takes a Struct carrying
// "from" and "to" and returns the process handle, Probe takes the handle and returns
// the probe state name.
//
// Struct numbers are float64, so range bounds travel as decimal strings. Number
// values are still accepted when they are exact integers.
package rpc

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	WorkerServiceName = "gofarm.worker.v1.Worker"

	SubmitMethod = "/" + WorkerServiceName + "/Submit"
	ProbeMethod  = "/" + WorkerServiceName + "/Probe"
)

// WorkerServer is implemented by the worker node.
type WorkerServer interface {
	Submit(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error)
	Probe(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.StringValue, error)
}

func RegisterWorkerServer(s grpc.ServiceRegistrar, srv WorkerServer) {
	s.RegisterService(&workerServiceDesc, srv)
}

var workerServiceDesc = grpc.ServiceDesc{
	ServiceName: WorkerServiceName,
	HandlerType: (*WorkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
		{MethodName: "Probe", Handler: probeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gofarm/worker/v1/worker.proto",
}

func submitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SubmitMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func probeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).Probe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProbeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerServer).Probe(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// WorkerClient is the client side of the worker service.
type WorkerClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkerClient(cc grpc.ClientConnInterface) *WorkerClient {
	return &WorkerClient{cc: cc}
}

func (c *WorkerClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, SubmitMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WorkerClient) Probe(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ProbeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func NewSubmitRequest(from, to int64) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"from": structpb.NewStringValue(strconv.FormatInt(from, 10)),
			"to":   structpb.NewStringValue(strconv.FormatInt(to, 10)),
		},
	}
}

// ParseSubmitRequest extracts the range bounds; both must be present and integral.
func ParseSubmitRequest(req *structpb.Struct) (from, to int64, err error) {
	if from, err = intField(req, "from"); err != nil {
		return 0, 0, err
	}
	if to, err = intField(req, "to"); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// maxExactFloat is the largest magnitude below which every integer is exactly
// representable as a float64.
const maxExactFloat = 1 << 53

func intField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %q", name, kind.StringValue)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		if math.Abs(f) > maxExactFloat {
			return 0, fmt.Errorf("%s is out of range for a number value, send it as a string", name)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}
