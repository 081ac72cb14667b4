package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service only carries well-known protobuf types, so the descriptor is
// written by hand instead of generated.

const (
	ServiceName = "stockstreamer.control.v1.PollerControl"

	PollerControl_GetStatus_FullMethodName    = "/" + ServiceName + "/GetStatus"
	PollerControl_TriggerRound_FullMethodName = "/" + ServiceName + "/TriggerRound"
	PollerControl_ListSymbols_FullMethodName  = "/" + ServiceName + "/ListSymbols"
)

// -----------------------------------------------------------------------------
// Server API
// -----------------------------------------------------------------------------

type PollerControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	TriggerRound(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListSymbols(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// UnimplementedPollerControlServer can be embedded to have forward compatible implementations.
type UnimplementedPollerControlServer struct{}

func (UnimplementedPollerControlServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}

func (UnimplementedPollerControlServer) TriggerRound(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TriggerRound not implemented")
}

func (UnimplementedPollerControlServer) ListSymbols(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListSymbols not implemented")
}

func RegisterPollerControlServer(s grpc.ServiceRegistrar, srv PollerControlServer) {
	s.RegisterService(&PollerControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _PollerControl_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PollerControlServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PollerControl_GetStatus_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PollerControlServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _PollerControl_TriggerRound_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PollerControlServer).TriggerRound(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PollerControl_TriggerRound_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PollerControlServer).TriggerRound(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _PollerControl_ListSymbols_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PollerControlServer).ListSymbols(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PollerControl_ListSymbols_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PollerControlServer).ListSymbols(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var PollerControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PollerControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: _PollerControl_GetStatus_Handler},
		{MethodName: "TriggerRound", Handler: _PollerControl_TriggerRound_Handler},
		{MethodName: "ListSymbols", Handler: _PollerControl_ListSymbols_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockstreamer/control/v1/control.proto",
}

// -----------------------------------------------------------------------------
// Client API
// -----------------------------------------------------------------------------

type PollerControlClient interface {
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	TriggerRound(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListSymbols(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type pollerControlClient struct {
	cc grpc.ClientConnInterface
}

func NewPollerControlClient(cc grpc.ClientConnInterface) PollerControlClient {
	return &pollerControlClient{cc}
}

func (c *pollerControlClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollerControl_GetStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollerControlClient) TriggerRound(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollerControl_TriggerRound_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollerControlClient) ListSymbols(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, PollerControl_ListSymbols_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
