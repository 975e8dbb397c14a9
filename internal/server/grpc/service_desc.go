package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lovepage.v1.Declarations"

const (
	methodShare          = "/" + ServiceName + "/Share"
	methodOpen           = "/" + ServiceName + "/Open"
	methodNormalizeImage = "/" + ServiceName + "/NormalizeImage"
	methodNormalizeAudio = "/" + ServiceName + "/NormalizeAudio"
)

// DeclarationsServer is the server API for the Declarations service.
// Messages are protobuf well-known types, so no generated code is needed.
type DeclarationsServer interface {
	Share(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Open(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	NormalizeImage(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	NormalizeAudio(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

// RegisterDeclarationsServer registers srv on s.
func RegisterDeclarationsServer(s grpc.ServiceRegistrar, srv DeclarationsServer) {
	s.RegisterService(&declarationsServiceDesc, srv)
}

var declarationsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeclarationsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Share", Handler: shareHandler},
		{MethodName: "Open", Handler: openHandler},
		{MethodName: "NormalizeImage", Handler: normalizeImageHandler},
		{MethodName: "NormalizeAudio", Handler: normalizeAudioHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func shareHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeclarationsServer).Share(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodShare}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeclarationsServer).Share(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func openHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeclarationsServer).Open(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodOpen}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeclarationsServer).Open(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func normalizeImageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeclarationsServer).NormalizeImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodNormalizeImage}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeclarationsServer).NormalizeImage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func normalizeAudioHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeclarationsServer).NormalizeAudio(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodNormalizeAudio}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeclarationsServer).NormalizeAudio(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DeclarationsClient is the client API for the Declarations service.
type DeclarationsClient interface {
	Share(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Open(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	NormalizeImage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	NormalizeAudio(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type declarationsClient struct{ cc grpc.ClientConnInterface }

// NewDeclarationsClient wraps cc.
func NewDeclarationsClient(cc grpc.ClientConnInterface) DeclarationsClient {
	return &declarationsClient{cc: cc}
}

func (c *declarationsClient) Share(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodShare, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *declarationsClient) Open(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodOpen, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *declarationsClient) NormalizeImage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodNormalizeImage, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *declarationsClient) NormalizeAudio(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodNormalizeAudio, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
