// Package exprv1 declares the exprkit.v1.ExprService gRPC contract. Requests
// and responses are google.protobuf.Struct messages so the service needs no
// generated code.
package exprv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "exprkit.v1.ExprService"

// Full method names
const (
	ExprService_Parse_FullMethodName         = "/" + ServiceName + "/Parse"
	ExprService_Tokenize_FullMethodName      = "/" + ServiceName + "/Tokenize"
	ExprService_Evaluate_FullMethodName      = "/" + ServiceName + "/Evaluate"
	ExprService_ListVariables_FullMethodName = "/" + ServiceName + "/ListVariables"
)

// ExprServiceServer is the server API for ExprService
type ExprServiceServer interface {
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVariables(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterExprServiceServer registers srv on s
func RegisterExprServiceServer(s grpc.ServiceRegistrar, srv ExprServiceServer) {
	s.RegisterService(&ExprService_ServiceDesc, srv)
}

// ExprService_ServiceDesc is the grpc.ServiceDesc for ExprService
var ExprService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExprServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Parse", Handler: unaryHandler(ExprService_Parse_FullMethodName, ExprServiceServer.Parse)},
		{MethodName: "Tokenize", Handler: unaryHandler(ExprService_Tokenize_FullMethodName, ExprServiceServer.Tokenize)},
		{MethodName: "Evaluate", Handler: unaryHandler(ExprService_Evaluate_FullMethodName, ExprServiceServer.Evaluate)},
		{MethodName: "ListVariables", Handler: unaryHandler(ExprService_ListVariables_FullMethodName, ExprServiceServer.ListVariables)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "exprkit/v1/expr.proto",
}

type unaryMethod func(ExprServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, method unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(ExprServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(ExprServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExprServiceClient is the client API for ExprService
type ExprServiceClient interface {
	Parse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Tokenize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListVariables(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type exprServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewExprServiceClient creates a client on cc
func NewExprServiceClient(cc grpc.ClientConnInterface) ExprServiceClient {
	return &exprServiceClient{cc: cc}
}

func (c *exprServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exprServiceClient) Parse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExprService_Parse_FullMethodName, in, opts)
}

func (c *exprServiceClient) Tokenize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExprService_Tokenize_FullMethodName, in, opts)
}

func (c *exprServiceClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExprService_Evaluate_FullMethodName, in, opts)
}

func (c *exprServiceClient) ListVariables(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExprService_ListVariables_FullMethodName, in, opts)
}
