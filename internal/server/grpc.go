package server

import (
	"context"
	"sort"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/msto63/exprkit/api/exprv1"
	exerr "github.com/msto63/exprkit/foundation/core/error"
)

// Ensure Server implements ExprServiceServer
var _ pb.ExprServiceServer = (*Server)(nil)

// Parse implements ExprServiceServer.Parse
func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.service.Parse(ctx, pb.Text(req))
	if err != nil {
		return nil, toStatus(err)
	}

	tree, err := pb.TreeValue(result.Tree)
	if err != nil {
		s.logger.Error("Encoding tree failed", "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	variables := make([]*structpb.Value, len(result.Variables))
	for i, name := range result.Variables {
		variables[i] = structpb.NewStringValue(name)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"request_id": structpb.NewStringValue(result.RequestID),
		"rendered":   structpb.NewStringValue(result.Rendered),
		"tree":       tree,
		"variables":  structpb.NewListValue(&structpb.ListValue{Values: variables}),
		"cached":     structpb.NewBoolValue(result.Cached),
	}}, nil
}

// Tokenize implements ExprServiceServer.Tokenize
func (s *Server) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.service.Tokenize(ctx, pb.Text(req))
	if err != nil {
		return nil, toStatus(err)
	}

	tokens := make([]*structpb.Value, len(result.Tokens))
	for i, tok := range result.Tokens {
		fields := map[string]*structpb.Value{
			"kind":     structpb.NewStringValue(tok.Kind.String()),
			"text":     structpb.NewStringValue(tok.Text()),
			"position": structpb.NewNumberValue(float64(tok.Position)),
		}
		tokens[i] = structpb.NewStructValue(&structpb.Struct{Fields: fields})
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"request_id": structpb.NewStringValue(result.RequestID),
		"tokens":     structpb.NewListValue(&structpb.ListValue{Values: tokens}),
	}}, nil
}

// Evaluate implements ExprServiceServer.Evaluate
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.service.Evaluate(ctx, pb.Text(req))
	if err != nil {
		return nil, toStatus(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"request_id": structpb.NewStringValue(result.RequestID),
		"rendered":   structpb.NewStringValue(result.Rendered),
		"value":      pb.IntValue(result.Value),
		"assigned":   structpb.NewStringValue(result.Assigned),
	}}, nil
}

// ListVariables implements ExprServiceServer.ListVariables
func (s *Server) ListVariables(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	vars, err := s.service.Variables(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]*structpb.Value, len(vars))
	for _, name := range names {
		fields[name] = pb.IntValue(vars[name])
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"variables": structpb.NewStructValue(&structpb.Struct{Fields: fields}),
	}}, nil
}

// toStatus maps coded errors onto gRPC status codes
func toStatus(err error) error {
	code := exerr.GetCode(err)

	var grpcCode codes.Code
	switch {
	case code.IsParseError():
		grpcCode = codes.InvalidArgument
	case code == exerr.CodeInvalidInput:
		grpcCode = codes.InvalidArgument
	case code == exerr.CodeUndefinedVariable:
		grpcCode = codes.NotFound
	case code == exerr.CodeDivisionByZero:
		grpcCode = codes.FailedPrecondition
	case code == exerr.CodeDatabaseError:
		grpcCode = codes.Unavailable
	case code == exerr.CodeTimeout:
		grpcCode = codes.DeadlineExceeded
	default:
		if ctxCode := status.FromContextError(err).Code(); ctxCode != codes.Unknown {
			grpcCode = ctxCode
		} else {
			grpcCode = codes.Internal
		}
	}

	st := status.New(grpcCode, err.Error())
	if coded, ok := exerr.As(err); ok {
		details := map[string]interface{}{"code": string(coded.Code())}
		if pos, ok := coded.Details()["position"].(int); ok {
			details["position"] = pos
		}
		if name, ok := coded.Details()["name"].(string); ok {
			details["name"] = name
		}
		if detail, detailErr := structpb.NewStruct(details); detailErr == nil {
			if withDetails, wdErr := st.WithDetails(detail); wdErr == nil {
				st = withDetails
			}
		}
	}
	return st.Err()
}
