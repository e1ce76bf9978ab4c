// Package client talks to a remote exprkit gRPC server.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/msto63/exprkit/api/exprv1"
	"github.com/msto63/exprkit/foundation/expr/ast"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// ParseResult is a remote parse result
type ParseResult struct {
	RequestID string
	Tree      ast.Node
	Rendered  string
	Variables []string
	Cached    bool
}

// Token is a remote token
type Token struct {
	Kind     string
	Text     string
	Position int
}

// EvaluateResult is a remote evaluation result
type EvaluateResult struct {
	RequestID string
	Rendered  string
	Value     int64
	Assigned  string
}

// Client wraps a connection to ExprService
type Client struct {
	conn    *grpc.ClientConn
	api     pb.ExprServiceClient
	timeout time.Duration
}

// Config holds client configuration
type Config struct {
	Address string
	Timeout time.Duration
	Logger  *logging.Logger

	// DialOptions are appended to the defaults, e.g. a custom dialer
	DialOptions []grpc.DialOption
}

// New connects to the server at cfg.Address
func New(cfg Config) (*Client, error) {
	dialCfg := coreGrpc.DefaultClientConfig(cfg.Address)
	if cfg.Timeout > 0 {
		dialCfg.Timeout = cfg.Timeout
	}
	dialCfg.Logger = cfg.Logger

	conn, err := coreGrpc.Dial(dialCfg, cfg.DialOptions...)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:    conn,
		api:     pb.NewExprServiceClient(conn),
		timeout: dialCfg.Timeout,
	}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Parse parses input on the server
func (c *Client) Parse(ctx context.Context, input string) (*ParseResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var header metadata.MD
	resp, err := c.api.Parse(ctx, pb.TextRequest(input), grpc.Header(&header))
	if err != nil {
		return nil, err
	}

	fields := resp.GetFields()
	tree, err := pb.Tree(fields["tree"])
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}

	result := &ParseResult{
		RequestID: fields["request_id"].GetStringValue(),
		Tree:      tree,
		Rendered:  fields["rendered"].GetStringValue(),
		Cached:    fields["cached"].GetBoolValue(),
	}
	for _, v := range fields["variables"].GetListValue().GetValues() {
		result.Variables = append(result.Variables, v.GetStringValue())
	}
	if result.RequestID == "" {
		result.RequestID = first(header.Get(coreGrpc.RequestIDHeader))
	}
	return result, nil
}

// Tokenize splits input into tokens on the server
func (c *Client) Tokenize(ctx context.Context, input string) ([]Token, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.Tokenize(ctx, pb.TextRequest(input))
	if err != nil {
		return nil, err
	}

	values := resp.GetFields()["tokens"].GetListValue().GetValues()
	tokens := make([]Token, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		tokens = append(tokens, Token{
			Kind:     f["kind"].GetStringValue(),
			Text:     f["text"].GetStringValue(),
			Position: int(f["position"].GetNumberValue()),
		})
	}
	return tokens, nil
}

// Evaluate evaluates input against the server's variables
func (c *Client) Evaluate(ctx context.Context, input string) (*EvaluateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.Evaluate(ctx, pb.TextRequest(input))
	if err != nil {
		return nil, err
	}

	fields := resp.GetFields()
	value, err := pb.Int(fields["value"])
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	return &EvaluateResult{
		RequestID: fields["request_id"].GetStringValue(),
		Rendered:  fields["rendered"].GetStringValue(),
		Value:     value,
		Assigned:  fields["assigned"].GetStringValue(),
	}, nil
}

// Variables lists the server's variables
func (c *Client) Variables(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.ListVariables(ctx, &structpb.Struct{})
	if err != nil {
		return nil, err
	}

	fields := resp.GetFields()["variables"].GetStructValue().GetFields()
	vars := make(map[string]int64, len(fields))
	for name, v := range fields {
		value, err := pb.Int(v)
		if err != nil {
			return nil, fmt.Errorf("decode variable %s: %w", name, err)
		}
		vars[name] = value
	}
	return vars, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
