package server

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/msto63/exprkit/api/exprv1"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/internal/service"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/logging"
)

func startTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	logger := logging.Wrap(exlog.Discard())

	svc, err := service.NewService(service.Config{Logger: logger})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	srv, err := New(Config{EnableReflection: true, Logger: logger}, svc)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx, lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		cancel()
		stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		srv.Stop(stopCtx)
	})
	return conn
}

func TestParseRPC(t *testing.T) {
	conn := startTestServer(t)
	api := pb.NewExprServiceClient(conn)

	ctx := metadata.AppendToOutgoingContext(context.Background(), coreGrpc.RequestIDHeader, "req-7")
	resp, err := api.Parse(ctx, pb.TextRequest("x = a * (2 + 3)"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	fields := resp.GetFields()
	if got := fields["rendered"].GetStringValue(); got != "x = (a * (2 + 3))" {
		t.Errorf("rendered = %q", got)
	}
	if got := fields["request_id"].GetStringValue(); got != "req-7" {
		t.Errorf("request_id = %q", got)
	}
	tree, err := pb.Tree(fields["tree"])
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if tree.String() != "x = (a * (2 + 3))" {
		t.Errorf("decoded tree = %s", tree)
	}
}

func TestTokenizeRPC(t *testing.T) {
	conn := startTestServer(t)
	api := pb.NewExprServiceClient(conn)

	resp, err := api.Tokenize(context.Background(), pb.TextRequest("ab+12"))
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	tokens := resp.GetFields()["tokens"].GetListValue().GetValues()
	want := []string{"Identifier", "Plus", "Number", "EndOfInput"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %d, want %d", len(tokens), len(want))
	}
	for i, kind := range want {
		if got := tokens[i].GetStructValue().GetFields()["kind"].GetStringValue(); got != kind {
			t.Errorf("token %d kind = %q, want %q", i, got, kind)
		}
	}
	if pos := tokens[2].GetStructValue().GetFields()["position"].GetNumberValue(); pos != 3 {
		t.Errorf("number position = %v, want 3", pos)
	}
}

func TestEvaluateAndListVariablesRPC(t *testing.T) {
	conn := startTestServer(t)
	api := pb.NewExprServiceClient(conn)
	ctx := context.Background()

	for _, input := range []string{"a = 9007199254740993", "b = a - 1"} {
		if _, err := api.Evaluate(ctx, pb.TextRequest(input)); err != nil {
			t.Fatalf("Evaluate(%q) error = %v", input, err)
		}
	}

	resp, err := api.ListVariables(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatalf("ListVariables() error = %v", err)
	}
	vars := resp.GetFields()["variables"].GetStructValue().GetFields()
	a, errA := pb.Int(vars["a"])
	b, errB := pb.Int(vars["b"])
	if errA != nil || errB != nil || a != 9007199254740993 || b != 9007199254740992 {
		t.Errorf("variables a=%d (%v) b=%d (%v)", a, errA, b, errB)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	conn := startTestServer(t)
	api := pb.NewExprServiceClient(conn)

	tests := []struct {
		input string
		code  codes.Code
	}{
		{"1 +", codes.InvalidArgument},
		{"3 # 4", codes.InvalidArgument},
		{"(1 + 2", codes.InvalidArgument},
		{"nope * 2", codes.NotFound},
		{"1 / 0", codes.FailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := api.Evaluate(context.Background(), pb.TextRequest(tt.input))
			st, _ := status.FromError(err)
			if st.Code() != tt.code {
				t.Errorf("code = %s, want %s (%v)", st.Code(), tt.code, err)
			}
			if len(st.Details()) == 0 {
				t.Error("status carries no details")
			}
		})
	}
}

func TestHealthService(t *testing.T) {
	conn := startTestServer(t)
	client := healthpb.NewHealthClient(conn)

	for _, name := range []string{"", pb.ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		if err != nil {
			t.Fatalf("Check(%q) error = %v", name, err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("Check(%q) = %s", name, resp.GetStatus())
		}
	}
}

func TestNewRequiresService(t *testing.T) {
	if _, err := New(DefaultConfig(), nil); err == nil {
		t.Error("New() without service should fail")
	}
}
