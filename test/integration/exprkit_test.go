package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPC_ParseAndEvaluate(t *testing.T) {
	cfg := getTestConfig()
	skipIfServiceUnavailable(t, cfg.GRPCAddr, "gRPC")
	logTestStart(t, "gRPC", "ParseAndEvaluate")

	c := dialClient(t, cfg.GRPCAddr)
	ctx, cancel := testContext(t, 10*time.Second)
	defer cancel()

	// a fresh name keeps runs against a persistent store independent
	name := "it_" + uuid.NewString()[:8]

	parsed, err := c.Parse(ctx, name+" = (2 + 3) * 4")
	requireNoError(t, err, "Parse failed")
	requireEqual(t, name+" = ((2 + 3) * 4)", parsed.Rendered, "rendered tree")
	requireNotEmpty(t, parsed.RequestID, "request id")

	res, err := c.Evaluate(ctx, name+" = (2 + 3) * 4")
	requireNoError(t, err, "Evaluate failed")
	requireEqual(t, int64(20), res.Value, "assigned value")
	requireEqual(t, name, res.Assigned, "assigned name")

	res, err = c.Evaluate(ctx, name+" / 3")
	requireNoError(t, err, "Evaluate of the variable failed")
	requireEqual(t, int64(6), res.Value, "truncating division")

	vars, err := c.Variables(ctx)
	requireNoError(t, err, "Variables failed")
	requireEqual(t, int64(20), vars[name], "listed variable")
}

func TestGRPC_Errors(t *testing.T) {
	cfg := getTestConfig()
	skipIfServiceUnavailable(t, cfg.GRPCAddr, "gRPC")
	logTestStart(t, "gRPC", "Errors")

	c := dialClient(t, cfg.GRPCAddr)
	ctx, cancel := testContext(t, 10*time.Second)
	defer cancel()

	tests := []struct {
		input string
		want  codes.Code
	}{
		{"1 +", codes.InvalidArgument},
		{"2 $ 3", codes.InvalidArgument},
		{"undefined_" + uuid.NewString()[:8], codes.NotFound},
		{"1 / 0", codes.FailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := c.Evaluate(ctx, tt.input)
			if err == nil {
				t.Fatalf("Evaluate(%q) should fail", tt.input)
			}
			requireEqual(t, tt.want, status.Code(err), "status code")
		})
	}
}

func TestHTTP_Health(t *testing.T) {
	cfg := getTestConfig()
	skipIfServiceUnavailable(t, cfg.HTTPAddr, "HTTP")
	logTestStart(t, "HTTP", "Health")

	resp, err := http.Get(fmt.Sprintf("http://%s/health", cfg.HTTPAddr))
	requireNoError(t, err, "GET /health")
	defer resp.Body.Close()
	requireEqual(t, http.StatusOK, resp.StatusCode, "health status")
}

func TestHTTP_Parse(t *testing.T) {
	cfg := getTestConfig()
	skipIfServiceUnavailable(t, cfg.HTTPAddr, "HTTP")
	logTestStart(t, "HTTP", "Parse")

	var ok struct {
		Rendered string `json:"rendered"`
	}
	code := postJSON(t, fmt.Sprintf("http://%s/api/v1/parse", cfg.HTTPAddr), map[string]string{"text": "a - b - c"}, &ok)
	requireEqual(t, http.StatusOK, code, "parse status")
	requireEqual(t, "((a - b) - c)", ok.Rendered, "left associativity")

	var failed struct {
		Code     string `json:"code"`
		Position *int   `json:"position"`
	}
	code = postJSON(t, fmt.Sprintf("http://%s/api/v1/parse", cfg.HTTPAddr), map[string]string{"text": "(1 + 2"}, &failed)
	requireEqual(t, http.StatusBadRequest, code, "syntax error status")
	requireEqual(t, "EXPR_SYNTAX", failed.Code, "error code")
	if failed.Position == nil || *failed.Position != 6 {
		t.Fatalf("position = %v, want 6", failed.Position)
	}
}
