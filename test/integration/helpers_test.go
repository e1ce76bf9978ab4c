package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/msto63/exprkit/internal/client"
)

// TestConfig holds the addresses of a running exprkit server
type TestConfig struct {
	GRPCAddr string
	HTTPAddr string
}

func getTestConfig() TestConfig {
	return TestConfig{
		GRPCAddr: getEnv("TEST_EXPRKIT_GRPC_ADDR", "localhost:9310"),
		HTTPAddr: getEnv("TEST_EXPRKIT_HTTP_ADDR", "localhost:8310"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// skipIfServiceUnavailable skips the test if the server is not reachable
func skipIfServiceUnavailable(t *testing.T, addr string, what string) {
	t.Helper()
	if !isServiceAvailable(addr) {
		t.Skipf("Skipping: exprkit %s not available at %s", what, addr)
	}
}

// isServiceAvailable checks if a TCP connection can be established
func isServiceAvailable(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// dialClient connects the gRPC client and closes it when the test ends
func dialClient(t *testing.T, addr string) *client.Client {
	t.Helper()

	c, err := client.New(client.Config{Address: addr, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	t.Cleanup(func() {
		c.Close()
	})
	return c
}

// postJSON sends body to the HTTP API and decodes the response into out
func postJSON(t *testing.T, url string, body, out interface{}) int {
	t.Helper()

	data, err := json.Marshal(body)
	requireNoError(t, err, "marshal request")

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	requireNoError(t, err, "POST "+url)
	defer resp.Body.Close()

	if out != nil {
		requireNoError(t, json.NewDecoder(resp.Body).Decode(out), "decode response")
	}
	return resp.StatusCode
}

// testContext returns a context with timeout for tests
func testContext(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// requireNoError fails the test if err is not nil
func requireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// requireEqual fails the test if expected != actual
func requireEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// requireNotEmpty fails the test if value is empty
func requireNotEmpty(t *testing.T, value string, msg string) {
	t.Helper()
	if value == "" {
		t.Fatalf("%s: expected non-empty string", msg)
	}
}

// logTestStart logs the start of a test
func logTestStart(t *testing.T, surface, testName string) {
	t.Helper()
	t.Logf("=== %s: %s ===", surface, testName)
}
