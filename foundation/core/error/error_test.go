// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severity and
//              serialization.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-28
// Modified: 2026-10-12

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
	if len(err.StackTrace()) == 0 {
		t.Error("StackTrace() should not be empty")
	}
	found := false
	for _, frame := range err.StackTrace() {
		if strings.Contains(frame.Function, "TestNew") {
			found = true
		}
	}
	if !found {
		t.Error("StackTrace() should contain the caller of New")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "wrapper",
			wantNil: true,
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original"),
			message:  "wrapper",
			wantMsg:  "wrapper: original",
			wantCode: CodeUnknown,
		},
		{
			name:     "wrap coded error",
			err:      New("original").WithCode(CodeSyntax),
			message:  "wrapper",
			wantMsg:  "wrapper: original",
			wantCode: CodeSyntax,
		},
		{
			name:     "wrap coded error behind fmt wrapping",
			err:      fmt.Errorf("outer: %w", New("inner").WithCode(CodeDivisionByZero)),
			message:  "wrapper",
			wantMsg:  "wrapper: outer: inner",
			wantCode: CodeDivisionByZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if got.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got.Code(), tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause with errors.Is")
			}
		})
	}
}

func TestWithCodeSetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeSyntax, SeverityLow},
		{CodeDatabaseError, SeverityHigh},
		{CodeServiceUnavailable, SeverityCritical},
		{CodeInternal, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := New("x").WithCode(tt.code)
			if err.Severity() != tt.want {
				t.Errorf("Severity() = %v, want %v", err.Severity(), tt.want)
			}
		})
	}

	explicit := New("x").WithSeverity(SeverityCritical).WithCode(CodeSyntax)
	if explicit.Severity() != SeverityCritical {
		t.Errorf("explicit severity overwritten: %v", explicit.Severity())
	}
}

func TestDetailsAreCopied(t *testing.T) {
	err := New("x").WithDetail("position", 3)
	details := err.Details()
	details["position"] = 99

	if err.Details()["position"] != 3 {
		t.Error("Details() must return a copy")
	}
}

func TestCodeHelpers(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New("bad").WithCode(CodeUndefinedVariable))

	if !HasCode(err, CodeUndefinedVariable) {
		t.Error("HasCode() should find code through wrapping")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() of a plain error should be CodeUnknown")
	}
	if GetSeverity(err) != SeverityLow {
		t.Errorf("GetSeverity() = %v, want low", GetSeverity(err))
	}
	if CodeSyntax.HTTPStatus() != 400 || CodeUndefinedVariable.HTTPStatus() != 404 {
		t.Error("unexpected HTTP status mapping")
	}
	if !CodeInvalidCharacter.IsParseError() || CodeDivisionByZero.IsParseError() {
		t.Error("IsParseError() classification is wrong")
	}
	if Code("BOGUS").IsValid() {
		t.Error("unknown code reported as valid")
	}
}

func TestRootCause(t *testing.T) {
	root := errors.New("root")
	err := Wrap(Wrap(root, "middle"), "top")

	if err.RootCause() != root {
		t.Errorf("RootCause() = %v, want %v", err.RootCause(), root)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("cause"), "failed").
		WithCode(CodeSyntax).
		WithOperation("parser.Parse").
		WithRequestID("req-1").
		WithDetail("position", 4)

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("Marshal() error = %v", marshalErr)
	}

	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal(data, &decoded); jsonErr != nil {
		t.Fatalf("Unmarshal() error = %v", jsonErr)
	}

	for key, want := range map[string]interface{}{
		"message":    "failed",
		"code":       "EXPR_SYNTAX",
		"severity":   "low",
		"operation":  "parser.Parse",
		"request_id": "req-1",
		"cause":      "cause",
	} {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
}
