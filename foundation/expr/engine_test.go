// File: engine_test.go
// Title: Engine Tests
// Description: Error wrapping, evaluation results and parse modes through
//              the engine facade.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-03
// Modified: 2026-10-10

package expr

import (
	"context"
	"errors"
	"testing"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/foundation/expr/executor"
	"github.com/msto63/exprkit/foundation/expr/parser"
)

func newTestEngine(mode parser.Mode) *Engine {
	return New(Options{Logger: exlog.Discard(), Mode: mode})
}

func TestEngineParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		code     exerr.Code
		position int
		target   interface{}
	}{
		{"3 & 4", exerr.CodeInvalidCharacter, 2, new(*parser.InvalidCharacterError)},
		{"(1 + 2", exerr.CodeSyntax, 6, new(*parser.SyntaxError)},
		{"1 + ", exerr.CodeUnexpectedFactor, 4, new(*parser.UnexpectedFactorError)},
	}

	e := newTestEngine(parser.ModeStrict)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := e.Validate(tt.input)

			coded, ok := exerr.As(err)
			if !ok {
				t.Fatalf("error %v is not coded", err)
			}
			if coded.Code() != tt.code {
				t.Errorf("code = %s, want %s", coded.Code(), tt.code)
			}
			if coded.Details()["position"] != tt.position {
				t.Errorf("position = %v, want %d", coded.Details()["position"], tt.position)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("typed error not reachable through errors.As")
			}
		})
	}
}

func TestEngineInputTooLong(t *testing.T) {
	e := New(Options{Logger: exlog.Discard(), MaxInputLength: 3})

	if _, err := e.Parse("1 + 2"); !exerr.HasCode(err, exerr.CodeInputTooLong) {
		t.Errorf("Parse() error = %v, want %s", err, exerr.CodeInputTooLong)
	}
	if _, err := e.Tokenize("1 + 2"); !exerr.HasCode(err, exerr.CodeInputTooLong) {
		t.Errorf("Tokenize() error = %v, want %s", err, exerr.CodeInputTooLong)
	}
}

func TestEngineEvaluate(t *testing.T) {
	ctx := context.Background()
	env := executor.NewMemoryEnvironment(nil)
	e := newTestEngine(parser.ModeStrict)

	res, err := e.Evaluate(ctx, "x = (2 + 3) * 4", env)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Value != 20 || res.Assigned != "x" {
		t.Errorf("result = %+v", res)
	}
	if _, ok := res.Tree.(*ast.Assignment); !ok {
		t.Errorf("tree = %T, want *ast.Assignment", res.Tree)
	}

	res, err = e.Evaluate(ctx, "x / 3", env)
	if err != nil || res.Value != 6 || res.Assigned != "" {
		t.Errorf("Evaluate() = %+v, %v", res, err)
	}

	if _, err := e.Evaluate(ctx, "x / (x - 20)", env); !exerr.HasCode(err, exerr.CodeDivisionByZero) {
		t.Errorf("error = %v, want %s", err, exerr.CodeDivisionByZero)
	}
}

func TestEngineModes(t *testing.T) {
	strict := newTestEngine(parser.ModeStrict)
	legacy := newTestEngine(parser.ModeLegacy)

	if strict.Mode() != parser.ModeStrict || legacy.Mode() != parser.ModeLegacy {
		t.Fatal("Mode() does not reflect options")
	}

	env := executor.NewMemoryEnvironment(map[string]int64{"x": 5})

	res, err := strict.Evaluate(context.Background(), "x * 2", env)
	if err != nil || res.Value != 10 {
		t.Errorf("strict: %+v, %v", res, err)
	}
	res, err = legacy.Evaluate(context.Background(), "x * 2", env)
	if err != nil || res.Value != 5 {
		t.Errorf("legacy: %+v, %v", res, err)
	}
}

func TestEngineTokenize(t *testing.T) {
	e := newTestEngine(parser.ModeStrict)

	tokens, err := e.Tokenize("a+1")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	kinds := []parser.Kind{parser.Identifier, parser.Plus, parser.Number, parser.EndOfInput}
	if len(tokens) != len(kinds) {
		t.Fatalf("got %d tokens", len(tokens))
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d = %s, want %s", i, tokens[i].Kind, k)
		}
	}

	partial, err := e.Tokenize("a + $")
	if !exerr.HasCode(err, exerr.CodeInvalidCharacter) || len(partial) != 2 {
		t.Errorf("Tokenize() = %v, %v", partial, err)
	}
}

func TestWrapParseErrorPassThrough(t *testing.T) {
	plain := errors.New("plain")
	if WrapParseError(plain) != plain {
		t.Error("unrelated error was wrapped")
	}
	if WrapParseError(nil) != nil {
		t.Error("nil error was wrapped")
	}
}
