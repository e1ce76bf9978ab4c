// File: engine.go
// Title: Expression Engine
// Description: Facade combining scanner, parser and evaluator. Errors from
//              the core are wrapped into coded errors while the typed parse
//              errors remain reachable through errors.As.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-03
// Modified: 2026-10-10
//
// Change History:
// - 2026-10-03 v0.1.0: Initial engine
// - 2026-10-10 v0.2.0: Parse mode option, Validate

package expr

import (
	"context"
	"errors"
	"unicode/utf8"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/foundation/expr/executor"
	"github.com/msto63/exprkit/foundation/expr/parser"
)

// Options configures the engine
type Options struct {
	Logger         *exlog.Logger
	Mode           parser.Mode
	MaxInputLength int

	// Parser and Evaluator override the instances built from the fields above
	Parser    *parser.Parser
	Evaluator *executor.Evaluator
}

// Engine parses and evaluates statements. It is safe for concurrent use.
type Engine struct {
	parser    *parser.Parser
	evaluator *executor.Evaluator
	logger    *exlog.Logger
	options   Options
}

// Result is the outcome of evaluating one statement
type Result struct {
	Tree  ast.Node
	Value int64

	// Assigned is the target variable when the statement was an assignment
	Assigned string
}

// New creates an engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = exlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = parser.DefaultMaxInputLength
	}

	logger := opts.Logger.WithField("component", "expr-engine")

	if opts.Parser == nil {
		opts.Parser = parser.New(parser.Options{
			Logger:         opts.Logger,
			MaxInputLength: opts.MaxInputLength,
			Mode:           opts.Mode,
		})
	}
	if opts.Evaluator == nil {
		opts.Evaluator = executor.New(executor.Options{Logger: opts.Logger})
	}

	return &Engine{
		parser:    opts.Parser,
		evaluator: opts.Evaluator,
		logger:    logger,
		options:   opts,
	}
}

// Mode returns the parse mode in use
func (e *Engine) Mode() parser.Mode {
	return e.parser.Mode()
}

// Parse parses input into a tree
func (e *Engine) Parse(input string) (ast.Node, error) {
	timer := e.logger.StartTimer("parse")

	node, err := e.parser.Parse(input)
	if err != nil {
		err = WrapParseError(err)
		timer.StopWithError(err)
		return nil, err
	}

	timer.Stop()
	return node, nil
}

// Validate reports whether input parses, without returning the tree
func (e *Engine) Validate(input string) error {
	_, err := e.Parse(input)
	return err
}

// Tokenize returns all tokens of input including the final EndOfInput.
// On error the tokens read before the offending character are returned.
func (e *Engine) Tokenize(input string) ([]parser.Token, error) {
	if limit := e.options.MaxInputLength; limit > 0 {
		if n := utf8.RuneCountInString(input); n > limit {
			return nil, WrapParseError(&parser.InputTooLongError{Length: n, Limit: limit})
		}
	}

	tokens, err := parser.Tokenize(input)
	if err != nil {
		return tokens, WrapParseError(err)
	}
	return tokens, nil
}

// Evaluate parses input and evaluates it against env. A nil env evaluates
// against an empty, throwaway environment.
func (e *Engine) Evaluate(ctx context.Context, input string, env executor.Environment) (*Result, error) {
	node, err := e.Parse(input)
	if err != nil {
		return nil, err
	}

	value, err := e.EvaluateTree(ctx, node, env)
	if err != nil {
		return nil, err
	}

	result := &Result{Tree: node, Value: value}
	if a, ok := node.(*ast.Assignment); ok {
		result.Assigned = a.Target
	}
	return result, nil
}

// EvaluateTree evaluates an already parsed tree
func (e *Engine) EvaluateTree(ctx context.Context, node ast.Node, env executor.Environment) (int64, error) {
	timer := e.logger.StartTimer("evaluate")

	value, err := e.evaluator.Evaluate(ctx, node, env)
	if err != nil {
		timer.StopWithError(err)
		return 0, err
	}

	timer.StopWithResult(value)
	return value, nil
}

// WrapParseError converts a scanner or parser error into a coded error with
// the error position as detail. Other errors are returned unchanged.
func WrapParseError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := exerr.As(err); ok {
		return err
	}

	var (
		ic      *parser.InvalidCharacterError
		se      *parser.SyntaxError
		uf      *parser.UnexpectedFactorError
		tooLong *parser.InputTooLongError
		code    exerr.Code
	)
	switch {
	case errors.As(err, &ic):
		code = exerr.CodeInvalidCharacter
	case errors.As(err, &se):
		code = exerr.CodeSyntax
	case errors.As(err, &uf):
		code = exerr.CodeUnexpectedFactor
	case errors.As(err, &tooLong):
		code = exerr.CodeInputTooLong
	default:
		return err
	}

	wrapped := exerr.Wrap(err, "parse failed").
		WithCode(code).
		WithOperation("expr.Parse")
	if pos := parser.Position(err); pos >= 0 {
		wrapped.WithDetail("position", pos)
	}
	return wrapped
}
