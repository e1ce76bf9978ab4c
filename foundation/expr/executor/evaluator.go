// File: evaluator.go
// Title: Tree-Walking Evaluator
// Description: Evaluates a syntax tree against an Environment through the
//              ast.Visitor interface.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-03
// Modified: 2026-10-06
//
// Change History:
// - 2026-10-03 v0.1.0: Initial evaluator
// - 2026-10-06 v0.1.1: Context checks before environment access

package executor

import (
	"context"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/ast"
)

// Options configures an Evaluator
type Options struct {
	Logger *exlog.Logger
}

// Evaluator computes the value of syntax trees. It is stateless apart from
// its logger and may be shared.
type Evaluator struct {
	logger *exlog.Logger
}

// New creates an evaluator
func New(opts Options) *Evaluator {
	if opts.Logger == nil {
		opts.Logger = exlog.GetDefault()
	}
	return &Evaluator{logger: opts.Logger.WithField("component", "expr-evaluator")}
}

// Evaluate computes the value of node. Assignments are written to env in
// evaluation order, so a failing right-hand side leaves env untouched.
func (e *Evaluator) Evaluate(ctx context.Context, node ast.Node, env Environment) (int64, error) {
	if node == nil {
		return 0, exerr.New("nothing to evaluate").
			WithCode(exerr.CodeInvalidInput).
			WithOperation("executor.Evaluate")
	}
	if env == nil {
		env = NewMemoryEnvironment(nil)
	}

	result, err := node.Accept(&evaluation{ctx: ctx, env: env})
	if err != nil {
		e.logger.Debug("evaluation failed", exlog.Fields{
			"expression": ast.Render(node),
			"error":      err.Error(),
		})
		return 0, err
	}

	value := result.(int64)
	e.logger.Trace("evaluation completed", exlog.Fields{
		"expression": ast.Render(node),
		"value":      value,
	})
	return value, nil
}

// evaluation implements ast.Visitor for one Evaluate call
type evaluation struct {
	ctx context.Context
	env Environment
}

func (v *evaluation) VisitLiteral(n *ast.Literal) (interface{}, error) {
	return n.Value, nil
}

func (v *evaluation) VisitVariable(n *ast.Variable) (interface{}, error) {
	if err := v.ctx.Err(); err != nil {
		return nil, err
	}

	value, ok, err := v.env.Lookup(v.ctx, n.Name)
	if err != nil {
		return nil, exerr.Wrap(err, "variable lookup failed").
			WithOperation("executor.Lookup").
			WithDetail("name", n.Name)
	}
	if !ok {
		return nil, exerr.Newf("undefined variable %q", n.Name).
			WithCode(exerr.CodeUndefinedVariable).
			WithOperation("executor.Evaluate").
			WithDetail("name", n.Name)
	}
	return value, nil
}

func (v *evaluation) VisitBinaryOp(n *ast.BinaryOp) (interface{}, error) {
	left, err := v.operand(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := v.operand(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.Add:
		return left + right, nil
	case ast.Sub:
		return left - right, nil
	case ast.Mul:
		return left * right, nil
	case ast.Div:
		if right == 0 {
			return nil, exerr.New("division by zero").
				WithCode(exerr.CodeDivisionByZero).
				WithOperation("executor.Evaluate").
				WithDetail("expression", ast.Render(n))
		}
		return left / right, nil
	default:
		return nil, exerr.Newf("unknown operator %s", n.Op).
			WithCode(exerr.CodeInternal).
			WithOperation("executor.Evaluate")
	}
}

func (v *evaluation) VisitAssignment(n *ast.Assignment) (interface{}, error) {
	value, err := v.operand(n.Value)
	if err != nil {
		return nil, err
	}
	if err := v.ctx.Err(); err != nil {
		return nil, err
	}

	if err := v.env.Assign(v.ctx, n.Target, value); err != nil {
		return nil, exerr.Wrap(err, "variable assignment failed").
			WithOperation("executor.Assign").
			WithDetail("name", n.Target)
	}
	return value, nil
}

func (v *evaluation) operand(n ast.Node) (int64, error) {
	if n == nil {
		return 0, exerr.New("incomplete tree").
			WithCode(exerr.CodeInvalidInput).
			WithOperation("executor.Evaluate")
	}
	result, err := n.Accept(v)
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}
