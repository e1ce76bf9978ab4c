// Package executor evaluates expression syntax trees.
//
// Package: executor
// Title: Expression Evaluator
// Description: Tree-walking evaluator over int64 values and the Environment
//              abstraction that holds variable bindings.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-03
// Modified: 2026-10-03
//
// Arithmetic follows Go int64 semantics: results wrap on overflow and
// division truncates toward zero. Division by zero and references to unbound
// variables fail with EXPR_DIVISION_BY_ZERO and EXPR_UNDEFINED_VARIABLE.
// An assignment stores its value in the environment and evaluates to it.
package executor
