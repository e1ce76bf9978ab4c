// ============================================================================
// exprkit - Expression Toolkit
// ============================================================================
//
// Package:     repl
// Description: Message types for async evaluation in the interactive
//              evaluator
// Author:      msto63
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package repl

import "github.com/msto63/exprkit/internal/service"

// Entry is one evaluated line shown in the transcript
type Entry struct {
	Input    string
	Rendered string
	Dump     string
	Value    int64
	Assigned string
	Err      error
}

// evaluatedMsg is sent when an evaluation finishes
type evaluatedMsg struct {
	input  string
	result *service.EvaluateResult
	err    error
}

// variablesMsg carries the variable count for the status bar
type variablesMsg struct {
	count int
	err   error
}
