// Package error provides coded, contextual errors for exprkit.
//
// Package: error
// Title: exprkit Error Handling
// Description: Structured errors carrying a code, a severity, free-form details,
//              the failing operation and a captured stack trace. Every layer above
//              the expression core reports failures through this type so that the
//              CLI, the HTTP API and the gRPC service can map them consistently.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-28
// Modified: 2026-10-12
//
// Change History:
// - 2026-09-28 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-12 v0.2.0: Expression codes, transport status mapping
//
// Usage:
//
//	import exerr "github.com/msto63/exprkit/foundation/core/error"
//
//	err := exerr.Wrap(cause, "parse failed").
//		WithCode(exerr.CodeSyntax).
//		WithDetail("position", 4).
//		WithOperation("engine.Parse")
//
//	if exerr.HasCode(err, exerr.CodeSyntax) {
//		// report a diagnostic to the user
//	}
package error
