// ============================================================================
// exprkit - Expression Toolkit
// ============================================================================
//
// Package:     version
// Description: Central version information
// Author:      msto63
// Created:     2026-10-05
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version is the release version of exprkit
const Version = "0.3.0"

// APIVersion is the version segment of the gRPC and HTTP APIs
const APIVersion = "v1"

// Commit and BuildDate are set with -ldflags at build time
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// String returns a one-line description of the build
func String() string {
	return fmt.Sprintf("exprkit %s (api %s, commit %s, built %s, %s)",
		Version, APIVersion, Commit, BuildDate, runtime.Version())
}
