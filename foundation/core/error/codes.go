// File: codes.go
// Title: Error Code Definitions
// Description: Standardized error codes used across exprkit. Codes classify
//              failures for logging, HTTP responses and gRPC status mapping.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-28
// Modified: 2026-10-12
//
// Change History:
// - 2026-09-28 v0.1.0: Initial implementation with core error codes
// - 2026-10-12 v0.2.0: Expression language codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Storage
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Expression language
	CodeInvalidCharacter  Code = "EXPR_INVALID_CHARACTER"
	CodeSyntax            Code = "EXPR_SYNTAX"
	CodeUnexpectedFactor  Code = "EXPR_UNEXPECTED_FACTOR"
	CodeInputTooLong      Code = "EXPR_INPUT_TOO_LONG"
	CodeUndefinedVariable Code = "EXPR_UNDEFINED_VARIABLE"
	CodeDivisionByZero    Code = "EXPR_DIVISION_BY_ZERO"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeDatabaseError, CodeServiceUnavailable, CodeNetworkError,
		CodeInvalidCharacter, CodeSyntax, CodeUnexpectedFactor, CodeInputTooLong,
		CodeUndefinedVariable, CodeDivisionByZero,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeInvalidCharacter, CodeSyntax, CodeUnexpectedFactor, CodeInputTooLong:
		return "parse"
	case CodeUndefinedVariable, CodeDivisionByZero:
		return "evaluation"
	case CodeDatabaseError:
		return "storage"
	case CodeServiceUnavailable, CodeNetworkError, CodeTimeout:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// IsParseError reports whether the code belongs to the scanner or parser
func (c Code) IsParseError() bool {
	return c.Category() == "parse"
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeUndefinedVariable:
		return 404
	case CodeInvalidInput, CodeInvalidCharacter, CodeSyntax, CodeUnexpectedFactor:
		return 400
	case CodeInputTooLong:
		return 413
	case CodeDivisionByZero:
		return 422
	case CodeTimeout:
		return 408
	case CodeServiceUnavailable, CodeDatabaseError:
		return 503
	default:
		return 500
	}
}
