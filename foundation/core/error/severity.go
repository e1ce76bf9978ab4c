// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification used to pick the log level of an error.
// Author: msto63
// Version: v0.1.0
// Created: 2026-09-28
// Modified: 2026-09-28

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates bad user input; the system is unaffected
	SeverityLow Severity = iota

	// SeverityMedium indicates a failure with a workaround
	SeverityMedium

	// SeverityHigh indicates a failing dependency such as the store
	SeverityHigh

	// SeverityCritical indicates the system cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeServiceUnavailable:
		return SeverityCritical

	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeInvalidInput, CodeNotFound,
		CodeInvalidCharacter, CodeSyntax, CodeUnexpectedFactor, CodeInputTooLong,
		CodeUndefinedVariable, CodeDivisionByZero:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
