// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to map errors onto log levels.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-09-14 v0.2.0: Severity mapping for value-layer codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a rejected input the caller can correct
	SeverityLow Severity = iota

	// SeverityMedium is a failed operation with no lasting effect
	SeverityMedium

	// SeverityHigh is a failure of a backend or the store
	SeverityHigh

	// SeverityCritical means persisted data can no longer be trusted
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
	case CodeDataCorruption:
		return SeverityCritical
	case CodeCancellationFailed, CodeExternalServiceError, CodeDatabaseError, CodeInternal:
		return SeverityHigh
	case CodeInvalidLiteral, CodeInvalidFormat, CodeInvalidInput, CodeValueOutOfRange,
		CodeUnsupportedOperator, CodeNotFound:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
