// File: codes.go
// Title: Error Code Definitions
// Description: Standardized error codes for the value layer and the tools built
//              on top of it.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-09-14 v0.2.0: Replaced platform codes with value-layer codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Literal parsing
	CodeInvalidLiteral Code = "INVALID_LITERAL"
	CodeInvalidFormat  Code = "INVALID_FORMAT"

	// Arithmetic and expression graph
	CodeUnsupportedOperator Code = "UNSUPPORTED_OPERATOR"
	CodeInvalidOperation    Code = "INVALID_OPERATION"
	CodeValueOutOfRange     Code = "VALUE_OUT_OF_RANGE"

	// Cancellation backends
	CodeCancellationFailed   Code = "CANCELLATION_FAILED"
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"

	// Storage
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeDataCorruption Code = "DATA_CORRUPTION"

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
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput,
		CodeInvalidLiteral, CodeInvalidFormat,
		CodeUnsupportedOperator, CodeInvalidOperation, CodeValueOutOfRange,
		CodeCancellationFailed, CodeExternalServiceError,
		CodeDatabaseError, CodeDataCorruption,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeInvalidLiteral, CodeInvalidFormat, CodeInvalidInput, CodeValueOutOfRange:
		return "validation"
	case CodeUnsupportedOperator, CodeInvalidOperation:
		return "arithmetic"
	case CodeCancellationFailed, CodeExternalServiceError:
		return "cancellation"
	case CodeDatabaseError, CodeDataCorruption:
		return "storage"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}
