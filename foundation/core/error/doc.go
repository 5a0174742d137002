// Package error provides the structured error type shared by all paramval packages.
//
// Package: error
// Title: paramval Error Handling
// Description: Structured errors with codes, severities, details and stack traces.
//              Parse failures, unsupported DAG operators and cancellation failures
//              are reported through this type; arithmetic degeneracies never are,
//              they are first-class sentinel values of the numeric types.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-09-14 v0.2.0: Reduced to the codes used by the value layer
//
// Usage:
//
//	err := error.New("malformed fraction literal").
//		WithCode(error.CodeInvalidLiteral).
//		WithDetail("input", "3//4")
//
//	if error.HasCode(err, error.CodeInvalidLiteral) {
//		// report to the caller
//	}
package error
