// Package errors provides the standard way for paramval packages to build
// structured errors.
//
// Package: errors
// Title: Standard Error Construction for paramval
// Description: Module identifiers, module error codes, a fluent ErrorBuilder and
//              convenience constructors for the failures the value layer can
//              report: malformed literals, unsupported DAG operators, failed
//              cancellations and out-of-range indices.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation for cross-module error standardization
// - 2026-09-14 v0.2.0: Module set replaced by the value-layer packages
//
// Usage:
//
//	return nil, errors.FractionInvalidLiteral(s, "fraction literal such as 3/4 or -1.25")
//
//	err := errors.NewErrorBuilder(errors.ModuleDag).
//		Operation("apply").
//		Message("operand handle out of range").
//		Code(errors.CodeInvalidInput).
//		Detail("handle", h).
//		Build()
package errors
