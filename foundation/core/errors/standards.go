// File: standards.go
// Title: Error Standards for paramval
// Description: Module identifiers and module error codes shared by all packages.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation for error standardization
// - 2026-09-14 v0.2.0: Codes for fraction, poly, ratfunc, cancel, dag, store

package errors

import (
	"strings"
)

// Module identifiers for error categorization
const (
	ModuleParam    = "param"
	ModuleFraction = "fraction"
	ModulePoly     = "poly"
	ModuleRatFunc  = "ratfunc"
	ModuleCancel   = "cancel"
	ModuleDag      = "dag"
	ModuleEngine   = "engine"
	ModuleStore    = "store"
)

// Common error codes
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeNotFound        = "NOT_FOUND"
	CodeOperationFailed = "OPERATION_FAILED"
)

// Module error codes
const (
	CodeFractionInvalidLiteral = "FRACTION_INVALID_LITERAL"
	CodePolyInvalidLiteral     = "POLY_INVALID_LITERAL"
	CodePolyInexactDivision    = "POLY_INEXACT_DIVISION"
	CodeRatFuncInvalidLiteral  = "RATFUNC_INVALID_LITERAL"
	CodeCancelFailed           = "CANCEL_FAILED"
	CodeDagUnsupportedOperator = "DAG_UNSUPPORTED_OPERATOR"
	CodeDagInvalidDocument     = "DAG_INVALID_DOCUMENT"
	CodeStoreOperationFailed   = "STORE_OPERATION_FAILED"
)

// getModuleErrorCode returns the default code for a module operation
func getModuleErrorCode(module, operation string) string {
	switch module {
	case ModuleFraction:
		if strings.Contains(operation, "parse") {
			return CodeFractionInvalidLiteral
		}
	case ModulePoly:
		if strings.Contains(operation, "parse") {
			return CodePolyInvalidLiteral
		}
		if strings.Contains(operation, "div") {
			return CodePolyInexactDivision
		}
	case ModuleRatFunc:
		if strings.Contains(operation, "parse") {
			return CodeRatFuncInvalidLiteral
		}
	case ModuleCancel:
		return CodeCancelFailed
	case ModuleDag:
		if strings.Contains(operation, "apply") {
			return CodeDagUnsupportedOperator
		}
		if strings.Contains(operation, "load") {
			return CodeDagInvalidDocument
		}
	case ModuleStore:
		return CodeStoreOperationFailed
	}
	return CodeOperationFailed
}

// getFormatErrorCode returns the literal code of a module
func getFormatErrorCode(module string) string {
	switch module {
	case ModuleFraction:
		return CodeFractionInvalidLiteral
	case ModulePoly:
		return CodePolyInvalidLiteral
	case ModuleRatFunc:
		return CodeRatFuncInvalidLiteral
	case ModuleDag:
		return CodeDagInvalidDocument
	default:
		return CodeInvalidFormat
	}
}
