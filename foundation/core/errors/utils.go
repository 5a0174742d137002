// File: utils.go
// Title: Shared Error Handling Utilities
// Description: Fluent ErrorBuilder, standard error constructors and the
//              convenience constructors used by the value-layer packages.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-09-14
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of shared error utilities
// - 2025-07-26 v0.1.1: Enhanced OutOfRange function with "validation failed:" prefix
// - 2026-09-14 v0.2.0: Convenience constructors for fraction, poly, dag and cancel

package errors

import (
	"fmt"

	pverror "github.com/msto63/paramval/foundation/core/error"
)

// ErrorBuilder provides a fluent interface for building standardized errors
type ErrorBuilder struct {
	module    string
	operation string
	message   string
	cause     error
	details   map[string]interface{}
	severity  pverror.Severity
	code      string
}

// NewErrorBuilder creates a new error builder for the specified module
func NewErrorBuilder(module string) *ErrorBuilder {
	return &ErrorBuilder{
		module:   module,
		details:  make(map[string]interface{}),
		severity: pverror.SeverityMedium,
	}
}

// Operation sets the operation name for the error
func (eb *ErrorBuilder) Operation(operation string) *ErrorBuilder {
	eb.operation = operation
	return eb
}

// Message sets the error message
func (eb *ErrorBuilder) Message(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// Messagef sets the error message with formatting
func (eb *ErrorBuilder) Messagef(format string, args ...interface{}) *ErrorBuilder {
	eb.message = fmt.Sprintf(format, args...)
	return eb
}

// Cause sets the underlying cause of the error
func (eb *ErrorBuilder) Cause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// Detail adds a detail key-value pair to the error
func (eb *ErrorBuilder) Detail(key string, value interface{}) *ErrorBuilder {
	eb.details[key] = value
	return eb
}

// Severity sets the error severity
func (eb *ErrorBuilder) Severity(severity pverror.Severity) *ErrorBuilder {
	eb.severity = severity
	return eb
}

// Code sets the error code
func (eb *ErrorBuilder) Code(code string) *ErrorBuilder {
	eb.code = code
	return eb
}

// Build creates the final error
func (eb *ErrorBuilder) Build() *pverror.Error {
	if eb.code == "" {
		eb.code = getModuleErrorCode(eb.module, eb.operation)
	}

	if eb.message == "" {
		if eb.operation != "" {
			eb.message = fmt.Sprintf("%s.%s failed", eb.module, eb.operation)
		} else {
			eb.message = fmt.Sprintf("%s operation failed", eb.module)
		}
	}

	eb.details["module"] = eb.module
	if eb.operation != "" {
		eb.details["operation"] = eb.operation
	}

	var err *pverror.Error
	if eb.cause != nil {
		err = pverror.Wrap(eb.cause, eb.message)
	} else {
		err = pverror.New(eb.message)
	}

	return err.
		WithCode(pverror.Code(eb.code)).
		WithDetails(eb.details).
		WithOperation(eb.operation).
		WithSeverity(eb.severity)
}

// =============================================================================
// STANDARD ERROR CONSTRUCTORS
// =============================================================================

// InvalidInput creates a standardized invalid input error
func InvalidInput(module, operation string, input interface{}, expected string) *pverror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message(fmt.Sprintf("invalid input for %s.%s", module, operation)).
		Code(CodeInvalidInput).
		Detail("input", input).
		Detail("expected", expected).
		Severity(pverror.SeverityLow).
		Build()
}

// InvalidFormat creates a standardized literal/format error
func InvalidFormat(module string, input interface{}, expectedFormat string) *pverror.Error {
	return NewErrorBuilder(module).
		Operation("parse").
		Message(fmt.Sprintf("invalid %s literal %q", module, fmt.Sprint(input))).
		Code(getFormatErrorCode(module)).
		Detail("input", input).
		Detail("expected_format", expectedFormat).
		Severity(pverror.SeverityLow).
		Build()
}

// OperationFailed creates a standardized operation failure error
func OperationFailed(module, operation string, cause error) *pverror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message(fmt.Sprintf("%s.%s operation failed", module, operation)).
		Cause(cause).
		Code(getModuleErrorCode(module, operation)).
		Severity(pverror.SeverityHigh).
		Build()
}

// OutOfRange creates a standardized out of range error
func OutOfRange(module, operation string, value, min, max interface{}) *pverror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message(fmt.Sprintf("value out of range in %s.%s", module, operation)).
		Code(CodeOutOfRange).
		Detail("value", value).
		Detail("min", min).
		Detail("max", max).
		Severity(pverror.SeverityMedium).
		Build()
}

// NotFound creates a standardized not found error
func NotFound(module, operation string, identifier interface{}) *pverror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message(fmt.Sprintf("item not found in %s.%s", module, operation)).
		Code(CodeNotFound).
		Detail("identifier", identifier).
		Severity(pverror.SeverityLow).
		Build()
}

// HasModuleCode reports whether err carries the given module code
func HasModuleCode(err error, code string) bool {
	return pverror.HasCode(err, pverror.Code(code))
}

// ExtractModule extracts the module name from an error
func ExtractModule(err error) string {
	if e, ok := err.(*pverror.Error); ok {
		if module, ok := e.Details()["module"].(string); ok {
			return module
		}
	}
	return ""
}

// =============================================================================
// MODULE CONVENIENCE CONSTRUCTORS
// =============================================================================

// FractionInvalidLiteral reports a malformed fraction literal
func FractionInvalidLiteral(input, expected string) *pverror.Error {
	return InvalidFormat(ModuleFraction, input, expected)
}

// PolyInvalidLiteral reports a malformed polynomial literal at a byte offset
func PolyInvalidLiteral(input string, pos int, reason string) *pverror.Error {
	return NewErrorBuilder(ModulePoly).
		Operation("parse").
		Messagef("invalid polynomial literal %q at offset %d: %s", input, pos, reason).
		Code(CodePolyInvalidLiteral).
		Detail("input", input).
		Detail("offset", pos).
		Severity(pverror.SeverityLow).
		Build()
}

// PolyInexactDivision reports a division that leaves a remainder
func PolyInexactDivision(dividend, divisor string) *pverror.Error {
	return NewErrorBuilder(ModulePoly).
		Operation("divide_exact").
		Message("polynomial division is not exact").
		Code(CodePolyInexactDivision).
		Detail("dividend", dividend).
		Detail("divisor", divisor).
		Severity(pverror.SeverityMedium).
		Build()
}

// RatFuncInvalidLiteral reports a malformed rational function literal
func RatFuncInvalidLiteral(input string, cause error) *pverror.Error {
	b := NewErrorBuilder(ModuleRatFunc).
		Operation("parse").
		Messagef("invalid rational function literal %q", input).
		Code(CodeRatFuncInvalidLiteral).
		Detail("input", input).
		Severity(pverror.SeverityLow)
	if cause != nil {
		b.Cause(cause)
	}
	return b.Build()
}

// CancelFailed reports a failure of the cancellation backend
func CancelFailed(backend string, cause error) *pverror.Error {
	return NewErrorBuilder(ModuleCancel).
		Operation("cancel").
		Messagef("cancellation backend %s failed", backend).
		Cause(cause).
		Code(CodeCancelFailed).
		Detail("backend", backend).
		Severity(pverror.SeverityHigh).
		Build()
}

// DagUnsupportedOperator reports an operator the DAG cannot apply
func DagUnsupportedOperator(op string) *pverror.Error {
	return NewErrorBuilder(ModuleDag).
		Operation("apply").
		Messagef("unsupported operator %q", op).
		Code(CodeDagUnsupportedOperator).
		Detail("operator", op).
		Severity(pverror.SeverityLow).
		Build()
}

// DagArity reports a wrong number of operands for an operator
func DagArity(op string, got, want int) *pverror.Error {
	return NewErrorBuilder(ModuleDag).
		Operation("apply").
		Messagef("operator %s takes %d operands, got %d", op, want, got).
		Code(CodeInvalidInput).
		Detail("operator", op).
		Detail("got", got).
		Detail("want", want).
		Severity(pverror.SeverityLow).
		Build()
}

// DagInvalidDocument reports a malformed serialized DAG
func DagInvalidDocument(reason string, cause error) *pverror.Error {
	b := NewErrorBuilder(ModuleDag).
		Operation("load").
		Messagef("invalid dag document: %s", reason).
		Code(CodeDagInvalidDocument).
		Severity(pverror.SeverityLow)
	if cause != nil {
		b.Cause(cause)
	}
	return b.Build()
}
