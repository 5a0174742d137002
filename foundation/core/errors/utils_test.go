// File: utils_test.go
// Title: Shared Error Handling Utilities Tests
// Description: Tests for the builder and the module convenience constructors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-09-14

package errors

import (
	"errors"
	"strings"
	"testing"

	pverror "github.com/msto63/paramval/foundation/core/error"
)

func TestErrorBuilder(t *testing.T) {
	t.Run("basic error creation", func(t *testing.T) {
		err := NewErrorBuilder("testmodule").
			Operation("test_op").
			Message("test error").
			Detail("key", "value").
			Severity(pverror.SeverityHigh).
			Build()

		details := err.Details()
		if details["module"] != "testmodule" {
			t.Errorf("Expected module 'testmodule', got %v", details["module"])
		}
		if details["operation"] != "test_op" {
			t.Errorf("Expected operation 'test_op', got %v", details["operation"])
		}
		if details["key"] != "value" {
			t.Errorf("Expected detail key 'value', got %v", details["key"])
		}
		if err.Operation() != "test_op" {
			t.Errorf("Operation() = %v, want test_op", err.Operation())
		}
		if err.Severity() != pverror.SeverityHigh {
			t.Errorf("Severity() = %v, want high", err.Severity())
		}
	})

	t.Run("error with cause", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewErrorBuilder("testmodule").
			Operation("test_op").
			Cause(cause).
			Build()

		if !errors.Is(err, cause) {
			t.Error("Expected error to wrap the cause")
		}
	})

	t.Run("auto-generated message and code", func(t *testing.T) {
		err := NewErrorBuilder(ModuleFraction).
			Operation("parse").
			Build()

		if err.Error() != "fraction.parse failed" {
			t.Errorf("Error() = %q, want %q", err.Error(), "fraction.parse failed")
		}
		if err.Code() != CodeFractionInvalidLiteral {
			t.Errorf("Code() = %v, want %v", err.Code(), CodeFractionInvalidLiteral)
		}
	})
}

func TestModuleCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *pverror.Error
		code string
	}{
		{"fraction literal", FractionInvalidLiteral("3//4", "a/b"), CodeFractionInvalidLiteral},
		{"poly literal", PolyInvalidLiteral("x^", 2, "missing exponent"), CodePolyInvalidLiteral},
		{"poly division", PolyInexactDivision("x+1", "x"), CodePolyInexactDivision},
		{"ratfunc literal", RatFuncInvalidLiteral("x/", nil), CodeRatFuncInvalidLiteral},
		{"cancel", CancelFailed("native", errors.New("boom")), CodeCancelFailed},
		{"dag operator", DagUnsupportedOperator("pow"), CodeDagUnsupportedOperator},
		{"dag arity", DagArity("add", 1, 2), CodeInvalidInput},
		{"dag document", DagInvalidDocument("missing dag", nil), CodeDagInvalidDocument},
		{"out of range", OutOfRange(ModuleParam, "get", 5, 0, 2), CodeOutOfRange},
		{"not found", NotFound(ModuleStore, "load", "abc"), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !HasModuleCode(tt.err, tt.code) {
				t.Errorf("code = %v, want %v", tt.err.Code(), tt.code)
			}
			if ExtractModule(tt.err) == "" {
				t.Error("module detail missing")
			}
		})
	}
}

func TestPolyInvalidLiteralMessage(t *testing.T) {
	err := PolyInvalidLiteral("2*x^", 4, "expected exponent")
	if !strings.Contains(err.Error(), "offset 4") {
		t.Errorf("Error() = %q, want offset in message", err.Error())
	}
	if err.Details()["offset"] != 4 {
		t.Errorf("offset = %v, want 4", err.Details()["offset"])
	}
}

func TestCancelFailedWrapsCause(t *testing.T) {
	cause := errors.New("backend gone")
	err := CancelFailed("external", cause)
	if !errors.Is(err, cause) {
		t.Error("CancelFailed should wrap its cause")
	}
	if err.Severity() != pverror.SeverityHigh {
		t.Errorf("Severity() = %v, want high", err.Severity())
	}
}

func TestOperationFailed(t *testing.T) {
	err := OperationFailed(ModuleStore, "save", errors.New("locked"))
	if err.Code() != CodeStoreOperationFailed {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeStoreOperationFailed)
	}
	if !strings.HasPrefix(err.Error(), "store.save operation failed") {
		t.Errorf("Error() = %q", err.Error())
	}
}
