// File: error_test.go
// Title: Core Error Tests
// Description: Covers the builder chain, wrapping semantics, code lookup
//              helpers, and severity derivation.

package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAndBuilders(t *testing.T) {
	err := New("something broke").
		WithCode(CodeRuntimeError).
		WithOperation("interp.Run").
		WithDetail("line", 12)

	if err.Error() != "something broke" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != CodeRuntimeError {
		t.Errorf("Code() = %s", err.Code())
	}
	if err.Operation() != "interp.Run" {
		t.Errorf("Operation() = %q", err.Operation())
	}
	if err.Details()["line"] != 12 {
		t.Errorf("Details() = %v", err.Details())
	}
	if err.Timestamp().IsZero() {
		t.Error("timestamp not set")
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, "write failed").WithCode(CodeHostError)

	if !strings.Contains(err.Error(), "write failed") || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if Wrap(nil, "nothing") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

// Wrapping one of our own errors keeps its code and details
func TestWrapPreservesCode(t *testing.T) {
	inner := New("bad token").WithCode(CodeLexError).WithDetail("line", 3)
	outer := Wrap(inner, "compile failed")

	if outer.Code() != CodeLexError {
		t.Errorf("Code() = %s, want LEX_ERROR", outer.Code())
	}
	if outer.Details()["line"] != 3 {
		t.Errorf("detail lost: %v", outer.Details())
	}
}

func TestHasCodeAndGetCode(t *testing.T) {
	err := Newf("cap %d exceeded", 9).WithCode(CodeValidationFailed)
	wrapped := fmt.Errorf("outer: %w", err)

	if !HasCode(wrapped, CodeValidationFailed) {
		t.Error("HasCode failed through wrapping")
	}
	if HasCode(wrapped, CodeTypeError) {
		t.Error("HasCode false positive")
	}
	if GetCode(wrapped) != CodeValidationFailed {
		t.Errorf("GetCode = %s", GetCode(wrapped))
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("GetCode on foreign error should be UNKNOWN")
	}
}

func TestSeverityFromCode(t *testing.T) {
	if New("x").WithCode(CodeInternal).Severity() == SeverityMedium {
		t.Error("internal errors should escalate severity")
	}
	lowered := New("x").WithSeverity(SeverityLow)
	if lowered.Severity() != SeverityLow {
		t.Errorf("Severity() = %s", lowered.Severity())
	}
}

func TestCodeValidity(t *testing.T) {
	for _, c := range []Code{CodeLexError, CodeParseError, CodeScopeViolation, CodeHostError} {
		if !c.IsValid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Code("MADE_UP").IsValid() {
		t.Error("unknown code reported valid")
	}
}
