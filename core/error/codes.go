// File: codes.go
// Title: Error Code Definitions
// Description: Defines the standardized error codes used to classify failures
//              across the engine: compile-time, type, runtime, host-boundary,
//              and configuration errors.

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL"
	CodeNotFound Code = "NOT_FOUND"

	// Compile-time codes
	CodeLexError   Code = "LEX_ERROR"
	CodeParseError Code = "PARSE_ERROR"

	// Type system codes
	CodeTypeError Code = "TYPE_ERROR"

	// Runtime codes
	CodeScopeViolation Code = "SCOPE_VIOLATION"
	CodeRuntimeError   Code = "RUNTIME_ERROR"
	CodeUnknownBuiltin Code = "UNKNOWN_BUILTIN"
	CodeHostError      Code = "HOST_ERROR"

	// Configuration and validation
	CodeConfigError      Code = "CONFIG_ERROR"
	CodeValidationFailed Code = "VALIDATION_FAILED"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound,
		CodeLexError, CodeParseError, CodeTypeError,
		CodeScopeViolation, CodeRuntimeError, CodeUnknownBuiltin, CodeHostError,
		CodeConfigError, CodeValidationFailed:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexError, CodeParseError:
		return "compile"
	case CodeTypeError:
		return "type"
	case CodeScopeViolation, CodeRuntimeError, CodeUnknownBuiltin, CodeHostError:
		return "runtime"
	case CodeConfigError, CodeValidationFailed:
		return "configuration"
	default:
		return "generic"
	}
}

// GetSeverityFromCode returns the default severity associated with a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeLexError, CodeParseError, CodeTypeError, CodeValidationFailed:
		return SeverityLow
	case CodeScopeViolation, CodeRuntimeError, CodeUnknownBuiltin:
		return SeverityMedium
	case CodeHostError, CodeConfigError:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
