// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors so callers and log output can
//              prioritize failures consistently.

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a minor error, typically caused by user input
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects the current operation only
	SeverityMedium

	// SeverityHigh indicates a serious error such as a host-boundary failure
	SeverityHigh

	// SeverityCritical indicates an internal error that should never occur
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

// Level returns the numeric level of the severity (0-3)
func (s Severity) Level() int {
	return int(s)
}
