// File: level.go
// Title: Log Level Definitions
// Description: Defines the severity levels used by the structured logger and
//              their ordering, parsing, and string representations.

package log

import "strings"

// Level represents the severity of a log entry
type Level int

const (
	// LevelDebug is for verbose diagnostic output
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages
	LevelInfo

	// LevelWarn is for recoverable or suspicious conditions
	LevelWarn

	// LevelError is for failures that need attention
	LevelError

	// LevelFatal is for unrecoverable failures; logging at this level exits
	LevelFatal
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ShouldLog returns true if a message at level l passes the configured minimum
func (l Level) ShouldLog(minimum Level) bool {
	return l >= minimum
}

// ParseLevel converts a string into a Level, defaulting to Info
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// DefaultLevel returns the level used when none is configured
func DefaultLevel() Level {
	return LevelInfo
}
