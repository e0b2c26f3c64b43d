// File: stringx_test.go
// Title: String Utility Tests

package stringx

import (
	"reflect"
	"testing"
)

func TestBlankChecks(t *testing.T) {
	tests := []struct {
		s     string
		blank bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"x", false},
		{"  x  ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.s); got != tt.blank {
			t.Errorf("IsBlank(%q) = %v", tt.s, got)
		}
		if got := IsNotBlank(tt.s); got == tt.blank {
			t.Errorf("IsNotBlank(%q) = %v", tt.s, got)
		}
	}
	if !IsEmpty("") || IsEmpty(" ") {
		t.Error("IsEmpty broken")
	}
}

func TestIgnoreCase(t *testing.T) {
	if !ContainsIgnoreCase("Hello World", "WORLD") {
		t.Error("ContainsIgnoreCase failed")
	}
	if ContainsIgnoreCase("abc", "xyz") {
		t.Error("ContainsIgnoreCase false positive")
	}
	if !EqualsIgnoreCase("VarSet", "varset") {
		t.Error("EqualsIgnoreCase failed")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s        string
		maxLen   int
		ellipsis string
		want     string
	}{
		{"hello", 10, "...", "hello"},
		{"hello world", 8, "...", "hello..."},
		{"héllo wörld", 8, "…", "héllo w…"},
		{"abc", 0, "...", ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen, tt.ellipsis); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := FirstNonBlank("", "  ", "found", "later"); got != "found" {
		t.Errorf("FirstNonBlank = %q", got)
	}
	if got := FirstNonBlank("", "  "); got != "" {
		t.Errorf("FirstNonBlank all blank = %q", got)
	}
	if got := FromBlankDefault("  ", "fallback"); got != "fallback" {
		t.Errorf("FromBlankDefault = %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\nb\nc")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %v, want %v", got, want)
	}
	if SplitLines("") != nil {
		t.Error("SplitLines(\"\") should be nil")
	}
}
