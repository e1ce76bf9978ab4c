package cmd

import (
	"strings"
	"testing"

	"github.com/msto63/exprkit/foundation/expr/parser"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantValue int64
		wantErr   bool
	}{
		{"x=5", "x", 5, false},
		{" y = -12 ", "y", -12, false},
		{"big=9223372036854775807", "big", 9223372036854775807, false},
		{"x", "", 0, true},
		{"=5", "", 0, true},
		{"x=abc", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := parseAssignment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignment(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName || value != tt.wantValue {
				t.Errorf("parseAssignment(%q) = %s, %d", tt.in, name, value)
			}
		})
	}
}

func TestFormatTree(t *testing.T) {
	node, err := parser.Parse("x = 1 + y")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"render", "x = (1 + y)"},
		{"dump", "Assignment("},
		{"json", `"target": "x"`},
		{"yaml", "target: x"},
		{"tree", "Assignment"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := formatTree(node, tt.format)
			if err != nil {
				t.Fatalf("formatTree() error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("formatTree(%s) = %q, want it to contain %q", tt.format, out, tt.want)
			}
		})
	}

	if _, err := formatTree(node, "xml"); err == nil {
		t.Error("formatTree() with an unknown format should fail")
	}
}

func TestParseModeFlag(t *testing.T) {
	appConfig = nil
	if parseMode(false) != parser.ModeStrict {
		t.Error("default mode should be strict")
	}
	if parseMode(true) != parser.ModeLegacy {
		t.Error("--legacy should select legacy mode")
	}
}
