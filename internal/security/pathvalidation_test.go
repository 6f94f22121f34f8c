package security

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathComponent(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantError bool
	}{
		{"simple prefix", "config0", false},
		{"dashes and dots", "run-2.b", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"nul", "a\x00b", true},
		{"leading space", " config0", true},
		{"trailing tab", "config0\t", true},
		{"too long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathComponent(tt.in)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathComponent(%q) error = %v, wantError %v", tt.in, err, tt.wantError)
			}
		})
	}
}

func TestJoinWithin(t *testing.T) {
	root := filepath.Join("photos")

	tests := []struct {
		name      string
		rel       string
		want      string
		wantError bool
	}{
		{"nested file", "config0/config0_5_7_north_left.png", filepath.Join("photos", "config0", "config0_5_7_north_left.png"), false},
		{"dot segments that stay inside", "config0/../config1/x.png", filepath.Join("photos", "config1", "x.png"), false},
		{"traversal", "../etc/passwd", "", true},
		{"traversal to root", "..", "", true},
		{"absolute", "/etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinWithin(root, tt.rel)
			if (err != nil) != tt.wantError {
				t.Fatalf("JoinWithin(%q) error = %v, wantError %v", tt.rel, err, tt.wantError)
			}
			if got != tt.want {
				t.Errorf("JoinWithin(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}
