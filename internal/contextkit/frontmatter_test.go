package contextkit

import (
	"strings"
	"testing"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "---\nname: foo\n---\nbody", "foo"},
		{"double quoted", "---\nname: \"Foo Skill\"\n---\nbody", "Foo Skill"},
		{"single quoted", "---\nname: 'Foo Skill'\n---\nbody", "Foo Skill"},
		{"case insensitive key", "---\nName: Foo\n---\n", "Foo"},
		{"upper key", "---\nNAME: Foo\n---\n", "Foo"},
		{"indented key", "---\n  name: indented\n---\n", "indented"},
		{"first name wins", "---\nname: first\nname: second\n---\n", "first"},
		{"other keys ignored", "---\ndescription: d\nname: foo\n---\n", "foo"},
		{"no frontmatter", "just a document", ""},
		{"delimiter not first line", "\n---\nname: foo\n---\n", ""},
		{"unclosed block", "---\nname: foo\nno closing delimiter", ""},
		{"empty block", "---\n---\nbody", ""},
		{"missing name key", "---\ndescription: only\n---\n", ""},
		{"empty file", "", ""},
		{"delimiter with trailing space", "---  \nname: foo\n--- \n", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.text); got != tt.want {
				t.Errorf("ExtractName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractNameScanWindow(t *testing.T) {
	// Closing delimiter on line 2001 falls outside the window.
	far := "---\nname: foo\n" + strings.Repeat("filler\n", 2000) + "---\n"
	if got := ExtractName(far); got != "" {
		t.Errorf("closing delimiter past the scan window must be ignored, got %q", got)
	}

	// Inside the window it still works.
	near := "---\nname: foo\n" + strings.Repeat("filler\n", 100) + "---\n"
	if got := ExtractName(near); got != "foo" {
		t.Errorf("expected %q, got %q", "foo", got)
	}
}

func TestParseMetadata(t *testing.T) {
	md := ParseMetadata("---\nname: foo\ndescription: does things\n---\nbody")
	if md.Name != "foo" {
		t.Errorf("expected name foo, got %q", md.Name)
	}
	if md.Description != "does things" {
		t.Errorf("expected description, got %q", md.Description)
	}
}

func TestParseMetadataMalformedYAMLFallsBackToLineScan(t *testing.T) {
	text := "---\nname: ok\nbroken: [unclosed\n---\nbody"
	md := ParseMetadata(text)
	if md.Name != "ok" {
		t.Errorf("line-scan fallback failed, got %q", md.Name)
	}
}
