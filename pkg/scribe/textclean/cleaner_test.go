package textclean

import (
	"strings"
	"testing"
)

func TestCleanWhitespace(t *testing.T) {
	c := NewCleaner(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapse spaces", "too   many    spaces", "too many spaces"},
		{"tabs and carriage returns", "a\tb\r\nc", "a b\nc"},
		{"blank line runs", "line one\n\n\n\nline two", "line one\nline two"},
		{"trim line edges", "  padded line  \n  another  ", "padded line\nanother"},
		{"empty input", "", ""},
		{"whitespace only", "   \n\t  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanExpandsAbbreviations(t *testing.T) {
	c := NewCleaner(DefaultAbbreviations())

	tests := []struct {
		input string
		want  string
	}{
		{"went to A&E last night", "went to Accident and Emergency last night"},
		{"limited ROM in the neck", "limited range of motion in the neck"},
		{"BP was normal", "blood pressure was normal"},
		{"lowercase bp reading", "lowercase blood pressure reading"},
		{"dx confirmed", "diagnosis confirmed"},
	}

	for _, tt := range tests {
		if got := c.Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanAbbreviationBoundaries(t *testing.T) {
	c := NewCleaner(DefaultAbbreviations())

	// Abbreviations inside larger words must not expand.
	got := c.Clean("the syntax of the report")
	if got != "the syntax of the report" {
		t.Errorf("expanded inside a word: %q", got)
	}
}

func TestCleanStripsMarkup(t *testing.T) {
	c := NewCleaner(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"html tags", "<p>Hello doctor</p><p>Hello patient</p>", "Hello doctor\nHello patient"},
		{"bold markers", "pain is **severe** today", "pain is severe today"},
		{"br separates lines", "first<br/>second", "first\nsecond"},
		{"angle bracket not a tag", "pain < before, better now", "pain < before, better now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanNormalizesPunctuation(t *testing.T) {
	c := NewCleaner(nil)

	tests := []struct {
		input string
		want  string
	}{
		{"pain started — last week", "pain started - last week"},
		{"she said “it hurts”", `she said "it hurts"`},
		{"hurts here .", "hurts here."},
		{"wait …", "wait..."},
	}

	for _, tt := range tests {
		if got := c.Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	c := NewCleaner(DefaultAbbreviations())

	inputs := []string{
		"Patient  presented to A&E with limited ROM  .",
		"<div>BP 120/80</div>\n\n\nfollow-up “tomorrow”",
		"plain sentence already clean",
	}

	for _, in := range inputs {
		once := c.Clean(in)
		twice := c.Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestCleanForDisplay(t *testing.T) {
	c := NewCleaner(nil)

	long := strings.Repeat("word ", 40)
	got := c.CleanForDisplay(long, 50)
	if len(got) > 53 {
		t.Errorf("truncated length %d exceeds limit: %q", len(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing truncation marker: %q", got)
	}
	if strings.Contains(strings.TrimSuffix(got, "..."), "wor ") {
		t.Errorf("word split mid-token: %q", got)
	}

	short := c.CleanForDisplay("short text", 50)
	if short != "short text" {
		t.Errorf("short text modified: %q", short)
	}
}
