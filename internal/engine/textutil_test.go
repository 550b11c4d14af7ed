package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanCaption(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags", "<font color=\"#fff\">hi</font> there", "hi there"},
		{"double escaped", "it&amp;#39;s fine", "it's fine"},
		{"newlines collapsed", "line one\nline   two", "line one line two"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCaption(tt.in); got != tt.want {
				t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHead(t *testing.T) {
	t.Run("short input unchanged", func(t *testing.T) {
		if got := Head("abc", 10); got != "abc" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("zero limit unchanged", func(t *testing.T) {
		if got := Head("abc", 0); got != "abc" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("rune safe", func(t *testing.T) {
		s := strings.Repeat("가", 30)
		got := Head(s, 10)
		if n := utf8.RuneCountInString(got); n != 10 {
			t.Errorf("rune count = %d, want 10", n)
		}
		if !utf8.ValidString(got) {
			t.Error("truncation produced invalid UTF-8")
		}
	})
}
