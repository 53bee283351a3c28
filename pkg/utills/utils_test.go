package utils

import "testing"

func TestHasLetterAndNumber(t *testing.T) {
	cases := []struct {
		in             string
		letter, number bool
	}{
		{"", false, false},
		{"12345", false, true},
		{"abcdef", true, false},
		{"walkies42", true, true},
		{"ñandú7", true, true},
	}
	for _, tc := range cases {
		if got := HasLetter(tc.in); got != tc.letter {
			t.Errorf("HasLetter(%q) = %v", tc.in, got)
		}
		if got := HasNumber(tc.in); got != tc.number {
			t.Errorf("HasNumber(%q) = %v", tc.in, got)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("hello", 10); got != "hello" {
		t.Fatalf("short: %q", got)
	}
	if got := Preview("hello world", 5); got != "hello…" {
		t.Fatalf("long: %q", got)
	}
	if got := Preview("héllo", 2); got != "hé…" {
		t.Fatalf("multibyte: %q", got)
	}
	if got := Preview("abc", 0); got != "" {
		t.Fatalf("zero: %q", got)
	}
}
