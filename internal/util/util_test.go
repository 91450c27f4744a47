package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	// Transliteration runs only when the ASCII pass yields nothing; any
	// surviving ASCII (digits included) wins outright.
	cases := map[string]string{
		"Summer Cup 2026":  "summer-cup-2026",
		"  Meet -- Final ": "meet-final",
		"Кубок города":     "kubok-goroda",
		"Чемпионат (25 м)": "25",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyNeverEmpty(t *testing.T) {
	for _, in := range []string{"", "!!!", "---"} {
		got := Slugify(in)
		if got == "" {
			t.Errorf("Slugify(%q) returned an empty slug", in)
		}
		if !strings.HasPrefix(got, "event-") {
			t.Errorf("Slugify(%q) = %q, want timestamped fallback", in, got)
		}
	}
}

func TestHMACSHA256Hex(t *testing.T) {
	a := HMACSHA256Hex("secret", "export:1")
	b := HMACSHA256Hex("secret", "export:1")
	if a != b || len(a) != 64 {
		t.Errorf("unstable or malformed digest: %q vs %q", a, b)
	}
	if HMACSHA256Hex("other", "export:1") == a {
		t.Error("digest must depend on the secret")
	}
}
