package utils

import (
	"testing"
	"time"
)

func TestFormatYen(t *testing.T) {
	cases := map[int64]string{
		0:       "¥0",
		980:     "¥980",
		12300:   "¥12,300",
		1234567: "¥1,234,567",
		-4500:   "-¥4,500",
	}
	for in, want := range cases {
		if got := FormatYen(in); got != want {
			t.Fatalf("FormatYen(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, ok := ParseID("１２"); !ok || id != 12 {
		t.Fatalf("ParseID full-width = %d, %v", id, ok)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, ok := ParseID(bad); ok {
			t.Fatalf("ParseID(%q) should fail", bad)
		}
	}
}

func TestFormatDisplay(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2026, 10, 20, 1, 5, 0, 0, time.UTC)
	if got := FormatDisplay(ts, jst); got != "2026/10/20 10:05" {
		t.Fatalf("FormatDisplay = %q", got)
	}
	if FormatDisplay(time.Time{}, jst) != "" {
		t.Fatalf("zero time should format empty")
	}
}

func TestNormalizeInput(t *testing.T) {
	cases := map[string]string{
		"  ２０２６－１０－２０Ｔ１０：００ ": "2026-10-20T10:00",
		"\tＣＢ４００\n": "CB400",
		"   ":       "",
	}
	for in, want := range cases {
		if got := NormalizeInput(in); got != want {
			t.Fatalf("NormalizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
