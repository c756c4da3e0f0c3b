package models

import (
	"testing"
	"time"
)

func TestFormatDocumentNumber(t *testing.T) {
	day := time.Date(2026, 8, 31, 14, 30, 0, 0, time.Local)

	cases := []struct {
		prefix  string
		counter int
		want    string
	}{
		{"INV", 1, "INV-260831-0001"},
		{"INV", 42, "INV-260831-0042"},
		{"SE", 9999, "SE-260831-9999"},
		{"SE", 10000, "SE-260831-10000"},
	}
	for _, tc := range cases {
		got := FormatDocumentNumber(tc.prefix, day, tc.counter)
		if got != tc.want {
			t.Errorf("FormatDocumentNumber(%q, %d) = %q, want %q", tc.prefix, tc.counter, got, tc.want)
		}
	}
}

func TestParseDocumentCounter(t *testing.T) {
	counter, err := ParseDocumentCounter("INV-260831-0042")
	if err != nil {
		t.Fatalf("ParseDocumentCounter: %v", err)
	}
	if counter != 42 {
		t.Errorf("counter = %d, want 42", counter)
	}
}

func TestParseDocumentCounterRoundTrip(t *testing.T) {
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local)
	for _, c := range []int{1, 7, 123, 9999} {
		number := FormatDocumentNumber("INV", day, c)
		got, err := ParseDocumentCounter(number)
		if err != nil {
			t.Fatalf("ParseDocumentCounter(%q): %v", number, err)
		}
		if got != c {
			t.Errorf("round trip %q: got %d, want %d", number, got, c)
		}
	}
}

func TestParseDocumentCounterRejectsGarbage(t *testing.T) {
	// numbering must fail loudly on malformed data instead of restarting at 1
	for _, bad := range []string{"", "INV", "INV-260831-", "INV-260831-00A2", "nodash"} {
		if _, err := ParseDocumentCounter(bad); err == nil {
			t.Errorf("ParseDocumentCounter(%q) succeeded, want error", bad)
		}
	}
}
