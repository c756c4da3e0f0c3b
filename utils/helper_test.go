package utils

import (
	"testing"
	"time"
)

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 7
	if DereferencePtr(&v) != 7 {
		t.Error("expected 7")
	}
	if DereferencePtr[int](nil) != 0 {
		t.Error("expected zero value")
	}
	if DereferencePtr[int](nil, 42) != 42 {
		t.Error("expected default 42")
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 12.5 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if d.String() != "12.5" {
		t.Errorf("got %s, want 12.5", d)
	}

	if _, err := ParseDecimal(""); err == nil {
		t.Error("ParseDecimal accepted empty string")
	}
	if _, err := ParseDecimal("abc"); err == nil {
		t.Error("ParseDecimal accepted garbage")
	}
}

func TestDayRange(t *testing.T) {
	at := time.Date(2026, 8, 31, 15, 42, 7, 0, time.Local)
	start, end := DayRange(at)

	if !start.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("end = %s", end)
	}
	if !start.Before(at) || !at.Before(end) {
		t.Error("range does not contain the input time")
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	p := NilIfEmpty("x")
	if p == nil || *p != "x" {
		t.Error("expected pointer to x")
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("kasir@toko.co.id") {
		t.Error("rejected valid email")
	}
	if IsValidEmail("not-an-email") {
		t.Error("accepted invalid email")
	}
}
