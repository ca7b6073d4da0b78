package starchart

import "testing"

func TestDateRange_Defaults(t *testing.T) {
	r := DefaultRange
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() = %v; want nil", err)
	}
	if got := r.TotalDays(); got != 7670 {
		t.Fatalf("TotalDays() = %d, want 7670", got)
	}
	off := r.OffsetOf(DefaultInitialDate)
	if got := r.DateAt(off); got != DefaultInitialDate {
		t.Fatalf("DateAt(OffsetOf(%s)) = %s", DefaultInitialDate, got)
	}
}

func TestDateRange_Clamps(t *testing.T) {
	r := DefaultRange
	if got := r.DateAt(-10); got != r.Start {
		t.Fatalf("DateAt(-10) = %s, want %s", got, r.Start)
	}
	if got := r.DateAt(1 << 20); got != r.End {
		t.Fatalf("DateAt(huge) = %s, want %s", got, r.End)
	}
	if got := r.OffsetOf("1970-01-01"); got != 0 {
		t.Fatalf("OffsetOf(before start) = %d, want 0", got)
	}
	if got := r.OffsetOf("2020-01-01"); got != r.TotalDays() {
		t.Fatalf("OffsetOf(after end) = %d, want %d", got, r.TotalDays())
	}
}

func TestDateRange_ValidateRejectsInverted(t *testing.T) {
	r := DateRange{Start: "2000-01-02", End: "2000-01-01"}
	if err := r.Validate(); err == nil {
		t.Fatalf("Validate() = nil; want error")
	}
	if err := (DateRange{Start: "bogus", End: "2000-01-01"}).Validate(); err == nil {
		t.Fatalf("Validate() = nil; want parse error")
	}
}

func TestAddDaysAndPretty(t *testing.T) {
	got, err := AddDays("1980-02-28", 2)
	if err != nil {
		t.Fatalf("AddDays() error = %v", err)
	}
	if got != "1980-03-01" {
		t.Fatalf("AddDays() = %s, want 1980-03-01 (leap year)", got)
	}
	if got := PrettyDate("1990-04-20"); got != "April 20, 1990" {
		t.Fatalf("PrettyDate() = %q", got)
	}
	if got := PrettyDate("nope"); got != "nope" {
		t.Fatalf("PrettyDate(invalid) = %q, want input echoed", got)
	}
}
