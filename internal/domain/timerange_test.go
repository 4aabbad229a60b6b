package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTimeRange(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	if _, err := NewTimeRange(start, start.Add(time.Hour)); err != nil {
		t.Fatalf("valid range: %v", err)
	}
	if _, err := NewTimeRange(start, start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("zero width: got %v, want ErrInvalidTimeRange", err)
	}
	if _, err := NewTimeRange(start.Add(time.Hour), start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("inverted: got %v, want ErrInvalidTimeRange", err)
	}
}

func TestTimeRange_Contains(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	r := TimeRange{Start: start, End: start.Add(time.Hour)}

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before", start.Add(-time.Second), false},
		{"start", start, true},
		{"inside", start.Add(30 * time.Minute), true},
		{"end", start.Add(time.Hour), true},
		{"after", start.Add(time.Hour + time.Second), false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.t); got != tc.want {
			t.Errorf("%s: Contains = %v, want %v", tc.name, got, tc.want)
		}
	}

	zero := TimeRange{Start: start, End: start}
	if !zero.Empty() || zero.Contains(start) {
		t.Errorf("zero-width range must be empty and contain nothing")
	}
}

func TestContainmentPolicy_Keeps(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	r := TimeRange{Start: start, End: start.Add(time.Hour)}

	// arrives inside, departs after the window
	straddling := Stop{ArrivalTime: start.Add(50 * time.Minute), DepartureTime: start.Add(70 * time.Minute)}
	inside := Stop{ArrivalTime: start.Add(10 * time.Minute), DepartureTime: start.Add(20 * time.Minute)}

	if !ArrivalOnly.Keeps(r, straddling) {
		t.Errorf("ArrivalOnly should keep a stop arriving in range")
	}
	if FullyContained.Keeps(r, straddling) {
		t.Errorf("FullyContained should drop a stop departing after the range")
	}
	if !FullyContained.Keeps(r, inside) || !ArrivalOnly.Keeps(r, inside) {
		t.Errorf("both policies should keep a fully contained stop")
	}
}

func TestParseContainmentPolicy(t *testing.T) {
	cases := map[string]ContainmentPolicy{
		"":                  ArrivalOnly,
		"arrival_only":      ArrivalOnly,
		" FULLY_CONTAINED ": FullyContained,
	}
	for in, want := range cases {
		got, err := ParseContainmentPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseContainmentPolicy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseContainmentPolicy("overlap"); err == nil {
		t.Errorf("expected an error for an unknown policy")
	}
}
