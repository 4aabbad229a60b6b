package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange is a user-chosen window over one driver-day. Both ends are inclusive.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates start < end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidTimeRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// Empty reports a zero-width or inverted window; nothing falls inside it.
func (r TimeRange) Empty() bool {
	return !r.Start.Before(r.End)
}

// Contains reports whether t lies in [Start, End].
func (r TimeRange) Contains(t time.Time) bool {
	if r.Empty() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// ContainmentPolicy decides which stops survive a time-range filter.
type ContainmentPolicy string

const (
	// ArrivalOnly keeps stops whose arrival lies in the range.
	ArrivalOnly ContainmentPolicy = "arrival_only"
	// FullyContained keeps stops that both arrive and depart inside the range.
	FullyContained ContainmentPolicy = "fully_contained"
)

// DefaultContainmentPolicy is used when configuration does not name one.
const DefaultContainmentPolicy = ArrivalOnly

func ParseContainmentPolicy(s string) (ContainmentPolicy, error) {
	switch ContainmentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultContainmentPolicy, nil
	case ArrivalOnly:
		return ArrivalOnly, nil
	case FullyContained:
		return FullyContained, nil
	default:
		return "", fmt.Errorf("unknown containment policy %q", s)
	}
}

// Keeps reports whether stop s passes range r under policy p.
func (p ContainmentPolicy) Keeps(r TimeRange, s Stop) bool {
	if p == FullyContained {
		return r.Contains(s.ArrivalTime) && r.Contains(s.DepartureTime)
	}
	return r.Contains(s.ArrivalTime)
}
