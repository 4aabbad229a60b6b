package domain

import "time"

// SleepAggregate is the SQL summary of sleeps ending on one day. Durations in ms.
type SleepAggregate struct {
	NapCount   int64
	TotalSleep int64
	AvgNap     float64
}

type FeedAggregate struct {
	Total   int64
	Breast  int64
	Bottle  int64
	TotalMl int64
}

// DiaperAggregate counts each diaper_type exclusively; "both" is not folded in.
type DiaperAggregate struct {
	Total     int64
	WetOnly   int64
	DirtyOnly int64
	Both      int64
}

// WetTotal counts every wet diaper, including those that were also dirty.
func (d DiaperAggregate) WetTotal() int64 { return d.WetOnly + d.Both }

// DirtyTotal counts every dirty diaper, including those that were also wet.
func (d DiaperAggregate) DirtyTotal() int64 { return d.DirtyOnly + d.Both }

// WakeWindowPair is the end of a sleep and the start of the next sleep after it.
// WakeEnd is nil when no later sleep exists yet.
type WakeWindowPair struct {
	WakeStart time.Time
	WakeEnd   *time.Time
}
