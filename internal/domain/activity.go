package domain

import (
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivitySleep  ActivityType = "sleep"
	ActivityFeed   ActivityType = "feed"
	ActivityDiaper ActivityType = "diaper"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySleep, ActivityFeed, ActivityDiaper:
		return true
	}
	return false
}

const (
	FeedBreast = "breast"
	FeedBottle = "bottle"

	DiaperWet   = "wet"
	DiaperDirty = "dirty"
	DiaperBoth  = "both"
)

// Activity is one entry of the tracker's append-only log.
// Which optional fields are set depends on Type: sleeps carry StartTime/EndTime/Duration,
// feeds and diapers carry Time. Duration is in milliseconds.
type Activity struct {
	ID         int64        `json:"id"`
	Type       ActivityType `json:"type"`
	Time       *time.Time   `json:"time"`
	StartTime  *time.Time   `json:"start_time"`
	EndTime    *time.Time   `json:"end_time"`
	Duration   *int64       `json:"duration"`
	FeedType   *string      `json:"feed_type"`
	Side       *string      `json:"side"`
	Amount     *int64       `json:"amount"`
	DiaperType *string      `json:"diaper_type"`
	Notes      *string      `json:"notes"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Validate checks the fields required by the activity's type.
func (a *Activity) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidActivity, a.Type)
	}

	if a.StartTime != nil && a.EndTime != nil && a.EndTime.Before(*a.StartTime) {
		return fmt.Errorf("%w: end_time precedes start_time", ErrInvalidActivity)
	}

	if a.FeedType != nil && *a.FeedType != FeedBreast && *a.FeedType != FeedBottle {
		return fmt.Errorf("%w: unknown feed_type %q", ErrInvalidActivity, *a.FeedType)
	}

	if a.DiaperType != nil {
		switch *a.DiaperType {
		case DiaperWet, DiaperDirty, DiaperBoth:
		default:
			return fmt.Errorf("%w: unknown diaper_type %q", ErrInvalidActivity, *a.DiaperType)
		}
	}

	return nil
}

// Settings is the single settings row of the tracker.
type Settings struct {
	BabyName  string     `json:"baby_name"`
	BabyDOB   string     `json:"baby_dob"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	Type   ActivityType
	Day    *DayBounds
	Limit  int
	Offset int
}

// DayBounds is a local calendar day expressed as the instant range [Start, End).
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// LocalDay returns the calendar day containing t in loc.
func LocalDay(t time.Time, loc *time.Location) DayBounds {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return DayBounds{Start: start, End: start.AddDate(0, 0, 1)}
}

func (d DayBounds) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}
