package domain

import "time"

// SleepSession is the tracker's in-progress sleep state: Idle, or Active since StartTime.
type SleepSession struct {
	Active    bool
	StartTime time.Time
}

// Start moves Idle -> Active(at).
func (s SleepSession) Start(at time.Time) (SleepSession, error) {
	if s.Active {
		return s, ErrSleepAlreadyActive
	}
	return SleepSession{Active: true, StartTime: at}, nil
}

// End moves Active -> Idle and returns the completed sleep activity.
func (s SleepSession) End(at time.Time) (SleepSession, *Activity, error) {
	if !s.Active {
		return s, nil, ErrNoActiveSleep
	}

	start := s.StartTime
	end := at
	if end.Before(start) {
		end = start
	}
	duration := end.Sub(start).Milliseconds()

	activity := &Activity{
		Type:      ActivitySleep,
		StartTime: &start,
		EndTime:   &end,
		Duration:  &duration,
	}
	return SleepSession{}, activity, nil
}

// Elapsed returns how long the session has been running at now, or 0 when Idle.
func (s SleepSession) Elapsed(now time.Time) time.Duration {
	if !s.Active || now.Before(s.StartTime) {
		return 0
	}
	return now.Sub(s.StartTime)
}
