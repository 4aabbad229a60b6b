package services

import (
	"daylog-service/internal/domain"
	"time"
)

// WakeWindowSummary is reported in milliseconds, like every tracker duration.
type WakeWindowSummary struct {
	Current int64   `json:"current"`
	Average float64 `json:"average"`
	Longest int64   `json:"longest"`
}

// SummarizeWakeWindows averages the paired windows. Pairs without a following sleep
// are skipped rather than counted as zero, and so is any pair whose next sleep does
// not start after the wake start.
func SummarizeWakeWindows(pairs []domain.WakeWindowPair) (avg float64, longest int64) {
	var total int64
	n := 0
	for _, p := range pairs {
		if p.WakeEnd == nil || !p.WakeEnd.After(p.WakeStart) {
			continue
		}

		w := p.WakeEnd.Sub(p.WakeStart).Milliseconds()
		total += w
		n++
		if w > longest {
			longest = w
		}
	}

	if n == 0 {
		return 0, 0
	}
	return float64(total) / float64(n), longest
}

// CurrentWakeWindow is the time since the last sleep ended. It is 0 while a sleep is
// running or when no sleep has been recorded.
func CurrentWakeWindow(now time.Time, lastSleepEnd *time.Time, session domain.SleepSession) int64 {
	if session.Active || lastSleepEnd == nil || now.Before(*lastSleepEnd) {
		return 0
	}
	return now.Sub(*lastSleepEnd).Milliseconds()
}
