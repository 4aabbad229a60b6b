package services

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"fmt"
	"time"
)

// Number of recent sleeps considered for historical wake windows.
const wakeWindowSample = 10

type SleepStats struct {
	Total    int64   `json:"total"`
	NapCount int64   `json:"napCount"`
	AvgNap   float64 `json:"avgNap"`
}

type FeedStats struct {
	Total   int64 `json:"total"`
	Breast  int64 `json:"breast"`
	Bottle  int64 `json:"bottle"`
	TotalMl int64 `json:"totalMl"`
}

type DiaperStats struct {
	Total     int64 `json:"total"`
	Wet       int64 `json:"wet"`
	Dirty     int64 `json:"dirty"`
	WetOnly   int64 `json:"wetOnly"`
	DirtyOnly int64 `json:"dirtyOnly"`
	Both      int64 `json:"both"`
}

// DailyStats is the tracker's summary for one local calendar day.
type DailyStats struct {
	Sleep       SleepStats        `json:"sleep"`
	Feeds       FeedStats         `json:"feeds"`
	Diapers     DiaperStats       `json:"diapers"`
	WakeWindows WakeWindowSummary `json:"wakeWindows"`
}

// StatsService computes daily statistics through one aggregate query per category.
type StatsService struct {
	Repo     ports.ActivityRepository
	Location *time.Location
	Now      func() time.Time
}

func NewStatsService(repo ports.ActivityRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{Repo: repo, Location: loc, Now: time.Now}
}

// Today returns statistics for the local day containing now.
func (s *StatsService) Today(ctx context.Context) (*DailyStats, error) {
	now := s.Now()
	day := domain.LocalDay(now, s.Location)

	sleepAgg, err := s.Repo.SleepAggregate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily stats: sleep: %w", err)
	}

	session, err := s.Repo.GetSleepSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily stats: current sleep: %w", err)
	}

	// An open session counts toward today only if it started today.
	var open int64
	if session.Active && day.Contains(session.StartTime) {
		open = session.Elapsed(now).Milliseconds()
	}

	feedAgg, err := s.Repo.FeedAggregate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily stats: feeds: %w", err)
	}

	diaperAgg, err := s.Repo.DiaperAggregate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily stats: diapers: %w", err)
	}

	lastEnd, err := s.Repo.LastSleepEnd(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily stats: last sleep: %w", err)
	}

	pairs, err := s.Repo.WakeWindowPairs(ctx, wakeWindowSample)
	if err != nil {
		return nil, fmt.Errorf("daily stats: wake windows: %w", err)
	}
	avg, longest := SummarizeWakeWindows(pairs)

	return &DailyStats{
		Sleep: SleepStats{
			Total:    sleepAgg.TotalSleep + open,
			NapCount: sleepAgg.NapCount,
			AvgNap:   sleepAgg.AvgNap,
		},
		Feeds: FeedStats{
			Total:   feedAgg.Total,
			Breast:  feedAgg.Breast,
			Bottle:  feedAgg.Bottle,
			TotalMl: feedAgg.TotalMl,
		},
		Diapers: DiaperStats{
			Total:     diaperAgg.Total,
			Wet:       diaperAgg.WetTotal(),
			Dirty:     diaperAgg.DirtyTotal(),
			WetOnly:   diaperAgg.WetOnly,
			DirtyOnly: diaperAgg.DirtyOnly,
			Both:      diaperAgg.Both,
		},
		WakeWindows: WakeWindowSummary{
			Current: CurrentWakeWindow(now, lastEnd, session),
			Average: avg,
			Longest: longest,
		},
	}, nil
}
