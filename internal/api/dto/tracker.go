package dto

import (
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"time"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type SleepStatusResponse struct {
	IsActive  bool       `json:"isActive"`
	StartTime *time.Time `json:"startTime,omitempty"`
}

func NewSleepStatusResponse(s domain.SleepSession) SleepStatusResponse {
	if !s.Active {
		return SleepStatusResponse{}
	}
	start := s.StartTime
	return SleepStatusResponse{IsActive: true, StartTime: &start}
}

type SettingsRequest struct {
	BabyName string `json:"baby_name"`
	BabyDOB  string `json:"baby_dob"`
}

// ActivityRequest is the body of an activity create or update.
type ActivityRequest struct {
	Type       domain.ActivityType `json:"type"`
	Time       *time.Time          `json:"time"`
	StartTime  *time.Time          `json:"start_time"`
	EndTime    *time.Time          `json:"end_time"`
	Duration   *int64              `json:"duration"`
	FeedType   *string             `json:"feed_type"`
	Side       *string             `json:"side"`
	Amount     *int64              `json:"amount"`
	DiaperType *string             `json:"diaper_type"`
	Notes      *string             `json:"notes"`
}

// Activity fills in the sleep duration from start and end when it was omitted.
func (r ActivityRequest) Activity() *domain.Activity {
	a := &domain.Activity{
		Type:       r.Type,
		Time:       r.Time,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Duration:   r.Duration,
		FeedType:   emptyToNil(r.FeedType),
		Side:       emptyToNil(r.Side),
		Amount:     r.Amount,
		DiaperType: emptyToNil(r.DiaperType),
		Notes:      emptyToNil(r.Notes),
	}
	if a.Duration == nil && a.StartTime != nil && a.EndTime != nil {
		d := a.EndTime.Sub(*a.StartTime).Milliseconds()
		a.Duration = &d
	}
	return a
}

// ImportActivity accepts both snake_case and the older camelCase field names.
type ImportActivity struct {
	ActivityRequest
	StartTimeAlt  *time.Time `json:"startTime"`
	EndTimeAlt    *time.Time `json:"endTime"`
	FeedTypeAlt   *string    `json:"feedType"`
	DiaperTypeAlt *string    `json:"diaperType"`
	Text          *string    `json:"text"`
}

func (r ImportActivity) Activity() domain.Activity {
	req := r.ActivityRequest
	req.StartTime = firstNonNil(req.StartTime, r.StartTimeAlt)
	req.EndTime = firstNonNil(req.EndTime, r.EndTimeAlt)
	req.FeedType = firstNonNil(emptyToNil(req.FeedType), emptyToNil(r.FeedTypeAlt))
	req.DiaperType = firstNonNil(emptyToNil(req.DiaperType), emptyToNil(r.DiaperTypeAlt))
	req.Notes = firstNonNil(emptyToNil(req.Notes), emptyToNil(r.Text))
	return *req.Activity()
}

type ImportRequest struct {
	Settings   *SettingsRequest `json:"settings"`
	Activities []ImportActivity `json:"activities"`
}

type ExportResponse struct {
	ExportDate   time.Time           `json:"exportDate"`
	Settings     domain.Settings     `json:"settings"`
	Activities   []domain.Activity   `json:"activities"`
	CurrentSleep *ExportCurrentSleep `json:"currentSleep"`
}

type ExportCurrentSleep struct {
	StartTime time.Time `json:"startTime"`
}

func NewExportResponse(snap ports.Snapshot, now time.Time) ExportResponse {
	res := ExportResponse{
		ExportDate: now.UTC(),
		Settings:   snap.Settings,
		Activities: snap.Activities,
	}
	if res.Activities == nil {
		res.Activities = []domain.Activity{}
	}
	if snap.CurrentSleep.Active {
		res.CurrentSleep = &ExportCurrentSleep{StartTime: snap.CurrentSleep.StartTime}
	}
	return res
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
