package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSleepSession_Transitions(t *testing.T) {
	start := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)

	var s SleepSession
	if _, _, err := s.End(start); !errors.Is(err, ErrNoActiveSleep) {
		t.Fatalf("End while idle: got %v, want ErrNoActiveSleep", err)
	}

	s, err := s.Start(start)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Active || !s.StartTime.Equal(start) {
		t.Fatalf("unexpected session: %+v", s)
	}

	if _, err := s.Start(start.Add(time.Minute)); !errors.Is(err, ErrSleepAlreadyActive) {
		t.Fatalf("Start while active: got %v, want ErrSleepAlreadyActive", err)
	}

	if got := s.Elapsed(start.Add(10 * time.Minute)); got != 10*time.Minute {
		t.Errorf("Elapsed = %v, want 10m", got)
	}

	idle, activity, err := s.End(start.Add(90 * time.Minute))
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if idle.Active {
		t.Errorf("session still active after End")
	}
	if activity.Type != ActivitySleep || *activity.Duration != (90*time.Minute).Milliseconds() {
		t.Errorf("unexpected activity: type %q duration %d", activity.Type, *activity.Duration)
	}
	if !activity.StartTime.Equal(start) || !activity.EndTime.Equal(start.Add(90*time.Minute)) {
		t.Errorf("unexpected interval %v - %v", activity.StartTime, activity.EndTime)
	}
}

func TestSleepSession_EndBeforeStartClamps(t *testing.T) {
	start := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
	s := SleepSession{Active: true, StartTime: start}

	_, activity, err := s.End(start.Add(-time.Minute))
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if *activity.Duration != 0 || !activity.EndTime.Equal(start) {
		t.Fatalf("expected a zero-length sleep, got %d ms ending %v", *activity.Duration, activity.EndTime)
	}
}
