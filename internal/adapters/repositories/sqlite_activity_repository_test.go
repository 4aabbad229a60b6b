package repositories

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/platform/db"
	"errors"
	"testing"
	"time"
)

func newTestActivityRepo(t *testing.T) *SqliteActivityRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := InitTrackerSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqliteActivityRepository(conn)
}

func ptr[T any](v T) *T { return &v }

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func utcDay() domain.DayBounds {
	return domain.LocalDay(at(12, 0), time.UTC)
}

func TestSqliteActivityRepository_CreateGetDelete(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	created, err := repo.CreateActivity(ctx, &domain.Activity{
		Type:     domain.ActivityFeed,
		Time:     ptr(at(9, 30)),
		FeedType: ptr(domain.FeedBottle),
		Amount:   ptr(int64(120)),
		Notes:    ptr("after bath"),
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected an id to be assigned")
	}

	got, err := repo.GetActivity(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if got.Time == nil || !got.Time.Equal(at(9, 30)) {
		t.Errorf("Time = %v, want %v", got.Time, at(9, 30))
	}
	if got.Amount == nil || *got.Amount != 120 {
		t.Errorf("Amount = %v, want 120", got.Amount)
	}
	if got.Side != nil {
		t.Errorf("Side = %v, want nil", *got.Side)
	}

	if err := repo.DeleteActivity(ctx, created.ID); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}
	if _, err := repo.GetActivity(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetActivity after delete: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteActivity(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second DeleteActivity: got %v, want ErrNotFound", err)
	}
}

func TestSqliteActivityRepository_CreateRejectsInvalid(t *testing.T) {
	repo := newTestActivityRepo(t)

	_, err := repo.CreateActivity(context.Background(), &domain.Activity{Type: "bath"})
	if !errors.Is(err, domain.ErrInvalidActivity) {
		t.Fatalf("got %v, want ErrInvalidActivity", err)
	}
}

func TestSqliteActivityRepository_UpdateMissing(t *testing.T) {
	repo := newTestActivityRepo(t)

	_, err := repo.UpdateActivity(context.Background(), &domain.Activity{ID: 99, Type: domain.ActivityDiaper, Time: ptr(at(8, 0))})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSqliteActivityRepository_ListFiltersByTypeAndDay(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	// build test data
	seed := []domain.Activity{
		{Type: domain.ActivityDiaper, Time: ptr(at(7, 0)), DiaperType: ptr(domain.DiaperWet)},
		{Type: domain.ActivityFeed, Time: ptr(at(8, 0)), FeedType: ptr(domain.FeedBreast), Side: ptr("left")},
		{Type: domain.ActivityDiaper, Time: ptr(at(10, 0)), DiaperType: ptr(domain.DiaperDirty)},
		{Type: domain.ActivityDiaper, Time: ptr(at(10, 0).AddDate(0, 0, 1)), DiaperType: ptr(domain.DiaperBoth)},
	}
	for i := range seed {
		if _, err := repo.CreateActivity(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateActivity #%d: %v", i, err)
		}
	}

	day := utcDay()
	got, err := repo.ListActivities(ctx, domain.ActivityFilter{Type: domain.ActivityDiaper, Day: &day})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	if !got[0].Time.Equal(at(10, 0)) || !got[1].Time.Equal(at(7, 0)) {
		t.Errorf("expected newest first, got %v then %v", got[0].Time, got[1].Time)
	}

	all, err := repo.ListActivities(ctx, domain.ActivityFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("limit: got %d activities, want 2", len(all))
	}
}

func TestSqliteActivityRepository_DiaperAggregateFoldsBoth(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	// build test data: wet x2, dirty x1, both x1
	kinds := []string{domain.DiaperWet, domain.DiaperWet, domain.DiaperDirty, domain.DiaperBoth}
	for i, k := range kinds {
		a := &domain.Activity{Type: domain.ActivityDiaper, Time: ptr(at(6+i, 0)), DiaperType: ptr(k)}
		if _, err := repo.CreateActivity(ctx, a); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	agg, err := repo.DiaperAggregate(ctx, utcDay())
	if err != nil {
		t.Fatalf("DiaperAggregate: %v", err)
	}
	if agg.Total != 4 {
		t.Errorf("Total = %d, want 4", agg.Total)
	}
	if agg.WetTotal() != 3 {
		t.Errorf("WetTotal = %d, want 3", agg.WetTotal())
	}
	if agg.DirtyTotal() != 2 {
		t.Errorf("DirtyTotal = %d, want 2", agg.DirtyTotal())
	}
}

func TestSqliteActivityRepository_EmptyAggregatesAreZero(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	sleep, err := repo.SleepAggregate(ctx, utcDay())
	if err != nil {
		t.Fatalf("SleepAggregate: %v", err)
	}
	if sleep != (domain.SleepAggregate{}) {
		t.Errorf("sleep = %+v, want zero", sleep)
	}

	feed, err := repo.FeedAggregate(ctx, utcDay())
	if err != nil {
		t.Fatalf("FeedAggregate: %v", err)
	}
	if feed != (domain.FeedAggregate{}) {
		t.Errorf("feed = %+v, want zero", feed)
	}

	last, err := repo.LastSleepEnd(ctx)
	if err != nil {
		t.Fatalf("LastSleepEnd: %v", err)
	}
	if last != nil {
		t.Errorf("LastSleepEnd = %v, want nil", last)
	}
}

func TestSqliteActivityRepository_FeedAggregate(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	// build test data
	feeds := []*domain.Activity{
		{Type: domain.ActivityFeed, Time: ptr(at(6, 0)), FeedType: ptr(domain.FeedBreast)},
		{Type: domain.ActivityFeed, Time: ptr(at(9, 0)), FeedType: ptr(domain.FeedBottle), Amount: ptr(int64(90))},
		{Type: domain.ActivityFeed, Time: ptr(at(12, 0)), FeedType: ptr(domain.FeedBottle), Amount: ptr(int64(110))},
	}
	for _, f := range feeds {
		if _, err := repo.CreateActivity(ctx, f); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	agg, err := repo.FeedAggregate(ctx, utcDay())
	if err != nil {
		t.Fatalf("FeedAggregate: %v", err)
	}
	want := domain.FeedAggregate{Total: 3, Breast: 1, Bottle: 2, TotalMl: 200}
	if agg != want {
		t.Fatalf("FeedAggregate = %+v, want %+v", agg, want)
	}
}

func TestSqliteActivityRepository_SleepTransitions(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	if _, err := repo.EndSleep(ctx, at(9, 0)); !errors.Is(err, domain.ErrNoActiveSleep) {
		t.Fatalf("EndSleep while idle: got %v, want ErrNoActiveSleep", err)
	}

	session, err := repo.StartSleep(ctx, at(9, 0))
	if err != nil {
		t.Fatalf("StartSleep: %v", err)
	}
	if !session.Active || !session.StartTime.Equal(at(9, 0)) {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := repo.StartSleep(ctx, at(9, 5)); !errors.Is(err, domain.ErrSleepAlreadyActive) {
		t.Fatalf("second StartSleep: got %v, want ErrSleepAlreadyActive", err)
	}

	sleep, err := repo.EndSleep(ctx, at(10, 30))
	if err != nil {
		t.Fatalf("EndSleep: %v", err)
	}
	if sleep.Duration == nil || *sleep.Duration != int64(90*time.Minute/time.Millisecond) {
		t.Fatalf("Duration = %v, want 90 minutes in ms", sleep.Duration)
	}

	current, err := repo.GetSleepSession(ctx)
	if err != nil {
		t.Fatalf("GetSleepSession: %v", err)
	}
	if current.Active {
		t.Fatalf("expected idle session after EndSleep")
	}

	agg, err := repo.SleepAggregate(ctx, utcDay())
	if err != nil {
		t.Fatalf("SleepAggregate: %v", err)
	}
	if agg.NapCount != 1 || agg.TotalSleep != 90*60*1000 || agg.AvgNap != 90*60*1000 {
		t.Fatalf("unexpected sleep aggregate %+v", agg)
	}
}

func TestSqliteActivityRepository_WakeWindowPairs(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	// build test data: two naps, the second starts 2h after the first ends
	naps := [][2]time.Time{
		{at(8, 0), at(9, 0)},
		{at(11, 0), at(12, 30)},
	}
	for _, n := range naps {
		if _, err := repo.StartSleep(ctx, n[0]); err != nil {
			t.Fatalf("StartSleep: %v", err)
		}
		if _, err := repo.EndSleep(ctx, n[1]); err != nil {
			t.Fatalf("EndSleep: %v", err)
		}
	}

	pairs, err := repo.WakeWindowPairs(ctx, 10)
	if err != nil {
		t.Fatalf("WakeWindowPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if !pairs[0].WakeStart.Equal(at(12, 30)) || pairs[0].WakeEnd != nil {
		t.Errorf("latest pair = %+v, want open window from 12:30", pairs[0])
	}
	if !pairs[1].WakeStart.Equal(at(9, 0)) || pairs[1].WakeEnd == nil || !pairs[1].WakeEnd.Equal(at(11, 0)) {
		t.Errorf("earlier pair = %+v, want 09:00-11:00", pairs[1])
	}

	last, err := repo.LastSleepEnd(ctx)
	if err != nil {
		t.Fatalf("LastSleepEnd: %v", err)
	}
	if last == nil || !last.Equal(at(12, 30)) {
		t.Fatalf("LastSleepEnd = %v, want 12:30", last)
	}
}

func TestSqliteActivityRepository_ImportIsAllOrNothing(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	settings := &domain.Settings{BabyName: "Ada", BabyDOB: "2024-01-01"}
	bad := []domain.Activity{
		{Type: domain.ActivityDiaper, Time: ptr(at(7, 0)), DiaperType: ptr(domain.DiaperWet)},
		{Type: domain.ActivityFeed, Time: ptr(at(8, 0)), FeedType: ptr("spoon")},
	}
	if err := repo.Import(ctx, settings, bad); !errors.Is(err, domain.ErrInvalidActivity) {
		t.Fatalf("Import: got %v, want ErrInvalidActivity", err)
	}

	snap, err := repo.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(snap.Activities) != 0 || snap.Settings.BabyName != "" {
		t.Fatalf("failed import left data behind: %+v", snap)
	}

	good := bad[:1]
	if err := repo.Import(ctx, settings, good); err != nil {
		t.Fatalf("Import: %v", err)
	}
	snap, err = repo.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(snap.Activities) != 1 || snap.Settings.BabyName != "Ada" {
		t.Fatalf("unexpected snapshot after import: %+v", snap)
	}
}

func TestSqliteActivityRepository_ClearAll(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	if err := repo.UpdateSettings(ctx, domain.Settings{BabyName: "Ada"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if _, err := repo.StartSleep(ctx, at(20, 0)); err != nil {
		t.Fatalf("StartSleep: %v", err)
	}
	if _, err := repo.CreateActivity(ctx, &domain.Activity{Type: domain.ActivityDiaper, Time: ptr(at(19, 0))}); err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	snap, err := repo.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(snap.Activities) != 0 || snap.CurrentSleep.Active || snap.Settings.BabyName != "" {
		t.Fatalf("ClearAll left state behind: %+v", snap)
	}
}
