package repositories

import (
	"context"
	"database/sql"
	"daylog-service/internal/domain"
	"daylog-service/internal/platform/obs"
	"daylog-service/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultActivityLimit = 100

// SQLite-backed implementation of the ActivityRepository port.
type SqliteActivityRepository struct{ DB *sql.DB }

func NewSqliteActivityRepository(db *sql.DB) *SqliteActivityRepository {
	return &SqliteActivityRepository{DB: db}
}

var _ ports.ActivityRepository = (*SqliteActivityRepository)(nil)

const activityColumns = `
	id, type, time, start_time, end_time, duration,
	feed_type, side, amount, diaper_type, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		a                                 domain.Activity
		typ, createdAt                    string
		tm, startTime, endTime            sql.NullString
		feedType, side, diaperType, notes sql.NullString
		duration, amount                  sql.NullInt64
	)
	err := row.Scan(&a.ID, &typ, &tm, &startTime, &endTime, &duration,
		&feedType, &side, &amount, &diaperType, &notes, &createdAt)
	if err != nil {
		return nil, err
	}

	a.Type = domain.ActivityType(typ)
	if a.Time, err = parseNullTime(tm); err != nil {
		return nil, err
	}
	if a.StartTime, err = parseNullTime(startTime); err != nil {
		return nil, err
	}
	if a.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	a.Duration = int64Ptr(duration)
	a.Amount = int64Ptr(amount)
	a.FeedType = stringPtr(feedType)
	a.Side = stringPtr(side)
	a.DiaperType = stringPtr(diaperType)
	a.Notes = stringPtr(notes)

	return &a, nil
}

func (s *SqliteActivityRepository) check(op string) error {
	if s.DB == nil {
		return fmt.Errorf("%s: DB is nil", op)
	}
	return nil
}

// Return the settings row.
func (s *SqliteActivityRepository) GetSettings(ctx context.Context) (_ domain.Settings, err error) {
	defer obs.Time(ctx, "GetSettings")(&err)
	if err := s.check("get settings"); err != nil {
		return domain.Settings{}, err
	}
	return getSettings(ctx, s.DB)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getSettings(ctx context.Context, q querier) (domain.Settings, error) {
	var st domain.Settings
	var createdAt, updatedAt sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT baby_name, baby_dob, created_at, updated_at FROM settings WHERE id = 1`,
	).Scan(&st.BabyName, &st.BabyDOB, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: scan row: %w", err)
	}
	if st.CreatedAt, err = parseNullTime(createdAt); err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if st.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func updateSettings(ctx context.Context, q querier, st domain.Settings) error {
	_, err := q.ExecContext(ctx, `
	INSERT INTO settings (id, baby_name, baby_dob, updated_at)
	VALUES (1, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		baby_name = excluded.baby_name,
		baby_dob = excluded.baby_dob,
		updated_at = excluded.updated_at;
	`, st.BabyName, st.BabyDOB, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// Replace the baby's name and date of birth.
func (s *SqliteActivityRepository) UpdateSettings(ctx context.Context, st domain.Settings) (err error) {
	defer obs.Time(ctx, "UpdateSettings")(&err)
	if err := s.check("update settings"); err != nil {
		return err
	}
	return updateSettings(ctx, s.DB, st)
}

// Return activities newest first, by their effective time.
func (s *SqliteActivityRepository) ListActivities(ctx context.Context, f domain.ActivityFilter) (_ []domain.Activity, err error) {
	defer obs.Time(ctx, "ListActivities")(&err)
	if err := s.check("list activities"); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Day != nil {
		where = append(where, "COALESCE(time, end_time, start_time) >= ?", "COALESCE(time, end_time, start_time) < ?")
		args = append(args, formatTime(f.Day.Start), formatTime(f.Day.End))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString("SELECT " + activityColumns + " FROM activities")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY COALESCE(time, end_time, start_time, created_at) DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	return listActivities(ctx, s.DB, b.String(), args...)
}

func listActivities(ctx context.Context, q querier, query string, args ...any) ([]domain.Activity, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: query activities table: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0, 32)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("list activities: scan row: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: row iteration: %w", err)
	}
	return activities, nil
}

func getActivity(ctx context.Context, q querier, id int64) (*domain.Activity, error) {
	row := q.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	return a, nil
}

// Return one activity, or domain.ErrNotFound.
func (s *SqliteActivityRepository) GetActivity(ctx context.Context, id int64) (_ *domain.Activity, err error) {
	defer obs.Time(ctx, "GetActivity")(&err)
	if err := s.check("get activity"); err != nil {
		return nil, err
	}
	return getActivity(ctx, s.DB, id)
}

func insertActivity(ctx context.Context, q querier, a *domain.Activity) (int64, error) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := q.ExecContext(ctx, `
	INSERT INTO activities
		(type, time, start_time, end_time, duration, feed_type, side, amount, diaper_type, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		string(a.Type), nullTime(a.Time), nullTime(a.StartTime), nullTime(a.EndTime), nullInt(a.Duration),
		nullString(a.FeedType), nullString(a.Side), nullInt(a.Amount), nullString(a.DiaperType), nullString(a.Notes),
		formatTime(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert activity: last insert id: %w", err)
	}
	return id, nil
}

// Validate and insert a new activity, returning the stored row.
func (s *SqliteActivityRepository) CreateActivity(ctx context.Context, a *domain.Activity) (_ *domain.Activity, err error) {
	defer obs.Time(ctx, "CreateActivity")(&err)
	if err := s.check("create activity"); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	id, err := insertActivity(ctx, s.DB, a)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return getActivity(ctx, s.DB, id)
}

// Overwrite the mutable fields of an existing activity.
func (s *SqliteActivityRepository) UpdateActivity(ctx context.Context, a *domain.Activity) (_ *domain.Activity, err error) {
	defer obs.Time(ctx, "UpdateActivity")(&err)
	if err := s.check("update activity"); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	res, err := s.DB.ExecContext(ctx, `
	UPDATE activities SET
		type = ?, time = ?, start_time = ?, end_time = ?, duration = ?,
		feed_type = ?, side = ?, amount = ?, diaper_type = ?, notes = ?
	WHERE id = ?;
	`,
		string(a.Type), nullTime(a.Time), nullTime(a.StartTime), nullTime(a.EndTime), nullInt(a.Duration),
		nullString(a.FeedType), nullString(a.Side), nullInt(a.Amount), nullString(a.DiaperType), nullString(a.Notes),
		a.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update activity %d: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrNotFound
	}
	return getActivity(ctx, s.DB, a.ID)
}

func (s *SqliteActivityRepository) DeleteActivity(ctx context.Context, id int64) (err error) {
	defer obs.Time(ctx, "DeleteActivity")(&err)
	if err := s.check("delete activity"); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func getSleepSession(ctx context.Context, q querier) (domain.SleepSession, error) {
	var startTime sql.NullString
	var active int64
	err := q.QueryRowContext(ctx,
		`SELECT start_time, is_active FROM current_sleep WHERE id = 1`,
	).Scan(&startTime, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SleepSession{}, nil
	}
	if err != nil {
		return domain.SleepSession{}, fmt.Errorf("get sleep session: scan row: %w", err)
	}

	start, err := parseNullTime(startTime)
	if err != nil {
		return domain.SleepSession{}, fmt.Errorf("get sleep session: %w", err)
	}
	if active == 0 || start == nil {
		return domain.SleepSession{}, nil
	}
	return domain.SleepSession{Active: true, StartTime: *start}, nil
}

func putSleepSession(ctx context.Context, q querier, session domain.SleepSession) error {
	var start any
	active := 0
	if session.Active {
		start = formatTime(session.StartTime)
		active = 1
	}
	_, err := q.ExecContext(ctx, `
	INSERT INTO current_sleep (id, start_time, is_active) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET start_time = excluded.start_time, is_active = excluded.is_active;
	`, start, active)
	if err != nil {
		return fmt.Errorf("put sleep session: %w", err)
	}
	return nil
}

func (s *SqliteActivityRepository) GetSleepSession(ctx context.Context) (_ domain.SleepSession, err error) {
	defer obs.Time(ctx, "GetSleepSession")(&err)
	if err := s.check("get sleep session"); err != nil {
		return domain.SleepSession{}, err
	}
	return getSleepSession(ctx, s.DB)
}

// Persist an Idle -> Active transition.
func (s *SqliteActivityRepository) StartSleep(ctx context.Context, at time.Time) (_ domain.SleepSession, err error) {
	defer obs.Time(ctx, "StartSleep")(&err)
	if err := s.check("start sleep"); err != nil {
		return domain.SleepSession{}, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.SleepSession{}, fmt.Errorf("start sleep: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getSleepSession(ctx, tx)
	if err != nil {
		return domain.SleepSession{}, err
	}
	next, err := current.Start(at)
	if err != nil {
		return current, err
	}
	if err := putSleepSession(ctx, tx, next); err != nil {
		return domain.SleepSession{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.SleepSession{}, fmt.Errorf("start sleep: commit tx: %w", err)
	}
	return next, nil
}

// Persist an Active -> Idle transition and the completed sleep, atomically.
func (s *SqliteActivityRepository) EndSleep(ctx context.Context, at time.Time) (_ *domain.Activity, err error) {
	defer obs.Time(ctx, "EndSleep")(&err)
	if err := s.check("end sleep"); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("end sleep: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getSleepSession(ctx, tx)
	if err != nil {
		return nil, err
	}
	next, sleep, err := current.End(at)
	if err != nil {
		return nil, err
	}

	id, err := insertActivity(ctx, tx, sleep)
	if err != nil {
		return nil, fmt.Errorf("end sleep: %w", err)
	}
	if err := putSleepSession(ctx, tx, next); err != nil {
		return nil, err
	}
	stored, err := getActivity(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("end sleep: commit tx: %w", err)
	}
	return stored, nil
}

// Summarize sleeps that ended within the day.
func (s *SqliteActivityRepository) SleepAggregate(ctx context.Context, day domain.DayBounds) (_ domain.SleepAggregate, err error) {
	defer obs.Time(ctx, "SleepAggregate")(&err)
	if err := s.check("sleep aggregate"); err != nil {
		return domain.SleepAggregate{}, err
	}

	var agg domain.SleepAggregate
	err = s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COALESCE(SUM(duration), 0),
		COALESCE(AVG(duration), 0)
	FROM activities
	WHERE type = 'sleep' AND end_time >= ? AND end_time < ?;
	`, formatTime(day.Start), formatTime(day.End)).Scan(&agg.NapCount, &agg.TotalSleep, &agg.AvgNap)
	if err != nil {
		return domain.SleepAggregate{}, fmt.Errorf("sleep aggregate: %w", err)
	}
	return agg, nil
}

func (s *SqliteActivityRepository) FeedAggregate(ctx context.Context, day domain.DayBounds) (_ domain.FeedAggregate, err error) {
	defer obs.Time(ctx, "FeedAggregate")(&err)
	if err := s.check("feed aggregate"); err != nil {
		return domain.FeedAggregate{}, err
	}

	var agg domain.FeedAggregate
	err = s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN feed_type = 'breast' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN feed_type = 'bottle' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN feed_type = 'bottle' THEN COALESCE(amount, 0) ELSE 0 END), 0)
	FROM activities
	WHERE type = 'feed' AND time >= ? AND time < ?;
	`, formatTime(day.Start), formatTime(day.End)).Scan(&agg.Total, &agg.Breast, &agg.Bottle, &agg.TotalMl)
	if err != nil {
		return domain.FeedAggregate{}, fmt.Errorf("feed aggregate: %w", err)
	}
	return agg, nil
}

func (s *SqliteActivityRepository) DiaperAggregate(ctx context.Context, day domain.DayBounds) (_ domain.DiaperAggregate, err error) {
	defer obs.Time(ctx, "DiaperAggregate")(&err)
	if err := s.check("diaper aggregate"); err != nil {
		return domain.DiaperAggregate{}, err
	}

	var agg domain.DiaperAggregate
	err = s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN diaper_type = 'wet' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN diaper_type = 'dirty' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN diaper_type = 'both' THEN 1 ELSE 0 END), 0)
	FROM activities
	WHERE type = 'diaper' AND time >= ? AND time < ?;
	`, formatTime(day.Start), formatTime(day.End)).Scan(&agg.Total, &agg.WetOnly, &agg.DirtyOnly, &agg.Both)
	if err != nil {
		return domain.DiaperAggregate{}, fmt.Errorf("diaper aggregate: %w", err)
	}
	return agg, nil
}

// Return the end time of the most recently completed sleep, or nil.
func (s *SqliteActivityRepository) LastSleepEnd(ctx context.Context) (_ *time.Time, err error) {
	defer obs.Time(ctx, "LastSleepEnd")(&err)
	if err := s.check("last sleep end"); err != nil {
		return nil, err
	}

	var end sql.NullString
	err = s.DB.QueryRowContext(ctx, `
	SELECT end_time FROM activities
	WHERE type = 'sleep' AND end_time IS NOT NULL
	ORDER BY end_time DESC
	LIMIT 1;
	`).Scan(&end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last sleep end: %w", err)
	}
	t, err := parseNullTime(end)
	if err != nil {
		return nil, fmt.Errorf("last sleep end: %w", err)
	}
	return t, nil
}

// Pair the end of each of the n most recent sleeps with the start of the next sleep.
func (s *SqliteActivityRepository) WakeWindowPairs(ctx context.Context, n int) (_ []domain.WakeWindowPair, err error) {
	defer obs.Time(ctx, "WakeWindowPairs")(&err)
	if err := s.check("wake window pairs"); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		a1.end_time,
		(SELECT MIN(a2.start_time)
		 FROM activities a2
		 WHERE a2.type = 'sleep' AND a2.start_time > a1.end_time)
	FROM activities a1
	WHERE a1.type = 'sleep' AND a1.end_time IS NOT NULL
	ORDER BY a1.end_time DESC
	LIMIT ?;
	`, n)
	if err != nil {
		return nil, fmt.Errorf("wake window pairs: query: %w", err)
	}
	defer rows.Close()

	pairs := make([]domain.WakeWindowPair, 0, n)
	for rows.Next() {
		var wakeStart string
		var wakeEnd sql.NullString
		if err := rows.Scan(&wakeStart, &wakeEnd); err != nil {
			return nil, fmt.Errorf("wake window pairs: scan row: %w", err)
		}
		start, err := parseTime(wakeStart)
		if err != nil {
			return nil, fmt.Errorf("wake window pairs: %w", err)
		}
		end, err := parseNullTime(wakeEnd)
		if err != nil {
			return nil, fmt.Errorf("wake window pairs: %w", err)
		}
		pairs = append(pairs, domain.WakeWindowPair{WakeStart: start, WakeEnd: end})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wake window pairs: row iteration: %w", err)
	}
	return pairs, nil
}

// Return settings, every activity (oldest first) and the sleep session.
func (s *SqliteActivityRepository) Export(ctx context.Context) (_ ports.Snapshot, err error) {
	defer obs.Time(ctx, "Export")(&err)
	if err := s.check("export"); err != nil {
		return ports.Snapshot{}, err
	}

	st, err := getSettings(ctx, s.DB)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	activities, err := listActivities(ctx, s.DB,
		"SELECT "+activityColumns+" FROM activities ORDER BY created_at ASC, id ASC")
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	session, err := getSleepSession(ctx, s.DB)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("export: %w", err)
	}

	return ports.Snapshot{Settings: st, Activities: activities, CurrentSleep: session}, nil
}

// Apply settings (when non-nil) and append activities in one transaction.
// Imported activities get new ids.
func (s *SqliteActivityRepository) Import(ctx context.Context, settings *domain.Settings, activities []domain.Activity) (err error) {
	defer obs.Time(ctx, "Import")(&err)
	if err := s.check("import"); err != nil {
		return err
	}

	for i := range activities {
		if err := activities[i].Validate(); err != nil {
			return fmt.Errorf("import: activity #%d: %w", i+1, err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if settings != nil {
		if err := updateSettings(ctx, tx, *settings); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	for i := range activities {
		if _, err := insertActivity(ctx, tx, &activities[i]); err != nil {
			return fmt.Errorf("import: activity #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit tx: %w", err)
	}
	return nil
}

// Delete every activity and reset settings and the sleep session.
func (s *SqliteActivityRepository) ClearAll(ctx context.Context) (err error) {
	defer obs.Time(ctx, "ClearAll")(&err)
	if err := s.check("clear all"); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`DELETE FROM activities;`,
		`UPDATE current_sleep SET start_time = NULL, is_active = 0 WHERE id = 1;`,
		`UPDATE settings SET baby_name = '', baby_dob = '' WHERE id = 1;`,
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear all: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear all: commit tx: %w", err)
	}
	return nil
}
