package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"foyer/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS attendance_records (
    rowid_alias INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    member_id TEXT NOT NULL,
    name TEXT NOT NULL,
    check_in_time TEXT NOT NULL,
    purpose TEXT NOT NULL,
    topic TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    duration TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL,
    is_temporary INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_attendance_start_time ON attendance_records(start_time);
`

// Store persists the capped attendance log backed by SQLite.
type Store struct {
	db         *sql.DB
	path       string
	maxRecords int
	now        func() time.Time
}

// Open initializes or connects to the attendance database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "attendance.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply attendance schema: %w", err)
	}

	maxRecords := cfg.Attendance.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 10
	}

	return &Store{db: db, path: dbPath, maxRecords: maxRecords, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Append inserts a closed record and evicts the oldest entries beyond the
// configured capacity in the same transaction.
func (s *Store) Append(ctx context.Context, record Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO attendance_records (
            id, member_id, name, check_in_time, purpose, topic,
            start_time, end_time, duration, duration_minutes, is_temporary
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.MemberID,
		record.Name,
		record.CheckInTime.Format(time.RFC3339Nano),
		record.Purpose,
		record.Topic,
		record.StartTime.Format(time.RFC3339Nano),
		record.EndTime.Format(time.RFC3339Nano),
		record.Duration,
		record.DurationMinutes,
		boolToInt(record.IsTemporary),
	)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`DELETE FROM attendance_records WHERE rowid_alias NOT IN (
            SELECT rowid_alias FROM attendance_records
            ORDER BY rowid_alias DESC LIMIT ?
        )`,
		s.maxRecords,
	)
	if err != nil {
		return fmt.Errorf("evict oldest attendance records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Clear removes every stored record and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attendance_records`)
	if err != nil {
		return 0, fmt.Errorf("clear attendance records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared attendance records: %w", err)
	}
	return int(deleted), nil
}

// List returns the stored log, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, member_id, name, check_in_time, purpose, topic,
                start_time, end_time, duration, duration_minutes, is_temporary
         FROM attendance_records ORDER BY rowid_alias DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, s.maxRecords)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}

// Stats derives counts from the stored log. The active count is supplied by
// the session owner since at most one session runs and it lives in memory.
func (s *Store) Stats(ctx context.Context, active int) (Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(records), Active: active}
	today := s.now().Local().Format("2006-01-02")
	var totalMinutes int
	for _, record := range records {
		if record.StartTime.Local().Format("2006-01-02") == today {
			stats.Today++
		}
		totalMinutes += record.DurationMinutes
	}
	if len(records) > 0 {
		stats.AverageMinutes = float64(totalMinutes) / float64(len(records))
	}
	return stats, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		record              Record
		checkIn, start, end string
		isTemporary         int
	)
	if err := rows.Scan(
		&record.ID,
		&record.MemberID,
		&record.Name,
		&checkIn,
		&record.Purpose,
		&record.Topic,
		&start,
		&end,
		&record.Duration,
		&record.DurationMinutes,
		&isTemporary,
	); err != nil {
		return Record{}, fmt.Errorf("scan attendance record: %w", err)
	}

	var err error
	if record.CheckInTime, err = time.Parse(time.RFC3339Nano, checkIn); err != nil {
		return Record{}, fmt.Errorf("parse check-in time: %w", err)
	}
	if record.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return Record{}, fmt.Errorf("parse start time: %w", err)
	}
	if record.EndTime, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return Record{}, fmt.Errorf("parse end time: %w", err)
	}
	record.IsTemporary = isTemporary != 0
	return record, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
