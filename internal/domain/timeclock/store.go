package timeclock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) RecordsForDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]Record, error) {
	return s.queryRecords(ctx, `
    SELECT id, employee_id, time_in, time_out, created_at
    FROM clock_records
    WHERE employee_id = $1 AND created_at >= $2 AND created_at < $3
    ORDER BY created_at
  `, employeeID, dayStart, dayEnd)
}

func (s *Store) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	return s.queryRecords(ctx, `
    SELECT id, employee_id, time_in, time_out, created_at
    FROM clock_records
    WHERE employee_id = $1 AND created_at >= $2 AND created_at < $3
    ORDER BY created_at
  `, employeeID, from, to)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.TimeIn, &r.TimeOut, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) ScheduleForDay(ctx context.Context, employeeID string, date time.Time) (*ScheduleEntry, error) {
	var entry ScheduleEntry
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, date, start_at, end_at
    FROM schedule_entries
    WHERE employee_id = $1 AND date = $2::date
  `, employeeID, date).Scan(&entry.ID, &entry.EmployeeID, &entry.Date, &entry.StartAt, &entry.EndAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]ScheduleEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, start_at, end_at
    FROM schedule_entries
    WHERE employee_id = $1 AND date >= $2::date AND date < $3::date
    ORDER BY date
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ScheduleEntry
	for rows.Next() {
		var entry ScheduleEntry
		if err := rows.Scan(&entry.ID, &entry.EmployeeID, &entry.Date, &entry.StartAt, &entry.EndAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// InsertRecord is the compare-and-swap half of the scan critical section: the
// insert only lands when the day's record count still matches what the state
// machine observed, so the loser of a double-tap race gets no row back.
func (s *Store) InsertRecord(ctx context.Context, employeeID string, timeIn time.Time, dayStart, dayEnd time.Time, observedCount int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO clock_records (employee_id, time_in)
    SELECT $1, $2
    WHERE (
      SELECT COUNT(1) FROM clock_records
      WHERE employee_id = $1 AND created_at >= $3 AND created_at < $4
    ) = $5
    RETURNING id
  `, employeeID, timeIn, dayStart, dayEnd, observedCount).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrConcurrentScan
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) CloseRecord(ctx context.Context, recordID string, timeOut time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE clock_records
    SET time_out = $1
    WHERE id = $2 AND time_out IS NULL
  `, timeOut, recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentScan
	}
	return nil
}
