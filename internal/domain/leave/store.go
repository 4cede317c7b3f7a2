package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) RecordForDate(ctx context.Context, employeeID string, date time.Time) (*Record, error) {
	var r Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, date, kind, created_at
    FROM leave_records
    WHERE employee_id = $1 AND date = $2::date
  `, employeeID, date).Scan(&r.ID, &r.EmployeeID, &r.Date, &r.Kind, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, kind, created_at
    FROM leave_records
    WHERE employee_id = $1 AND date >= $2::date AND date < $3::date
    ORDER BY date
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Date, &r.Kind, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) CountKindInRange(ctx context.Context, employeeID, kind string, from, to time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_records
    WHERE employee_id = $1 AND kind = $2 AND date >= $3::date AND date <= $4::date
  `, employeeID, kind, from, to).Scan(&count)
	return count, err
}

func (s *Store) InsertRecords(ctx context.Context, employeeID, kind string, dates []time.Time) ([]string, error) {
	ids := make([]string, 0, len(dates))
	for _, date := range dates {
		var id string
		err := s.DB.QueryRow(ctx, `
      INSERT INTO leave_records (employee_id, date, kind)
      VALUES ($1, $2::date, $3)
      RETURNING id
    `, employeeID, date, kind).Scan(&id)
		if err != nil {
			// Undo the partial batch before surfacing the failure.
			_ = s.DeleteRecords(ctx, ids)
			// The per-process lock serializes local callers, so a duplicate
			// (employee, date) here means another process won the race.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrConcurrentRequest
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) DeleteRecords(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.DB.Exec(ctx, "DELETE FROM leave_records WHERE id = ANY($1)", ids)
	return err
}
