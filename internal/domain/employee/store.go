package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  id, first_name, last_name, position, branch, COALESCE(token_id, ''),
  daily_rate, day_off_balance, sil_balance, hire_date, birth_date,
  status, created_at, updated_at
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.Branch, &e.TokenID,
		&e.DailyRate, &e.DayOffBalance, &e.SILBalance, &e.HireDate, &e.BirthDate,
		&e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) GetByID(ctx context.Context, employeeID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID))
}

func (s *Store) GetByToken(ctx context.Context, tokenID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE token_id = $1 AND status = $2
  `, tokenID, StatusActive))
}

func (s *Store) ListActive(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE status = $1
    ORDER BY last_name, first_name
  `, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateDailyRate(ctx context.Context, employeeID string, rate float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET daily_rate = $1, updated_at = now() WHERE id = $2
  `, rate, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDayOffBalance applies a signed delta and returns the new balance. The
// balance may go negative; emergency leave deliberately borrows against
// future credits.
func (s *Store) AddDayOffBalance(ctx context.Context, employeeID string, delta int) (int, error) {
	var balance int
	err := s.DB.QueryRow(ctx, `
    UPDATE employees
    SET day_off_balance = day_off_balance + $1, updated_at = now()
    WHERE id = $2
    RETURNING day_off_balance
  `, delta, employeeID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

func (s *Store) SetSILBalance(ctx context.Context, employeeID string, balance int) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET sil_balance = $1, updated_at = now() WHERE id = $2
  `, balance, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
