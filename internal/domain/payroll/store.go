package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RuleStore struct {
	DB *pgxpool.Pool
}

func NewRuleStore(db *pgxpool.Pool) *RuleStore {
	return &RuleStore{DB: db}
}

func (s *RuleStore) Create(ctx context.Context, rule *SalaryRule) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO salary_rules (name, raise_percentage, start_at, end_at, active)
    VALUES ($1, $2, $3::date, $4::date, $5)
    RETURNING id, created_at, updated_at
  `, rule.Name, rule.RaisePercentage.InexactFloat64(), rule.StartAt, rule.EndAt, rule.Active).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (s *RuleStore) Update(ctx context.Context, rule *SalaryRule) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salary_rules
    SET name = $1, raise_percentage = $2, start_at = $3::date, end_at = $4::date, active = $5, updated_at = now()
    WHERE id = $6
  `, rule.Name, rule.RaisePercentage.InexactFloat64(), rule.StartAt, rule.EndAt, rule.Active, rule.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *RuleStore) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM salary_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *RuleStore) GetByID(ctx context.Context, id string) (*SalaryRule, error) {
	rule, err := scanRule(s.DB.QueryRow(ctx, ruleSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// List returns salary rules, restricted to active ones when activeOnly is
// set. The engine reads the active set; the admin listing can see both.
func (s *RuleStore) List(ctx context.Context, activeOnly bool) ([]SalaryRule, error) {
	query := ruleSelect + ` ORDER BY start_at, name`
	if activeOnly {
		query = ruleSelect + ` WHERE active ORDER BY start_at, name`
	}
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []SalaryRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

const ruleSelect = `
    SELECT id, name, raise_percentage, start_at, end_at, active, created_at, updated_at
    FROM salary_rules`

func scanRule(row pgx.Row) (*SalaryRule, error) {
	var (
		r   SalaryRule
		pct float64
	)
	if err := row.Scan(&r.ID, &r.Name, &pct, &r.StartAt, &r.EndAt, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.RaisePercentage = decimal.NewFromFloat(pct)
	return &r, nil
}

type LineStore struct {
	DB *pgxpool.Pool
}

func NewLineStore(db *pgxpool.Pool) *LineStore {
	return &LineStore{DB: db}
}

// InsertLines persists a committed run in one transaction. A line that
// collides with an existing (employee, period) pair rolls the whole batch
// back with ErrAlreadyCommitted.
func (s *LineStore) InsertLines(ctx context.Context, lines []Line) ([]Line, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := make([]Line, len(lines))
	for i, line := range lines {
		breakdown, err := json.Marshal(line.Breakdown)
		if err != nil {
			return nil, err
		}
		err = tx.QueryRow(ctx, `
      INSERT INTO payroll_lines (
        employee_id, employee_name, position, branch,
        period_start, period_end,
        days_worked, leave_days, total_hours,
        total_minutes_late, total_minutes_undertime,
        daily_rate, base_gross_pay, salary_raise, birth_month_bonus,
        total_gross_pay, lateness_deduction, undertime_deduction,
        manual_deduction, net_pay, breakdown, status
      ) VALUES (
        $1, $2, $3, $4, $5::date, $6::date, $7, $8, $9, $10, $11,
        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
      )
      RETURNING id, created_at
    `,
			line.EmployeeID, line.EmployeeName, line.Position, line.Branch,
			line.PeriodStart, line.PeriodEnd,
			line.DaysWorked, line.LeaveDays, line.TotalHours.InexactFloat64(),
			line.TotalMinutesLate, line.TotalMinutesUnderTime,
			line.DailyRate.InexactFloat64(), line.BaseGrossPay.InexactFloat64(),
			line.SalaryRaise.InexactFloat64(), line.BirthMonthBonus.InexactFloat64(),
			line.TotalGrossPay.InexactFloat64(), line.LatenessDeduction.InexactFloat64(),
			line.UndertimeDeduction.InexactFloat64(), line.ManualDeduction.InexactFloat64(),
			line.NetPay.InexactFloat64(), breakdown, line.Status,
		).Scan(&line.ID, &line.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrAlreadyCommitted
			}
			return nil, err
		}
		out[i] = line
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LineStore) ListByPeriod(ctx context.Context, periodStart time.Time) ([]Line, error) {
	rows, err := s.DB.Query(ctx, lineSelect+`
    WHERE period_start = $1::date
    ORDER BY employee_name
  `, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

func (s *LineStore) GetByID(ctx context.Context, id string) (*Line, error) {
	line, err := scanLine(s.DB.QueryRow(ctx, lineSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *LineStore) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, `UPDATE payroll_lines SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

const lineSelect = `
    SELECT id, employee_id, employee_name, position, branch,
           period_start, period_end,
           days_worked, leave_days, total_hours,
           total_minutes_late, total_minutes_undertime,
           daily_rate, base_gross_pay, salary_raise, birth_month_bonus,
           total_gross_pay, lateness_deduction, undertime_deduction,
           manual_deduction, net_pay, breakdown, status, created_at
    FROM payroll_lines`

func scanLine(row pgx.Row) (*Line, error) {
	var (
		l         Line
		hours     float64
		rate      float64
		base      float64
		raise     float64
		bonus     float64
		gross     float64
		lateness  float64
		undertime float64
		manual    float64
		net       float64
		breakdown []byte
	)
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.EmployeeName, &l.Position, &l.Branch,
		&l.PeriodStart, &l.PeriodEnd,
		&l.DaysWorked, &l.LeaveDays, &hours,
		&l.TotalMinutesLate, &l.TotalMinutesUnderTime,
		&rate, &base, &raise, &bonus,
		&gross, &lateness, &undertime,
		&manual, &net, &breakdown, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.TotalHours = decimal.NewFromFloat(hours)
	l.DailyRate = decimal.NewFromFloat(rate)
	l.BaseGrossPay = decimal.NewFromFloat(base)
	l.SalaryRaise = decimal.NewFromFloat(raise)
	l.BirthMonthBonus = decimal.NewFromFloat(bonus)
	l.TotalGrossPay = decimal.NewFromFloat(gross)
	l.LatenessDeduction = decimal.NewFromFloat(lateness)
	l.UndertimeDeduction = decimal.NewFromFloat(undertime)
	l.ManualDeduction = decimal.NewFromFloat(manual)
	l.NetPay = decimal.NewFromFloat(net)
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &l.Breakdown); err != nil {
			return nil, err
		}
	}
	return &l, nil
}
