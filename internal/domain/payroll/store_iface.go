package payroll

import (
	"context"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
)

type EmployeeSource interface {
	ListActive(ctx context.Context) ([]employee.Employee, error)
}

type TimeclockSource interface {
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error)
	SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.ScheduleEntry, error)
}

type LeaveSource interface {
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Record, error)
}

type RuleStoreAPI interface {
	Create(ctx context.Context, rule *SalaryRule) error
	Update(ctx context.Context, rule *SalaryRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*SalaryRule, error)
	List(ctx context.Context, activeOnly bool) ([]SalaryRule, error)
}

type LineStoreAPI interface {
	InsertLines(ctx context.Context, lines []Line) ([]Line, error)
	ListByPeriod(ctx context.Context, periodStart time.Time) ([]Line, error)
	GetByID(ctx context.Context, id string) (*Line, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
