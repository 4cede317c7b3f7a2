package leave

import (
	"context"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/timeclock"
)

type StoreAPI interface {
	RecordForDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	// RecordsForRange covers the half-open window [from, to).
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	// CountKindInRange counts records of one kind inside [from, to] inclusive.
	CountKindInRange(ctx context.Context, employeeID, kind string, from, to time.Time) (int, error)
	// InsertRecords writes one record per date and returns the new IDs, so a
	// failed balance update can compensate with DeleteRecords.
	InsertRecords(ctx context.Context, employeeID, kind string, dates []time.Time) ([]string, error)
	DeleteRecords(ctx context.Context, ids []string) error
}

// EmployeeSource is the slice of the employee store the manager needs.
type EmployeeSource interface {
	GetByID(ctx context.Context, employeeID string) (employee.Employee, error)
	ListActive(ctx context.Context) ([]employee.Employee, error)
	AddDayOffBalance(ctx context.Context, employeeID string, delta int) (int, error)
	SetSILBalance(ctx context.Context, employeeID string, balance int) error
}

// ScheduleSource answers whether an employee has a planned shift on a date.
type ScheduleSource interface {
	ScheduleForDay(ctx context.Context, employeeID string, date time.Time) (*timeclock.ScheduleEntry, error)
}
