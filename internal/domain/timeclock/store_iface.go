package timeclock

import (
	"context"
	"time"
)

type StoreAPI interface {
	// RecordsForDay returns the employee's clock records whose creation falls
	// on the given business day, ordered by creation time.
	RecordsForDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]Record, error)
	// ScheduleForDay returns nil when the employee is not scheduled that date.
	ScheduleForDay(ctx context.Context, employeeID string, date time.Time) (*ScheduleEntry, error)
	// Range queries cover the half-open window [from, to).
	SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]ScheduleEntry, error)
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	// InsertRecord appends a new open record, guarded so the insert fails when
	// the day's record count no longer matches what the decision observed.
	InsertRecord(ctx context.Context, employeeID string, timeIn time.Time, dayStart, dayEnd time.Time, observedCount int) (string, error)
	// CloseRecord stamps time_out on a still-open record; it fails when a
	// concurrent scan already closed it.
	CloseRecord(ctx context.Context, recordID string, timeOut time.Time) error
}
