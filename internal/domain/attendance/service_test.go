package attendance

import (
	"context"
	"testing"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

type fakeTimeclock struct {
	records   []timeclock.Record
	schedules []timeclock.ScheduleEntry
}

func (f *fakeTimeclock) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error) {
	var out []timeclock.Record
	for _, r := range f.records {
		if r.EmployeeID == employeeID && !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTimeclock) SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.ScheduleEntry, error) {
	var out []timeclock.ScheduleEntry
	for _, s := range f.schedules {
		if s.EmployeeID == employeeID && !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeLeaves struct {
	records []leave.Record
}

func (f *fakeLeaves) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Record, error) {
	var out []leave.Record
	for _, r := range f.records {
		if r.EmployeeID == employeeID && !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeEmployees struct {
	employees []employee.Employee
}

func (f *fakeEmployees) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

func TestLiveStatusMarksOpenRecord(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(11 * time.Hour)

	in := day.Add(9 * time.Hour)
	tc := &fakeTimeclock{
		records: []timeclock.Record{
			{ID: "r1", EmployeeID: "emp-1", TimeIn: &in, CreatedAt: in},
		},
		schedules: []timeclock.ScheduleEntry{
			{ID: "s1", EmployeeID: "emp-1", Date: day, StartAt: day.Add(9 * time.Hour), EndAt: day.Add(18 * time.Hour)},
		},
	}
	emps := &fakeEmployees{employees: []employee.Employee{
		{ID: "emp-1", FirstName: "Maria", LastName: "Santos", Status: employee.StatusActive},
		{ID: "emp-2", FirstName: "Jose", LastName: "Cruz", Status: employee.StatusActive},
	}}

	svc := NewService(tc, &fakeLeaves{}, emps, &clock.Fixed{Instant: now}, 15)

	entries, err := svc.LiveStatus(context.Background())
	if err != nil {
		t.Fatalf("LiveStatus: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].Status != StatusPresent || !entries[0].ClockedIn {
		t.Fatalf("emp-1 entry = %+v, want present and clocked in", entries[0])
	}
	if entries[0].OpenSince == nil || !entries[0].OpenSince.Equal(in) {
		t.Fatalf("openSince = %v, want %v", entries[0].OpenSince, in)
	}
	// no schedule, no scans, weekday
	if entries[1].Status != StatusNoSchedule || entries[1].ClockedIn {
		t.Fatalf("emp-2 entry = %+v, want no_schedule", entries[1])
	}
}

func TestMonthlyTimesheetStopsAtToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(&fakeTimeclock{}, &fakeLeaves{}, &fakeEmployees{}, &clock.Fixed{Instant: now}, 15)

	days, err := svc.MonthlyTimesheet(context.Background(), "emp-1", 2025, time.June)
	if err != nil {
		t.Fatalf("MonthlyTimesheet: %v", err)
	}
	if len(days) != 10 {
		t.Fatalf("got %d days, want 10 (through today)", len(days))
	}

	days, err = svc.MonthlyTimesheet(context.Background(), "emp-1", 2025, time.May)
	if err != nil {
		t.Fatalf("MonthlyTimesheet: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("got %d days for a past month, want 31", len(days))
	}
}

func TestMonthlyTimesheetClassifiesLeaveAndAbsence(t *testing.T) {
	now := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	tc := &fakeTimeclock{
		schedules: []timeclock.ScheduleEntry{
			{ID: "s1", EmployeeID: "emp-1", Date: tuesday, StartAt: tuesday.Add(9 * time.Hour), EndAt: tuesday.Add(18 * time.Hour)},
		},
	}
	leaves := &fakeLeaves{records: []leave.Record{
		{ID: "l1", EmployeeID: "emp-1", Date: monday, Kind: leave.KindDayOff},
	}}

	svc := NewService(tc, leaves, &fakeEmployees{}, &clock.Fixed{Instant: now}, 15)

	days, err := svc.MonthlyTimesheet(context.Background(), "emp-1", 2025, time.June)
	if err != nil {
		t.Fatalf("MonthlyTimesheet: %v", err)
	}
	if len(days) != 30 {
		t.Fatalf("got %d days, want 30", len(days))
	}
	if days[1].Status != StatusLeave {
		t.Fatalf("June 2 status = %s, want %s", days[1].Status, StatusLeave)
	}
	if days[2].Status != StatusAbsent {
		t.Fatalf("June 3 status = %s, want %s", days[2].Status, StatusAbsent)
	}
	if days[0].Status != StatusWeekend {
		t.Fatalf("June 1 status = %s, want %s", days[0].Status, StatusWeekend)
	}
}
