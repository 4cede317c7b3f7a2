package attendance

import (
	"context"
	"fmt"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

type TimeclockSource interface {
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error)
	SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.ScheduleEntry, error)
}

type LeaveSource interface {
	RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Record, error)
}

type EmployeeSource interface {
	ListActive(ctx context.Context) ([]employee.Employee, error)
}

type Service struct {
	Timeclock TimeclockSource
	Leaves    LeaveSource
	Employees EmployeeSource
	Clock     clock.Clock

	GraceMinutes int
}

func NewService(tc TimeclockSource, lv LeaveSource, emp EmployeeSource, clk clock.Clock, graceMinutes int) *Service {
	return &Service{
		Timeclock:    tc,
		Leaves:       lv,
		Employees:    emp,
		Clock:        clk,
		GraceMinutes: graceMinutes,
	}
}

// LiveEntry is one employee's position in today's attendance board.
type LiveEntry struct {
	EmployeeID  string     `json:"employeeId"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	Branch      string     `json:"branch"`
	Status      Status     `json:"status"`
	HoursWorked *float64   `json:"hoursWorked,omitempty"`
	ClockedIn   bool       `json:"clockedIn"`
	OpenSince   *time.Time `json:"openSince,omitempty"`
}

// DayFor classifies a single employee-day.
func (s *Service) DayFor(ctx context.Context, employeeID string, date time.Time) (DayResult, error) {
	loc := s.Clock.Location()
	dayStart := clock.StartOfDay(date, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	day, err := s.loadDay(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return DayResult{}, err
	}
	return Classify(day, s.GraceMinutes, loc), nil
}

// LiveStatus classifies today for every active employee.
func (s *Service) LiveStatus(ctx context.Context) ([]LiveEntry, error) {
	loc := s.Clock.Location()
	now := s.Clock.Now().In(loc)
	dayStart := clock.StartOfDay(now, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	employees, err := s.Employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}

	entries := make([]LiveEntry, 0, len(employees))
	for _, emp := range employees {
		day, err := s.loadDay(ctx, emp.ID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		result := Classify(day, s.GraceMinutes, loc)

		entry := LiveEntry{
			EmployeeID:  emp.ID,
			Name:        emp.FullName(),
			Position:    emp.Position,
			Branch:      emp.Branch,
			Status:      result.Status,
			HoursWorked: result.HoursWorked,
		}
		for _, r := range day.Records {
			if r.Open() {
				entry.ClockedIn = true
				entry.OpenSince = r.TimeIn
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MonthlyTimesheet classifies every day of the given month for one employee.
// Future days of the current month are omitted.
func (s *Service) MonthlyTimesheet(ctx context.Context, employeeID string, year int, month time.Month) ([]DayResult, error) {
	loc := s.Clock.Location()
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0)

	today := clock.StartOfDay(s.Clock.Now(), loc)
	if !to.Before(today.Add(24 * time.Hour)) {
		to = today.Add(24 * time.Hour)
	}
	if !from.Before(to) {
		return []DayResult{}, nil
	}

	records, err := s.Timeclock.RecordsForRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load clock records: %w", err)
	}
	schedules, err := s.Timeclock.SchedulesForRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	leaves, err := s.Leaves.RecordsForRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load leave records: %w", err)
	}

	recordsByDay := make(map[string][]timeclock.Record)
	for _, r := range records {
		key := clock.DayKey(r.CreatedAt, loc)
		recordsByDay[key] = append(recordsByDay[key], r)
	}
	schedulesByDay := make(map[string]timeclock.ScheduleEntry)
	for _, sc := range schedules {
		schedulesByDay[clock.DayKey(sc.Date, loc)] = sc
	}
	leavesByDay := make(map[string]leave.Record)
	for _, lv := range leaves {
		leavesByDay[clock.DayKey(lv.Date, loc)] = lv
	}

	var results []DayResult
	for cursor := from; cursor.Before(to); cursor = cursor.AddDate(0, 0, 1) {
		key := clock.DayKey(cursor, loc)
		day := DayContext{Date: cursor, Records: recordsByDay[key]}
		if sc, ok := schedulesByDay[key]; ok {
			entry := sc
			day.Schedule = &entry
		}
		if lv, ok := leavesByDay[key]; ok {
			entry := lv
			day.Leave = &entry
		}
		results = append(results, Classify(day, s.GraceMinutes, loc))
	}
	return results, nil
}

func (s *Service) loadDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (DayContext, error) {
	records, err := s.Timeclock.RecordsForRange(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return DayContext{}, fmt.Errorf("load clock records: %w", err)
	}
	schedules, err := s.Timeclock.SchedulesForRange(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return DayContext{}, fmt.Errorf("load schedules: %w", err)
	}
	leaves, err := s.Leaves.RecordsForRange(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return DayContext{}, fmt.Errorf("load leave records: %w", err)
	}

	day := DayContext{Date: dayStart, Records: records}
	if len(schedules) > 0 {
		day.Schedule = &schedules[0]
	}
	if len(leaves) > 0 {
		day.Leave = &leaves[0]
	}
	return day, nil
}
