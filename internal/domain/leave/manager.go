package leave

import (
	"context"
	"fmt"
	"sort"
	"time"

	"timekeep/internal/platform/clock"
	"timekeep/internal/platform/lock"
)

type Rules struct {
	MonthlyDayOffCap   int
	SILEntitlementDays int
}

// Service validates and records leave requests and keeps the day-off and SIL
// balances consistent with the records it writes. Requests for the same
// employee are serialized; the insert-then-debit sequence is one logical
// transaction with a compensating delete when the debit fails.
type Service struct {
	Store     StoreAPI
	Employees EmployeeSource
	Schedules ScheduleSource
	Clock     clock.Clock
	Rules     Rules

	locks *lock.Keyed
}

func NewService(store StoreAPI, employees EmployeeSource, schedules ScheduleSource, clk clock.Clock, rules Rules) *Service {
	return &Service{
		Store:     store,
		Employees: employees,
		Schedules: schedules,
		Clock:     clk,
		Rules:     rules,
		locks:     lock.NewKeyed(),
	}
}

type RequestResult struct {
	Dates         []time.Time `json:"dates"`
	DayOffBalance int         `json:"dayOffBalance"`
}

// RequestDayOff validates and records one or more day-off dates. Nothing is
// written unless every date passes.
func (s *Service) RequestDayOff(ctx context.Context, employeeID string, dates []time.Time) (RequestResult, error) {
	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	loc := s.Clock.Location()
	today := clock.StartOfDay(s.Clock.Now(), loc)
	requested := normalizeDates(dates, loc)
	if len(requested) == 0 {
		return RequestResult{}, ErrPastDate
	}

	for _, date := range requested {
		if date.Before(today) {
			return RequestResult{}, ErrPastDate
		}
		if err := s.checkDayAvailable(ctx, employeeID, date); err != nil {
			return RequestResult{}, err
		}
	}

	if err := s.checkMonthlyCap(ctx, employeeID, requested, loc); err != nil {
		return RequestResult{}, err
	}

	emp, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return RequestResult{}, err
	}
	if emp.DayOffBalance < len(requested) {
		return RequestResult{}, ErrInsufficientBalance
	}

	balance, err := s.writeLeave(ctx, employeeID, KindDayOff, requested, -len(requested))
	if err != nil {
		return RequestResult{}, err
	}
	return RequestResult{Dates: requested, DayOffBalance: balance}, nil
}

// RequestEmergency records today as emergency leave. It is always granted
// once per day; the day-off balance deliberately has no floor, so exhausted
// balances borrow against future credits.
func (s *Service) RequestEmergency(ctx context.Context, employeeID string) (RequestResult, error) {
	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	today := clock.StartOfDay(s.Clock.Now(), s.Clock.Location())
	existing, err := s.Store.RecordForDate(ctx, employeeID, today)
	if err != nil {
		return RequestResult{}, err
	}
	if existing != nil {
		return RequestResult{}, ErrAlreadyRequestedToday
	}

	balance, err := s.writeLeave(ctx, employeeID, KindEmergency, []time.Time{today}, -1)
	if err != nil {
		return RequestResult{}, err
	}
	return RequestResult{Dates: []time.Time{today}, DayOffBalance: balance}, nil
}

// RequestSIL consumes the full entitlement as one contiguous block starting
// at the chosen date.
func (s *Service) RequestSIL(ctx context.Context, employeeID string, start time.Time) (RequestResult, error) {
	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	loc := s.Clock.Location()
	now := s.Clock.Now()
	today := clock.StartOfDay(now, loc)
	first := clock.StartOfDay(start, loc)
	if first.Before(today) {
		return RequestResult{}, ErrPastDate
	}

	emp, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return RequestResult{}, err
	}
	if !Eligible(emp.HireDate, now) {
		return RequestResult{}, ErrNotEligible
	}
	if emp.SILBalance <= 0 {
		return RequestResult{}, ErrInsufficientBalance
	}

	dates := make([]time.Time, 0, SILBlockDays)
	for i := 0; i < SILBlockDays; i++ {
		date := first.AddDate(0, 0, i)
		existing, err := s.Store.RecordForDate(ctx, employeeID, date)
		if err != nil {
			return RequestResult{}, err
		}
		if existing != nil {
			return RequestResult{}, ErrDayUnavailable
		}
		dates = append(dates, date)
	}

	ids, err := s.Store.InsertRecords(ctx, employeeID, KindSIL, dates)
	if err != nil {
		return RequestResult{}, err
	}
	if err := s.Employees.SetSILBalance(ctx, employeeID, 0); err != nil {
		if delErr := s.Store.DeleteRecords(ctx, ids); delErr != nil {
			return RequestResult{}, fmt.Errorf("balance update failed (%w) and rollback failed: %v", err, delErr)
		}
		return RequestResult{}, err
	}

	balance := emp.DayOffBalance
	return RequestResult{Dates: dates, DayOffBalance: balance}, nil
}

func (s *Service) checkDayAvailable(ctx context.Context, employeeID string, date time.Time) error {
	existing, err := s.Store.RecordForDate(ctx, employeeID, date)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDayUnavailable
	}
	schedule, err := s.Schedules.ScheduleForDay(ctx, employeeID, date)
	if err != nil {
		return err
	}
	// A date without a schedule is already a rest day; a day-off there would
	// consume balance for nothing.
	if schedule == nil {
		return ErrDayUnavailable
	}
	return nil
}

func (s *Service) checkMonthlyCap(ctx context.Context, employeeID string, requested []time.Time, loc *time.Location) error {
	perMonth := map[string]int{}
	for _, date := range requested {
		perMonth[date.Format("2006-01")]++
	}
	for month, pending := range perMonth {
		monthStart, _ := time.ParseInLocation("2006-01", month, loc)
		monthEnd := monthStart.AddDate(0, 1, -1)
		existing, err := s.Store.CountKindInRange(ctx, employeeID, KindDayOff, monthStart, monthEnd)
		if err != nil {
			return err
		}
		if existing+pending > s.Rules.MonthlyDayOffCap {
			return ErrMonthlyCapExceeded
		}
	}
	return nil
}

// writeLeave inserts the records then applies the balance delta, deleting
// the inserted records when the balance write fails so the pair behaves like
// one transaction.
func (s *Service) writeLeave(ctx context.Context, employeeID, kind string, dates []time.Time, delta int) (int, error) {
	ids, err := s.Store.InsertRecords(ctx, employeeID, kind, dates)
	if err != nil {
		return 0, err
	}
	balance, err := s.Employees.AddDayOffBalance(ctx, employeeID, delta)
	if err != nil {
		if delErr := s.Store.DeleteRecords(ctx, ids); delErr != nil {
			return 0, fmt.Errorf("balance update failed (%w) and rollback failed: %v", err, delErr)
		}
		return 0, err
	}
	return balance, nil
}

func normalizeDates(dates []time.Time, loc *time.Location) []time.Time {
	seen := map[string]bool{}
	out := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		day := clock.StartOfDay(date, loc)
		key := clock.DayKey(day, loc)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
