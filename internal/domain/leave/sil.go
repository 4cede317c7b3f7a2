package leave

import (
	"context"
	"log/slog"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/platform/clock"
)

// Eligible reports whether the employee has completed one full year of
// service as of now.
func Eligible(hireDate, now time.Time) bool {
	return !now.Before(hireDate.AddDate(1, 0, 0))
}

// ServiceYearWindow returns the half-open window [lastAnniversary,
// nextAnniversary) containing now. The anniversary is the hire month/day in
// the relevant year; a Feb 29 hire normalizes to Mar 1 in common years.
func ServiceYearWindow(hireDate, now time.Time, loc *time.Location) (time.Time, time.Time) {
	hire := hireDate.In(loc)
	today := clock.StartOfDay(now, loc)
	anniversary := time.Date(today.Year(), hire.Month(), hire.Day(), 0, 0, 0, 0, loc)
	if anniversary.After(today) {
		anniversary = time.Date(today.Year()-1, hire.Month(), hire.Day(), 0, 0, 0, 0, loc)
	}
	return anniversary, anniversary.AddDate(1, 0, 0)
}

// GrantDue decides whether an SIL grant applies. It is a pure function of a
// snapshot: tenure reached a year, no SIL consumed in the current service
// year, and the balance sits below the full entitlement. Callers invoke it
// once per explicit event (profile load, nightly sweep), never from a
// change-detection loop.
func GrantDue(emp employee.Employee, silUsedInWindow int, now time.Time, entitlement int) bool {
	if !Eligible(emp.HireDate, now) {
		return false
	}
	if silUsedInWindow > 0 {
		return false
	}
	return emp.SILBalance < entitlement
}

// EvaluateSILGrant runs the one-shot grant check for a single employee and
// reports whether a grant was written. Repeating the call with unchanged
// state writes nothing.
func (s *Service) EvaluateSILGrant(ctx context.Context, employeeID string) (bool, error) {
	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)
	return s.evaluateSILGrantLocked(ctx, employeeID)
}

func (s *Service) evaluateSILGrantLocked(ctx context.Context, employeeID string) (bool, error) {
	emp, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return false, err
	}

	now := s.Clock.Now()
	if !Eligible(emp.HireDate, now) {
		return false, nil
	}

	windowStart, windowEnd := ServiceYearWindow(emp.HireDate, now, s.Clock.Location())
	used, err := s.Store.CountKindInRange(ctx, employeeID, KindSIL, windowStart, windowEnd.AddDate(0, 0, -1))
	if err != nil {
		return false, err
	}

	if !GrantDue(emp, used, now, s.Rules.SILEntitlementDays) {
		return false, nil
	}

	if err := s.Employees.SetSILBalance(ctx, employeeID, s.Rules.SILEntitlementDays); err != nil {
		return false, err
	}
	slog.Info("sil entitlement granted", "employeeId", employeeID, "balance", s.Rules.SILEntitlementDays)
	return true, nil
}

// RunSILSweep evaluates the grant for every active employee. The nightly job
// drives it; it is also safe to invoke on demand.
func (s *Service) RunSILSweep(ctx context.Context) (SweepSummary, error) {
	employees, err := s.Employees.ListActive(ctx)
	if err != nil {
		return SweepSummary{}, err
	}

	var summary SweepSummary
	for _, emp := range employees {
		summary.EmployeesChecked++
		granted, err := s.EvaluateSILGrant(ctx, emp.ID)
		if err != nil {
			slog.Warn("sil sweep evaluation failed", "employeeId", emp.ID, "err", err)
			continue
		}
		if granted {
			summary.Granted++
		}
	}
	return summary, nil
}
