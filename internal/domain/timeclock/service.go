package timeclock

import (
	"context"
	"log/slog"

	"timekeep/internal/platform/clock"
	"timekeep/internal/platform/lock"
)

// Service runs the read-decide-write scan sequence. Scans for the same
// employee are serialized in-process, and the store guards double as a
// cross-process compare-and-swap; either way the loser of a race surfaces
// ErrConcurrentScan instead of appending a conflicting record.
type Service struct {
	Store StoreAPI
	Clock clock.Clock
	M     Machine

	locks *lock.Keyed
}

func NewService(store StoreAPI, clk clock.Clock, machine Machine) *Service {
	return &Service{Store: store, Clock: clk, M: machine, locks: lock.NewKeyed()}
}

func (s *Service) Scan(ctx context.Context, employeeID string) (ScanResult, error) {
	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	now := s.Clock.Now()
	loc := s.Clock.Location()
	dayStart := clock.StartOfDay(now, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	records, err := s.Store.RecordsForDay(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return ScanResult{}, err
	}
	schedule, err := s.Store.ScheduleForDay(ctx, employeeID, dayStart)
	if err != nil {
		return ScanResult{}, err
	}

	decision, err := s.M.Decide(records, schedule, now)
	if err != nil {
		return ScanResult{}, err
	}

	switch decision.Mutation.Kind {
	case MutationInsert:
		if _, err := s.Store.InsertRecord(ctx, employeeID, decision.Mutation.At, dayStart, dayEnd, len(records)); err != nil {
			return ScanResult{}, err
		}
	case MutationClose:
		if err := s.Store.CloseRecord(ctx, decision.Mutation.RecordID, decision.Mutation.At); err != nil {
			return ScanResult{}, err
		}
	}

	slog.Info("clock scan applied", "employeeId", employeeID, "action", decision.Action)
	return ScanResult{Action: decision.Action, At: decision.Mutation.At}, nil
}
