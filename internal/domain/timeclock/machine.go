package timeclock

import (
	"sort"
	"time"
)

// Machine maps a scan onto the next clock action for one employee-day.
// Decide is a pure function over the day's records; it performs no I/O and
// the caller persists the resulting mutation.
type Machine struct {
	// BreakDwell is the minimum on-the-clock time before the break-out scan
	// is accepted.
	BreakDwell time.Duration
	// ReopenWindow distinguishes a same-shift duplicate scan from a scan
	// arriving hours after the day closed.
	ReopenWindow time.Duration
}

func NewMachine(breakDwell, reopenWindow time.Duration) Machine {
	return Machine{BreakDwell: breakDwell, ReopenWindow: reopenWindow}
}

// Decide inspects today's records (0-2, ordered by creation) and returns the
// action the scan performs plus the record mutation to persist.
func (m Machine) Decide(records []Record, schedule *ScheduleEntry, now time.Time) (Decision, error) {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	switch len(ordered) {
	case 0:
		if schedule == nil {
			return Decision{}, ErrNotScheduled
		}
		return Decision{
			Action:   ActionClockInWork,
			Mutation: Mutation{Kind: MutationInsert, At: now},
		}, nil

	case 1:
		first := ordered[0]
		if first.TimeIn == nil {
			return Decision{}, ErrInvalidDayState
		}
		if first.Open() {
			if now.Sub(*first.TimeIn) < m.BreakDwell {
				return Decision{}, ErrTooEarlyForBreak
			}
			return Decision{
				Action:   ActionClockOutBreak,
				Mutation: Mutation{Kind: MutationClose, RecordID: first.ID, At: now},
			}, nil
		}
		return Decision{
			Action:   ActionClockInBreak,
			Mutation: Mutation{Kind: MutationInsert, At: now},
		}, nil

	case 2:
		second := ordered[1]
		if !ordered[0].Closed() || second.TimeIn == nil {
			return Decision{}, ErrInvalidDayState
		}
		if second.Open() {
			return Decision{
				Action:   ActionClockOutDay,
				Mutation: Mutation{Kind: MutationClose, RecordID: second.ID, At: now},
			}, nil
		}
		if now.Sub(*second.TimeOut) > m.ReopenWindow {
			return Decision{}, ErrTooLateToReopen
		}
		return Decision{}, ErrDayAlreadyComplete

	default:
		return Decision{}, ErrInvalidDayState
	}
}
