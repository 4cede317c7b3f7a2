package payroll

import (
	"time"

	"timekeep/internal/platform/clock"
)

// Period is the bi-monthly 16th-to-15th pay window. Start and End are
// calendar days in the business timezone, inclusive on both ends.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodFor derives the pay period containing the reference instant: from the
// 16th onward the period runs to the 15th of the next month, before the 16th
// it runs from the 16th of the previous month.
func PeriodFor(ref time.Time, loc *time.Location) Period {
	ref = ref.In(loc)
	year, month, day := ref.Date()

	if day >= 16 {
		return Period{
			Start: time.Date(year, month, 16, 0, 0, 0, 0, loc),
			End:   time.Date(year, month+1, 15, 0, 0, 0, 0, loc),
		}
	}
	return Period{
		Start: time.Date(year, month-1, 16, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, 15, 0, 0, 0, 0, loc),
	}
}

// Days yields every calendar day of the period in order.
func (p Period) Days() []time.Time {
	var days []time.Time
	for cursor := p.Start; !cursor.After(p.End); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, cursor)
	}
	return days
}

// ContainsMonth reports whether the month appears at either boundary of the
// period, which is how the birth-month bonus matches.
func (p Period) ContainsMonth(m time.Month) bool {
	return p.Start.Month() == m || p.End.Month() == m
}

func (p Period) Key(loc *time.Location) string {
	return clock.DayKey(p.Start, loc) + ".." + clock.DayKey(p.End, loc)
}
