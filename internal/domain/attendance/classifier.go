package attendance

import (
	"math"
	"sort"
	"time"

	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

type Status string

const (
	StatusWeekend    Status = "weekend"
	StatusNoSchedule Status = "no_schedule"
	StatusAbsent     Status = "absent"
	StatusPresent    Status = "present"
	StatusLate       Status = "late"
	StatusLeave      Status = "leave"
)

// DayContext is everything known about one employee-day: the schedule (nil
// when not scheduled), the leave record (nil when none), and the day's clock
// records.
type DayContext struct {
	Date     time.Time
	Schedule *timeclock.ScheduleEntry
	Leave    *leave.Record
	Records  []timeclock.Record
}

type DayResult struct {
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	HoursWorked *float64  `json:"hoursWorked,omitempty"`
	MinutesLate int       `json:"minutesLate"`
}

// Classify maps one employee-day onto exactly one status. Leave always wins;
// a scheduled day with no scans is an absence even though the schedule
// existed. It is pure: identical inputs yield identical results.
func Classify(day DayContext, graceMinutes int, loc *time.Location) DayResult {
	result := DayResult{Date: day.Date}

	if day.Leave != nil {
		result.Status = StatusLeave
		return result
	}

	if day.Schedule == nil {
		if clock.IsWeekend(day.Date, loc) {
			result.Status = StatusWeekend
		} else {
			result.Status = StatusNoSchedule
		}
		return result
	}

	if len(day.Records) == 0 {
		result.Status = StatusAbsent
		return result
	}

	lateness := Lateness(day.Records, day.Schedule)
	if lateness > time.Duration(graceMinutes)*time.Minute {
		result.Status = StatusLate
	} else {
		result.Status = StatusPresent
	}
	result.MinutesLate = WholeMinutes(lateness)

	hours := HoursWorked(day.Records, day.Schedule)
	result.HoursWorked = &hours
	return result
}

// Lateness is the gap between the first clock-in and the scheduled start.
// Early arrivals report zero.
func Lateness(records []timeclock.Record, schedule *timeclock.ScheduleEntry) time.Duration {
	ordered := orderRecords(records)
	if len(ordered) == 0 || ordered[0].TimeIn == nil {
		return 0
	}
	late := ordered[0].TimeIn.Sub(schedule.StartAt)
	if late < 0 {
		return 0
	}
	return late
}

// HoursWorked sums both work segments, rounded to one decimal place. A
// missing time-out is clamped to the scheduled end: overtime past schedule
// is neither paid nor counted.
func HoursWorked(records []timeclock.Record, schedule *timeclock.ScheduleEntry) float64 {
	ordered := orderRecords(records)
	if len(ordered) > 2 {
		ordered = ordered[:2]
	}

	var total time.Duration
	for _, r := range ordered {
		if r.TimeIn == nil {
			continue
		}
		out := schedule.EndAt
		if r.TimeOut != nil {
			out = *r.TimeOut
		}
		segment := out.Sub(*r.TimeIn)
		if segment > 0 {
			total += segment
		}
	}
	return math.Round(total.Hours()*10) / 10
}

// WholeMinutes rounds a duration to whole minutes, flooring at zero.
func WholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

func orderRecords(records []timeclock.Record) []timeclock.Record {
	ordered := make([]timeclock.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}
