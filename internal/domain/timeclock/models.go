package timeclock

import "time"

// Record is one work-segment boundary pair for one employee on one business
// day. At most two records exist per employee per day, ordered by creation
// time: the before-break segment and the after-break segment. A record with
// TimeIn set and TimeOut unset is open.
type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	TimeIn     *time.Time `json:"timeIn,omitempty"`
	TimeOut    *time.Time `json:"timeOut,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r Record) Open() bool {
	return r.TimeIn != nil && r.TimeOut == nil
}

func (r Record) Closed() bool {
	return r.TimeIn != nil && r.TimeOut != nil
}

// ScheduleEntry is the planned shift for one employee on one business date.
// Absence of an entry means the employee is not scheduled that day.
type ScheduleEntry struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
}

type Action string

const (
	ActionClockInWork   Action = "clock_in_work"
	ActionClockOutBreak Action = "clock_out_break"
	ActionClockInBreak  Action = "clock_in_break"
	ActionClockOutDay   Action = "clock_out_day"
)

type MutationKind string

const (
	MutationInsert MutationKind = "insert"
	MutationClose  MutationKind = "close"
)

// Mutation is the single record change a decision produces. The state
// machine never writes; the caller applies the mutation against the store.
type Mutation struct {
	Kind     MutationKind
	RecordID string
	At       time.Time
}

type Decision struct {
	Action   Action
	Mutation Mutation
}

// ScanResult is what a successfully applied scan reports back to the kiosk.
type ScanResult struct {
	Action Action    `json:"action"`
	At     time.Time `json:"at"`
}
