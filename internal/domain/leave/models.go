package leave

import "time"

// Record marks one employee-date as leave. At most one record exists per
// employee per date; its presence overrides any schedule/clock-derived
// attendance classification for that date.
type Record struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	KindDayOff    = "day_off"
	KindSIL       = "sil"
	KindEmergency = "emergency"
)

// SILBlockDays is the size of a service-incentive-leave block. The block is
// five literal consecutive calendar days; rest days are not skipped, matching
// long-standing behavior the business has not asked to change.
const SILBlockDays = 5

type SweepSummary struct {
	EmployeesChecked int `json:"employeesChecked"`
	Granted          int `json:"granted"`
}
