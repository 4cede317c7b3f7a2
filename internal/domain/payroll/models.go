package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryRule is a time-bounded percentage raise on an employee's daily rate.
// StartAt and EndAt are calendar dates in the business timezone, inclusive on
// both ends. A deactivated rule keeps its window but contributes nothing.
type SalaryRule struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	RaisePercentage decimal.Decimal `json:"raisePercentage"`
	StartAt         time.Time       `json:"startAt"`
	EndAt           time.Time       `json:"endAt"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ActiveOn reports whether the rule applies to the given calendar day. Dates
// are compared by wall-clock date so that a day in the business timezone
// matches a rule boundary stored as UTC midnight.
func (r SalaryRule) ActiveOn(day time.Time) bool {
	if !r.Active {
		return false
	}
	d := dateOnly(day)
	return !d.Before(dateOnly(r.StartAt)) && !d.After(dateOnly(r.EndAt))
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// RaiseItem is one named component of a line's raise breakdown.
type RaiseItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Line is one employee's computed pay for one period. Monetary figures are
// rounded to 2 decimals, hours to 2 decimals.
type Line struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Position     string    `json:"position"`
	Branch       string    `json:"branch"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`

	DaysWorked            int             `json:"daysWorked"`
	LeaveDays             int             `json:"leaveDays"`
	TotalHours            decimal.Decimal `json:"totalHours"`
	TotalMinutesLate      int             `json:"totalMinutesLate"`
	TotalMinutesUnderTime int             `json:"totalMinutesUnderTime"`

	DailyRate          decimal.Decimal `json:"dailyRate"`
	BaseGrossPay       decimal.Decimal `json:"baseGrossPay"`
	SalaryRaise        decimal.Decimal `json:"salaryRaise"`
	BirthMonthBonus    decimal.Decimal `json:"birthMonthBonus"`
	TotalGrossPay      decimal.Decimal `json:"totalGrossPay"`
	LatenessDeduction  decimal.Decimal `json:"latenessDeduction"`
	UndertimeDeduction decimal.Decimal `json:"undertimeDeduction"`
	ManualDeduction    decimal.Decimal `json:"manualDeduction"`
	NetPay             decimal.Decimal `json:"netPay"`

	Breakdown []RaiseItem `json:"breakdown"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
