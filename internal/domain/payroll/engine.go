package payroll

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"timekeep/internal/domain/attendance"
	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

// EmployeeSnapshot is one employee's pre-fetched data for a whole period,
// keyed by business-timezone day.
type EmployeeSnapshot struct {
	Employee  employee.Employee
	Schedules map[string]timeclock.ScheduleEntry
	Records   map[string][]timeclock.Record
	Leaves    map[string]leave.Record
}

// RunSnapshot is everything a payroll computation reads. It is assembled once
// per run; the engine itself never touches storage.
type RunSnapshot struct {
	Period    Period
	Employees []EmployeeSnapshot
	Rules     []SalaryRule
}

// Engine holds the monetary policy knobs. Its methods are pure: the same
// snapshot always produces the same lines.
type Engine struct {
	GraceMinutes    int
	PerMinuteRate   decimal.Decimal
	ScheduledBreak  time.Duration
	PositionBonuses map[string]decimal.Decimal
	Location        *time.Location
}

func NewEngine(graceMinutes int, perMinuteRate float64, scheduledBreak time.Duration, positionBonuses map[string]float64, loc *time.Location) *Engine {
	bonuses := make(map[string]decimal.Decimal, len(positionBonuses))
	for position, amount := range positionBonuses {
		bonuses[position] = decimal.NewFromFloat(amount)
	}
	return &Engine{
		GraceMinutes:    graceMinutes,
		PerMinuteRate:   decimal.NewFromFloat(perMinuteRate),
		ScheduledBreak:  scheduledBreak,
		PositionBonuses: bonuses,
		Location:        loc,
	}
}

// ComputeLine walks every calendar day of the period for one employee.
// Ineligible employees (no worked day, no leave day) yield a nil line.
func (e *Engine) ComputeLine(snap EmployeeSnapshot, rules []SalaryRule, period Period) (*Line, error) {
	emp := snap.Employee
	if emp.DailyRate <= 0 {
		return nil, ErrMissingDailyRate
	}
	dailyRate := decimal.NewFromFloat(emp.DailyRate)

	var (
		daysWorked      int
		leaveDays       int
		totalHours      float64
		minutesLate     int
		minutesUnder    int
		salaryRaise     = decimal.Zero
		raiseByRuleName = make(map[string]decimal.Decimal)
	)

	grace := time.Duration(e.GraceMinutes) * time.Minute
	for _, day := range period.Days() {
		key := clock.DayKey(day, e.Location)

		if _, onLeave := snap.Leaves[key]; onLeave {
			leaveDays++
			continue
		}
		schedule, scheduled := snap.Schedules[key]
		if !scheduled {
			continue
		}
		records := snap.Records[key]
		if len(records) == 0 {
			continue // absence: the day simply does not count
		}

		daysWorked++
		hours := attendance.HoursWorked(records, &schedule)
		totalHours += hours

		if late := attendance.Lateness(records, &schedule); late > grace {
			minutesLate += attendance.WholeMinutes(late) - e.GraceMinutes
		}

		requiredHours := (schedule.EndAt.Sub(schedule.StartAt) - e.ScheduledBreak).Hours()
		if hours < requiredHours {
			minutesUnder += int(math.Round((requiredHours - hours) * 60))
		}

		for _, rule := range rules {
			if !rule.ActiveOn(day) {
				continue
			}
			amount := dailyRate.Mul(rule.RaisePercentage).Div(decimal.NewFromInt(100))
			salaryRaise = salaryRaise.Add(amount)
			raiseByRuleName[rule.Name] = raiseByRuleName[rule.Name].Add(amount)
		}
	}

	if daysWorked == 0 && leaveDays == 0 {
		return nil, nil
	}

	baseGross := decimal.NewFromInt(int64(daysWorked + leaveDays)).Mul(dailyRate)
	latenessDeduction := decimal.NewFromInt(int64(minutesLate)).Mul(e.PerMinuteRate)
	undertimeDeduction := decimal.NewFromInt(int64(minutesUnder)).Mul(e.PerMinuteRate)

	bonus := decimal.Zero
	if emp.BirthDate != nil && period.ContainsMonth(emp.BirthDate.Month()) {
		bonus = e.PositionBonuses[emp.Position]
	}

	breakdown := make([]RaiseItem, 0, len(raiseByRuleName)+1)
	for name, amount := range raiseByRuleName {
		breakdown = append(breakdown, RaiseItem{Name: name, Amount: amount.Round(2)})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Name < breakdown[j].Name })
	if bonus.IsPositive() {
		breakdown = append(breakdown, RaiseItem{Name: BirthMonthBonusLabel, Amount: bonus.Round(2)})
	}

	totalGross := baseGross.Add(salaryRaise).Add(bonus)

	line := &Line{
		EmployeeID:            emp.ID,
		EmployeeName:          emp.FullName(),
		Position:              emp.Position,
		Branch:                emp.Branch,
		PeriodStart:           period.Start,
		PeriodEnd:             period.End,
		DaysWorked:            daysWorked,
		LeaveDays:             leaveDays,
		TotalHours:            decimal.NewFromFloat(totalHours).Round(2),
		TotalMinutesLate:      minutesLate,
		TotalMinutesUnderTime: minutesUnder,
		DailyRate:             dailyRate.Round(2),
		BaseGrossPay:          baseGross.Round(2),
		SalaryRaise:           salaryRaise.Round(2),
		BirthMonthBonus:       bonus.Round(2),
		TotalGrossPay:         totalGross.Round(2),
		LatenessDeduction:     latenessDeduction.Round(2),
		UndertimeDeduction:    undertimeDeduction.Round(2),
		ManualDeduction:       decimal.Zero,
		Breakdown:             breakdown,
		Status:                StatusUnpaid,
	}
	line.NetPay = deriveNetPay(line)
	return line, nil
}

// ComputeRun computes every eligible employee in parallel. Employees with a
// data problem (missing rate) are skipped, not fatal. A run with no eligible
// employees at all is ErrNoEligibleEmployees.
func (e *Engine) ComputeRun(snap RunSnapshot) ([]Line, error) {
	lines := make([]*Line, len(snap.Employees))

	var g errgroup.Group
	for i := range snap.Employees {
		i := i
		g.Go(func() error {
			line, err := e.ComputeLine(snap.Employees[i], snap.Rules, snap.Period)
			if err != nil {
				return nil // skip this employee, keep the batch alive
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line != nil {
			out = append(out, *line)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoEligibleEmployees
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

// ApplyManualDeduction sets the administrator override and re-derives netPay
// with the same formula the original computation used.
func ApplyManualDeduction(line *Line, amount decimal.Decimal) {
	line.ManualDeduction = amount.Round(2)
	line.NetPay = deriveNetPay(line)
}

func deriveNetPay(line *Line) decimal.Decimal {
	net := line.TotalGrossPay.
		Sub(line.LatenessDeduction).
		Sub(line.UndertimeDeduction).
		Sub(line.ManualDeduction)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net.Round(2)
}
