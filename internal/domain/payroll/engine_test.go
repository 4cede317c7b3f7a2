package payroll

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

func testEngine() *Engine {
	return NewEngine(15, 1.60, time.Hour, map[string]float64{"cashier": 1000}, time.UTC)
}

func testPeriod() Period {
	return Period{
		Start: time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func emptySnapshot(emp employee.Employee) EmployeeSnapshot {
	return EmployeeSnapshot{
		Employee:  emp,
		Schedules: map[string]timeclock.ScheduleEntry{},
		Records:   map[string][]timeclock.Record{},
		Leaves:    map[string]leave.Record{},
	}
}

func payrollEmployee() employee.Employee {
	return employee.Employee{
		ID:        "emp-1",
		FirstName: "Maria",
		LastName:  "Santos",
		Position:  "cashier",
		Branch:    "main",
		DailyRate: 500,
		Status:    employee.StatusActive,
	}
}

// addWorkedDay schedules 09:00-18:00 and clocks two segments shifted by
// lateMinutes, each 4 hours long, so hours worked stay at 8.0 regardless of
// the arrival time.
func addWorkedDay(snap *EmployeeSnapshot, day time.Time, lateMinutes int) {
	key := clock.DayKey(day, time.UTC)
	snap.Schedules[key] = timeclock.ScheduleEntry{
		ID:         "sched-" + key,
		EmployeeID: snap.Employee.ID,
		Date:       day,
		StartAt:    day.Add(9 * time.Hour),
		EndAt:      day.Add(18 * time.Hour),
	}

	shift := time.Duration(lateMinutes) * time.Minute
	firstIn := day.Add(9 * time.Hour).Add(shift)
	firstOut := firstIn.Add(4 * time.Hour)
	secondIn := firstOut.Add(time.Hour)
	secondOut := secondIn.Add(4 * time.Hour)

	snap.Records[key] = []timeclock.Record{
		{ID: key + "-1", EmployeeID: snap.Employee.ID, TimeIn: &firstIn, TimeOut: &firstOut, CreatedAt: firstIn},
		{ID: key + "-2", EmployeeID: snap.Employee.ID, TimeIn: &secondIn, TimeOut: &secondOut, CreatedAt: secondIn},
	}
}

func TestComputeLineTenDaysThirtyMinutesLate(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())

	// nine clean days and one arrival 45 minutes after start: 15 minutes of
	// grace leaves exactly 30 penalized minutes.
	for i := 0; i < 9; i++ {
		addWorkedDay(&snap, period.Start.AddDate(0, 0, i), 0)
	}
	addWorkedDay(&snap, period.Start.AddDate(0, 0, 9), 45)

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line == nil {
		t.Fatal("expected an eligible line")
	}

	if line.DaysWorked != 10 || line.LeaveDays != 0 {
		t.Fatalf("daysWorked=%d leaveDays=%d, want 10/0", line.DaysWorked, line.LeaveDays)
	}
	if line.TotalMinutesLate != 30 {
		t.Fatalf("totalMinutesLate = %d, want 30", line.TotalMinutesLate)
	}
	if line.TotalMinutesUnderTime != 0 {
		t.Fatalf("totalMinutesUnderTime = %d, want 0", line.TotalMinutesUnderTime)
	}
	if !line.BaseGrossPay.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("baseGrossPay = %s, want 5000", line.BaseGrossPay)
	}
	if !line.LatenessDeduction.Equal(decimal.NewFromInt(48)) {
		t.Fatalf("latenessDeduction = %s, want 48", line.LatenessDeduction)
	}
	if !line.NetPay.Equal(decimal.NewFromInt(4952)) {
		t.Fatalf("netPay = %s, want 4952", line.NetPay)
	}
}

func TestComputeLineArrivalAtGraceBoundary(t *testing.T) {
	engine := testEngine()
	period := testPeriod()

	snap := emptySnapshot(payrollEmployee())
	addWorkedDay(&snap, period.Start, 15)

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line.TotalMinutesLate != 0 {
		t.Fatalf("arrival at the grace boundary penalized: %d minutes", line.TotalMinutesLate)
	}

	snap = emptySnapshot(payrollEmployee())
	addWorkedDay(&snap, period.Start, 16)

	line, err = engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line.TotalMinutesLate != 1 {
		t.Fatalf("one minute past grace should add exactly 1, got %d", line.TotalMinutesLate)
	}
}

func TestComputeLineUndertime(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())

	day := period.Start
	key := clock.DayKey(day, time.UTC)
	snap.Schedules[key] = timeclock.ScheduleEntry{
		EmployeeID: "emp-1", Date: day,
		StartAt: day.Add(9 * time.Hour), EndAt: day.Add(18 * time.Hour),
	}
	in1 := day.Add(9 * time.Hour)
	out1 := day.Add(13 * time.Hour)
	in2 := day.Add(14 * time.Hour)
	out2 := day.Add(17 * time.Hour) // left an hour early
	snap.Records[key] = []timeclock.Record{
		{TimeIn: &in1, TimeOut: &out1, CreatedAt: in1},
		{TimeIn: &in2, TimeOut: &out2, CreatedAt: in2},
	}

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line.TotalMinutesUnderTime != 60 {
		t.Fatalf("totalMinutesUnderTime = %d, want 60", line.TotalMinutesUnderTime)
	}
	want := decimal.NewFromInt(60).Mul(decimal.NewFromFloat(1.60)).Round(2)
	if !line.UndertimeDeduction.Equal(want) {
		t.Fatalf("undertimeDeduction = %s, want %s", line.UndertimeDeduction, want)
	}
}

func TestComputeLineLeaveDaysPaidWithoutDTRMath(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())

	addWorkedDay(&snap, period.Start, 0)
	leaveDay := period.Start.AddDate(0, 0, 1)
	key := clock.DayKey(leaveDay, time.UTC)
	snap.Leaves[key] = leave.Record{EmployeeID: "emp-1", Date: leaveDay, Kind: leave.KindDayOff}
	// a schedule and a very late scan on the leave day must be ignored
	snap.Schedules[key] = timeclock.ScheduleEntry{
		EmployeeID: "emp-1", Date: leaveDay,
		StartAt: leaveDay.Add(9 * time.Hour), EndAt: leaveDay.Add(18 * time.Hour),
	}
	lateIn := leaveDay.Add(12 * time.Hour)
	snap.Records[key] = []timeclock.Record{{TimeIn: &lateIn, CreatedAt: lateIn}}

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line.DaysWorked != 1 || line.LeaveDays != 1 {
		t.Fatalf("daysWorked=%d leaveDays=%d, want 1/1", line.DaysWorked, line.LeaveDays)
	}
	if !line.BaseGrossPay.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("baseGrossPay = %s, want 1000", line.BaseGrossPay)
	}
	if line.TotalMinutesLate != 0 {
		t.Fatalf("leave day produced lateness: %d", line.TotalMinutesLate)
	}
}

func TestComputeLineSalaryRaisesStack(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())
	addWorkedDay(&snap, period.Start, 0)
	addWorkedDay(&snap, period.Start.AddDate(0, 0, 1), 0)

	rules := []SalaryRule{
		{
			Name:            "summer adjustment",
			RaisePercentage: decimal.NewFromInt(10),
			StartAt:         period.Start,
			EndAt:           period.End,
			Active:          true,
		},
		{
			Name:            "anniversary promo",
			RaisePercentage: decimal.NewFromInt(5),
			StartAt:         period.Start,
			EndAt:           period.Start, // first day only
			Active:          true,
		},
	}

	line, err := engine.ComputeLine(snap, rules, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	// 10% of 500 on two days plus 5% of 500 on one day
	if !line.SalaryRaise.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("salaryRaise = %s, want 125", line.SalaryRaise)
	}
	if len(line.Breakdown) != 2 {
		t.Fatalf("breakdown has %d items, want 2", len(line.Breakdown))
	}
	if line.Breakdown[0].Name != "anniversary promo" || line.Breakdown[1].Name != "summer adjustment" {
		t.Fatalf("breakdown order unexpected: %+v", line.Breakdown)
	}
}

func TestComputeLineSkipsDeactivatedRule(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())
	addWorkedDay(&snap, period.Start, 0)

	rules := []SalaryRule{{
		Name:            "suspended promo",
		RaisePercentage: decimal.NewFromInt(10),
		StartAt:         period.Start,
		EndAt:           period.End,
		Active:          false,
	}}

	line, err := engine.ComputeLine(snap, rules, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if !line.SalaryRaise.IsZero() {
		t.Fatalf("salaryRaise = %s, want 0 for a deactivated rule", line.SalaryRaise)
	}
	if len(line.Breakdown) != 0 {
		t.Fatalf("breakdown should be empty, got %+v", line.Breakdown)
	}
}

func TestComputeLineBirthMonthBonus(t *testing.T) {
	engine := testEngine()
	period := testPeriod()

	birth := time.Date(1990, 6, 20, 0, 0, 0, 0, time.UTC) // June matches period end month
	emp := payrollEmployee()
	emp.BirthDate = &birth
	snap := emptySnapshot(emp)
	addWorkedDay(&snap, period.Start, 0)

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if !line.BirthMonthBonus.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("birthMonthBonus = %s, want 1000", line.BirthMonthBonus)
	}
	last := line.Breakdown[len(line.Breakdown)-1]
	if last.Name != BirthMonthBonusLabel {
		t.Fatalf("bonus missing from breakdown: %+v", line.Breakdown)
	}

	// no bonus when the position has no configured amount
	emp.Position = "stockman"
	snap = emptySnapshot(emp)
	addWorkedDay(&snap, period.Start, 0)
	line, err = engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if !line.BirthMonthBonus.IsZero() {
		t.Fatalf("unconfigured position got a bonus: %s", line.BirthMonthBonus)
	}
}

func TestComputeLineExcludesIdleEmployee(t *testing.T) {
	engine := testEngine()
	snap := emptySnapshot(payrollEmployee())

	line, err := engine.ComputeLine(snap, nil, testPeriod())
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}
	if line != nil {
		t.Fatalf("employee with no worked or leave days should be excluded, got %+v", line)
	}
}

func TestComputeLineMissingRate(t *testing.T) {
	engine := testEngine()
	emp := payrollEmployee()
	emp.DailyRate = 0
	snap := emptySnapshot(emp)
	addWorkedDay(&snap, testPeriod().Start, 0)

	if _, err := engine.ComputeLine(snap, nil, testPeriod()); err != ErrMissingDailyRate {
		t.Fatalf("err = %v, want ErrMissingDailyRate", err)
	}
}

func TestComputeRunIsDeterministic(t *testing.T) {
	engine := testEngine()
	period := testPeriod()

	first := emptySnapshot(payrollEmployee())
	addWorkedDay(&first, period.Start, 20)
	second := payrollEmployee()
	second.ID = "emp-2"
	second.FirstName = "Ana"
	other := emptySnapshot(second)
	addWorkedDay(&other, period.Start, 0)

	run := RunSnapshot{Period: period, Employees: []EmployeeSnapshot{first, other}}

	a, err := engine.ComputeRun(run)
	if err != nil {
		t.Fatalf("ComputeRun: %v", err)
	}
	b, err := engine.ComputeRun(run)
	if err != nil {
		t.Fatalf("ComputeRun: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs over the same snapshot differ:\n%+v\n%+v", a, b)
	}
	if a[0].EmployeeName != "Ana Santos" {
		t.Fatalf("lines not sorted by name: %s first", a[0].EmployeeName)
	}
}

func TestComputeRunNoEligibleEmployees(t *testing.T) {
	engine := testEngine()
	run := RunSnapshot{
		Period:    testPeriod(),
		Employees: []EmployeeSnapshot{emptySnapshot(payrollEmployee())},
	}
	if _, err := engine.ComputeRun(run); err != ErrNoEligibleEmployees {
		t.Fatalf("err = %v, want ErrNoEligibleEmployees", err)
	}
}

func TestApplyManualDeductionRederivesNetPay(t *testing.T) {
	engine := testEngine()
	period := testPeriod()
	snap := emptySnapshot(payrollEmployee())
	for i := 0; i < 10; i++ {
		addWorkedDay(&snap, period.Start.AddDate(0, 0, i), 0)
	}

	line, err := engine.ComputeLine(snap, nil, period)
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}

	ApplyManualDeduction(line, decimal.NewFromInt(200))
	if !line.NetPay.Equal(decimal.NewFromInt(4800)) {
		t.Fatalf("netPay after deduction = %s, want 4800", line.NetPay)
	}

	// netPay floors at zero
	ApplyManualDeduction(line, decimal.NewFromInt(10000))
	if !line.NetPay.IsZero() {
		t.Fatalf("netPay = %s, want 0", line.NetPay)
	}
}
