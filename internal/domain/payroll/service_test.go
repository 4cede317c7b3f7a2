package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"timekeep/internal/domain/employee"
	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

type fakeEmployeeSource struct {
	employees []employee.Employee
}

func (f *fakeEmployeeSource) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

type fakeTimeclockSource struct {
	records   map[string][]timeclock.Record
	schedules map[string][]timeclock.ScheduleEntry
}

func (f *fakeTimeclockSource) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error) {
	return f.records[employeeID], nil
}

func (f *fakeTimeclockSource) SchedulesForRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.ScheduleEntry, error) {
	return f.schedules[employeeID], nil
}

type fakeLeaveSource struct {
	records map[string][]leave.Record
}

func (f *fakeLeaveSource) RecordsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Record, error) {
	return f.records[employeeID], nil
}

type fakeRuleStore struct {
	rules []SalaryRule
}

func (f *fakeRuleStore) Create(ctx context.Context, rule *SalaryRule) error {
	rule.ID = fmt.Sprintf("rule-%d", len(f.rules)+1)
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRuleStore) Update(ctx context.Context, rule *SalaryRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return ErrRuleNotFound
}

func (f *fakeRuleStore) Delete(ctx context.Context, id string) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return ErrRuleNotFound
}

func (f *fakeRuleStore) GetByID(ctx context.Context, id string) (*SalaryRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			rule := f.rules[i]
			return &rule, nil
		}
	}
	return nil, ErrRuleNotFound
}

func (f *fakeRuleStore) List(ctx context.Context, activeOnly bool) ([]SalaryRule, error) {
	if !activeOnly {
		return f.rules, nil
	}
	var out []SalaryRule
	for _, rule := range f.rules {
		if rule.Active {
			out = append(out, rule)
		}
	}
	return out, nil
}

type fakeLineStore struct {
	mu    sync.Mutex
	lines []Line
}

func (f *fakeLineStore) InsertLines(ctx context.Context, lines []Line) ([]Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, candidate := range lines {
		for _, existing := range f.lines {
			if existing.EmployeeID == candidate.EmployeeID && existing.PeriodStart.Equal(candidate.PeriodStart) {
				return nil, ErrAlreadyCommitted
			}
		}
	}
	out := make([]Line, len(lines))
	for i, line := range lines {
		line.ID = fmt.Sprintf("line-%d", len(f.lines)+1)
		line.CreatedAt = time.Now()
		f.lines = append(f.lines, line)
		out[i] = line
	}
	return out, nil
}

func (f *fakeLineStore) ListByPeriod(ctx context.Context, periodStart time.Time) ([]Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Line
	for _, line := range f.lines {
		if line.PeriodStart.Equal(periodStart) {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeLineStore) GetByID(ctx context.Context, id string) (*Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == id {
			line := f.lines[i]
			return &line, nil
		}
	}
	return nil, ErrLineNotFound
}

func (f *fakeLineStore) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == id {
			f.lines[i].Status = status
			return nil
		}
	}
	return ErrLineNotFound
}

// serviceFixture wires a Service over fakes with two employees who each
// worked the first day of the May 16 period.
func serviceFixture() (*Service, *fakeLineStore) {
	period := testPeriod()
	now := period.Start.AddDate(0, 0, 20)

	first := payrollEmployee()
	second := payrollEmployee()
	second.ID = "emp-2"
	second.FirstName = "Ana"

	tc := &fakeTimeclockSource{
		records:   map[string][]timeclock.Record{},
		schedules: map[string][]timeclock.ScheduleEntry{},
	}
	for _, emp := range []employee.Employee{first, second} {
		snap := emptySnapshot(emp)
		addWorkedDay(&snap, period.Start, 0)
		for _, sc := range snap.Schedules {
			tc.schedules[emp.ID] = append(tc.schedules[emp.ID], sc)
		}
		for _, recs := range snap.Records {
			tc.records[emp.ID] = append(tc.records[emp.ID], recs...)
		}
	}

	lines := &fakeLineStore{}
	svc := NewService(
		testEngine(),
		&fakeEmployeeSource{employees: []employee.Employee{first, second}},
		tc,
		&fakeLeaveSource{records: map[string][]leave.Record{}},
		&fakeRuleStore{},
		lines,
		&clock.Fixed{Instant: now},
	)
	return svc, lines
}

func TestPreviewComputesWithoutWriting(t *testing.T) {
	svc, lines := serviceFixture()

	preview, err := svc.Preview(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(preview.Lines) != 2 {
		t.Fatalf("preview has %d lines, want 2", len(preview.Lines))
	}
	if !preview.Period.Start.Equal(testPeriod().Start) {
		t.Fatalf("period start = %v, want %v", preview.Period.Start, testPeriod().Start)
	}
	if len(lines.lines) != 0 {
		t.Fatalf("preview persisted %d lines", len(lines.lines))
	}
}

func TestCommitAppliesSelectionAndDeductions(t *testing.T) {
	svc, _ := serviceFixture()

	committed, err := svc.Commit(context.Background(), CommitInput{
		EmployeeIDs:      []string{"emp-1"},
		ManualDeductions: map[string]float64{"emp-1": 100},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(committed) != 1 {
		t.Fatalf("committed %d lines, want 1", len(committed))
	}
	line := committed[0]
	if line.EmployeeID != "emp-1" {
		t.Fatalf("committed wrong employee: %s", line.EmployeeID)
	}
	if line.Status != StatusPaid {
		t.Fatalf("status = %s, want %s", line.Status, StatusPaid)
	}
	// one worked day at 500 minus the manual 100
	if got := line.NetPay.InexactFloat64(); got != 400 {
		t.Fatalf("netPay = %v, want 400", got)
	}
}

func TestCommitTwiceFails(t *testing.T) {
	svc, _ := serviceFixture()

	if _, err := svc.Commit(context.Background(), CommitInput{}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := svc.Commit(context.Background(), CommitInput{}); err != ErrAlreadyCommitted {
		t.Fatalf("second commit err = %v, want ErrAlreadyCommitted", err)
	}
}

func TestCommitUnknownSelection(t *testing.T) {
	svc, _ := serviceFixture()

	_, err := svc.Commit(context.Background(), CommitInput{EmployeeIDs: []string{"nobody"}})
	if err != ErrNoEligibleEmployees {
		t.Fatalf("err = %v, want ErrNoEligibleEmployees", err)
	}
}

func TestCommitRejectsUnknownStatus(t *testing.T) {
	svc, _ := serviceFixture()

	_, err := svc.Commit(context.Background(), CommitInput{Status: "lost"})
	if err != ErrInvalidStatus {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateLineStatus(t *testing.T) {
	svc, lines := serviceFixture()

	committed, err := svc.Commit(context.Background(), CommitInput{})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := svc.UpdateLineStatus(context.Background(), committed[0].ID, StatusDelayed); err != nil {
		t.Fatalf("UpdateLineStatus: %v", err)
	}
	stored, err := lines.GetByID(context.Background(), committed[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusDelayed {
		t.Fatalf("status = %s, want %s", stored.Status, StatusDelayed)
	}

	if err := svc.UpdateLineStatus(context.Background(), committed[0].ID, "gone"); err != ErrInvalidStatus {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestRuleCRUD(t *testing.T) {
	svc, _ := serviceFixture()
	ctx := context.Background()

	start := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	rule, err := svc.CreateRule(ctx, RuleInput{
		Name:            "peak season",
		RaisePercentage: 10,
		StartAt:         start,
		EndAt:           start.AddDate(0, 1, 0),
		Active:          true,
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if rule.ID == "" {
		t.Fatal("created rule has no id")
	}
	if !rule.Active {
		t.Fatal("created rule should be active")
	}

	if _, err := svc.CreateRule(ctx, RuleInput{
		Name:    "backwards",
		StartAt: start,
		EndAt:   start.AddDate(0, 0, -1),
	}); err != ErrInvalidRuleWindow {
		t.Fatalf("err = %v, want ErrInvalidRuleWindow", err)
	}

	updated, err := svc.UpdateRule(ctx, rule.ID, RuleInput{
		Name:            "peak season extended",
		RaisePercentage: 12,
		StartAt:         start,
		EndAt:           start.AddDate(0, 2, 0),
		Active:          false,
	})
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.Name != "peak season extended" {
		t.Fatalf("name = %s", updated.Name)
	}
	if updated.Active {
		t.Fatal("deactivated rule still active")
	}

	active, err := svc.ListRules(ctx, true)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active rules = %d, want 0", len(active))
	}
	all, err := svc.ListRules(ctx, false)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("all rules = %d, want 1", len(all))
	}

	if err := svc.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := svc.DeleteRule(ctx, rule.ID); err != ErrRuleNotFound {
		t.Fatalf("err = %v, want ErrRuleNotFound", err)
	}
}
