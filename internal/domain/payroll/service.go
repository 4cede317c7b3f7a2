package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"timekeep/internal/domain/leave"
	"timekeep/internal/domain/timeclock"
	"timekeep/internal/platform/clock"
)

const snapshotFetchConcurrency = 8

type Service struct {
	Engine    *Engine
	Employees EmployeeSource
	Timeclock TimeclockSource
	Leaves    LeaveSource
	Rules     RuleStoreAPI
	Lines     LineStoreAPI
	Clock     clock.Clock
}

func NewService(engine *Engine, employees EmployeeSource, tc TimeclockSource, leaves LeaveSource, rules RuleStoreAPI, lines LineStoreAPI, clk clock.Clock) *Service {
	return &Service{
		Engine:    engine,
		Employees: employees,
		Timeclock: tc,
		Leaves:    leaves,
		Rules:     rules,
		Lines:     lines,
		Clock:     clk,
	}
}

// RunPreview is a computed, uncommitted payroll run.
type RunPreview struct {
	Period Period `json:"period"`
	Lines  []Line `json:"lines"`
}

// CommitInput selects which previewed lines to persist. An empty EmployeeIDs
// commits every eligible employee. ManualDeductions are keyed by employee ID
// and re-derive netPay before the insert.
type CommitInput struct {
	Reference        time.Time
	EmployeeIDs      []string
	ManualDeductions map[string]float64
	Status           string
}

// Preview computes the run for the period containing ref (or now) without
// writing anything.
func (s *Service) Preview(ctx context.Context, ref time.Time) (*RunPreview, error) {
	if ref.IsZero() {
		ref = s.Clock.Now()
	}
	period := PeriodFor(ref, s.Engine.Location)

	snap, err := s.buildSnapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	lines, err := s.Engine.ComputeRun(*snap)
	if err != nil {
		return nil, err
	}
	return &RunPreview{Period: period, Lines: lines}, nil
}

// Commit recomputes the run from current storage, applies the selection and
// manual deductions, and persists one line per employee. The unique
// (employee, period) constraint makes a double commit fail as a whole.
func (s *Service) Commit(ctx context.Context, in CommitInput) ([]Line, error) {
	status := in.Status
	if status == "" {
		status = StatusPaid
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	preview, err := s.Preview(ctx, in.Reference)
	if err != nil {
		return nil, err
	}

	selected := preview.Lines
	if len(in.EmployeeIDs) > 0 {
		wanted := make(map[string]bool, len(in.EmployeeIDs))
		for _, id := range in.EmployeeIDs {
			wanted[id] = true
		}
		selected = selected[:0:0]
		for _, line := range preview.Lines {
			if wanted[line.EmployeeID] {
				selected = append(selected, line)
			}
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoEligibleEmployees
	}

	for i := range selected {
		selected[i].Status = status
		if amount, ok := in.ManualDeductions[selected[i].EmployeeID]; ok {
			ApplyManualDeduction(&selected[i], decimal.NewFromFloat(amount))
		}
	}

	committed, err := s.Lines.InsertLines(ctx, selected)
	if err != nil {
		return nil, err
	}
	slog.Info("payroll committed",
		"period", preview.Period.Key(s.Engine.Location),
		"lines", len(committed),
	)
	return committed, nil
}

// LinesForPeriod returns the committed lines of the period containing ref.
func (s *Service) LinesForPeriod(ctx context.Context, ref time.Time) (Period, []Line, error) {
	if ref.IsZero() {
		ref = s.Clock.Now()
	}
	period := PeriodFor(ref, s.Engine.Location)
	lines, err := s.Lines.ListByPeriod(ctx, period.Start)
	if err != nil {
		return Period{}, nil, err
	}
	return period, lines, nil
}

func (s *Service) GetLine(ctx context.Context, id string) (*Line, error) {
	return s.Lines.GetByID(ctx, id)
}

func (s *Service) UpdateLineStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.Lines.UpdateStatus(ctx, id, status)
}

type RuleInput struct {
	Name            string
	RaisePercentage float64
	StartAt         time.Time
	EndAt           time.Time
	Active          bool
}

func (s *Service) CreateRule(ctx context.Context, in RuleInput) (*SalaryRule, error) {
	if in.EndAt.Before(in.StartAt) {
		return nil, ErrInvalidRuleWindow
	}
	rule := &SalaryRule{
		Name:            in.Name,
		RaisePercentage: decimal.NewFromFloat(in.RaisePercentage),
		StartAt:         clock.StartOfDay(in.StartAt, s.Engine.Location),
		EndAt:           clock.StartOfDay(in.EndAt, s.Engine.Location),
		Active:          in.Active,
	}
	if err := s.Rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, id string, in RuleInput) (*SalaryRule, error) {
	if in.EndAt.Before(in.StartAt) {
		return nil, ErrInvalidRuleWindow
	}
	rule, err := s.Rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.Name = in.Name
	rule.RaisePercentage = decimal.NewFromFloat(in.RaisePercentage)
	rule.StartAt = clock.StartOfDay(in.StartAt, s.Engine.Location)
	rule.EndAt = clock.StartOfDay(in.EndAt, s.Engine.Location)
	rule.Active = in.Active
	if err := s.Rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	return s.Rules.Delete(ctx, id)
}

func (s *Service) ListRules(ctx context.Context, activeOnly bool) ([]SalaryRule, error) {
	return s.Rules.List(ctx, activeOnly)
}

// buildSnapshot preloads everything the engine reads for the period, fetching
// per-employee data in parallel against the same date range.
func (s *Service) buildSnapshot(ctx context.Context, period Period) (*RunSnapshot, error) {
	employees, err := s.Employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	rules, err := s.Rules.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list salary rules: %w", err)
	}

	loc := s.Engine.Location
	from := period.Start
	to := period.End.AddDate(0, 0, 1)

	snaps := make([]EmployeeSnapshot, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotFetchConcurrency)
	for i := range employees {
		i := i
		g.Go(func() error {
			emp := employees[i]

			records, err := s.Timeclock.RecordsForRange(gctx, emp.ID, from, to)
			if err != nil {
				return fmt.Errorf("clock records for %s: %w", emp.ID, err)
			}
			schedules, err := s.Timeclock.SchedulesForRange(gctx, emp.ID, from, to)
			if err != nil {
				return fmt.Errorf("schedules for %s: %w", emp.ID, err)
			}
			leaves, err := s.Leaves.RecordsForRange(gctx, emp.ID, from, to)
			if err != nil {
				return fmt.Errorf("leave records for %s: %w", emp.ID, err)
			}

			snap := EmployeeSnapshot{
				Employee:  emp,
				Schedules: make(map[string]timeclock.ScheduleEntry, len(schedules)),
				Records:   make(map[string][]timeclock.Record, len(records)),
				Leaves:    make(map[string]leave.Record, len(leaves)),
			}
			for _, sc := range schedules {
				snap.Schedules[clock.DayKey(sc.Date, loc)] = sc
			}
			for _, r := range records {
				key := clock.DayKey(r.CreatedAt, loc)
				snap.Records[key] = append(snap.Records[key], r)
			}
			for _, lv := range leaves {
				snap.Leaves[clock.DayKey(lv.Date, loc)] = lv
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RunSnapshot{Period: period, Employees: snaps, Rules: rules}, nil
}
