package payroll

import (
	"testing"
	"time"
)

func TestPeriodForFromSixteenthOnward(t *testing.T) {
	ref := time.Date(2025, 6, 16, 8, 30, 0, 0, time.UTC)
	got := PeriodFor(ref, time.UTC)

	wantStart := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	if !got.Start.Equal(wantStart) || !got.End.Equal(wantEnd) {
		t.Fatalf("period = %v..%v, want %v..%v", got.Start, got.End, wantStart, wantEnd)
	}
}

func TestPeriodForBeforeSixteenth(t *testing.T) {
	ref := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	got := PeriodFor(ref, time.UTC)

	wantStart := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Start.Equal(wantStart) || !got.End.Equal(wantEnd) {
		t.Fatalf("period = %v..%v, want %v..%v", got.Start, got.End, wantStart, wantEnd)
	}
}

func TestPeriodForYearRollover(t *testing.T) {
	got := PeriodFor(time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC), time.UTC)
	if got.End.Year() != 2026 || got.End.Month() != time.January || got.End.Day() != 15 {
		t.Fatalf("december period should end Jan 15 next year, got %v", got.End)
	}

	got = PeriodFor(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), time.UTC)
	if got.Start.Year() != 2025 || got.Start.Month() != time.December || got.Start.Day() != 16 {
		t.Fatalf("early january period should start Dec 16 prior year, got %v", got.Start)
	}
}

func TestPeriodDaysInclusive(t *testing.T) {
	p := Period{
		Start: time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	days := p.Days()
	if len(days) != 31 {
		t.Fatalf("period has %d days, want 31", len(days))
	}
	if !days[0].Equal(p.Start) || !days[len(days)-1].Equal(p.End) {
		t.Fatalf("days do not span both boundaries: %v..%v", days[0], days[len(days)-1])
	}
}

func TestPeriodForUsesBusinessTimezone(t *testing.T) {
	manila := time.FixedZone("UTC+8", 8*3600)
	// 15th 18:00 UTC is already the 16th in Manila
	ref := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	got := PeriodFor(ref, manila)
	if got.Start.Day() != 16 || got.Start.Month() != time.June {
		t.Fatalf("period start = %v, want Jun 16 in business timezone", got.Start)
	}
}
