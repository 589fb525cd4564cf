package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCycleNext(t *testing.T) {
	tests := []struct {
		name   string
		cycle  Cycle
		anchor time.Time
		from   time.Time
		want   time.Time
	}{
		{"monthly clamps to february", CycleMonthly, date(2024, 1, 31), date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly returns to anchor day", CycleMonthly, date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31)},
		{"monthly clamps to thirty days", CycleMonthly, date(2024, 1, 31), date(2024, 3, 31), date(2024, 4, 30)},
		{"monthly across year end", CycleMonthly, date(2025, 12, 31), date(2025, 12, 31), date(2026, 1, 31)},
		{"quarterly from a clamped start", CycleQuarterly, date(2025, 11, 30), date(2026, 2, 28), date(2026, 5, 30)},
		{"yearly leap day", CycleYearly, date(2024, 2, 29), date(2025, 2, 28), date(2026, 2, 28)},
		{"weekly ignores anchor", CycleWeekly, date(2024, 1, 31), date(2024, 2, 28), date(2024, 3, 6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cycle.Next(tt.anchor, tt.from); !got.Equal(tt.want) {
				t.Errorf("Next(%v, %v) = %v, want %v", tt.anchor.Format(time.DateOnly), tt.from.Format(time.DateOnly),
					got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestAdvanceKeepsAnchorDay(t *testing.T) {
	sub := Subscription{Cycle: CycleMonthly, NextDueDate: date(2026, 1, 31), AnchorDate: date(2026, 1, 31), Active: true}

	want := []time.Time{date(2026, 2, 28), date(2026, 3, 31), date(2026, 4, 30), date(2026, 5, 31)}
	for _, w := range want {
		sub = sub.Advance()
		if !sub.NextDueDate.Equal(w) {
			t.Fatalf("Expected next due %v, got %v", w.Format(time.DateOnly), sub.NextDueDate.Format(time.DateOnly))
		}
	}

	period := sub.CurrentPeriod()
	if !period.End.Equal(date(2026, 6, 30)) {
		t.Errorf("Expected period ending Jun 30, got %v", period.End.Format(time.DateOnly))
	}
}
