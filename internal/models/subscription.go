package models

import (
	"fmt"
	"time"

	"github.com/mmynk/swisscoin/internal/money"
)

// Cycle is how often a subscription bills.
type Cycle string

const (
	CycleWeekly    Cycle = "weekly"
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// ParseCycle validates a cycle name.
func ParseCycle(s string) (Cycle, error) {
	switch c := Cycle(s); c {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return c, nil
	}
	return "", fmt.Errorf("unknown billing cycle %q", s)
}

// Next returns the start of the period following the one starting at t.
// Month-based cycles keep anchor's day of month, clamped to the last day of
// shorter months: anchored on Jan 31, the period after Jan 31 starts on
// Feb 28 (or 29) and the one after that on Mar 31.
func (c Cycle) Next(anchor, t time.Time) time.Time {
	switch c {
	case CycleWeekly:
		return t.AddDate(0, 0, 7)
	case CycleQuarterly:
		return addMonths(anchor, monthsBetween(anchor, t)+3)
	case CycleYearly:
		return addMonths(anchor, monthsBetween(anchor, t)+12)
	default:
		return addMonths(anchor, monthsBetween(anchor, t)+1)
	}
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Subscription is the template recurring payments are generated from.
// It is never edited in place: Pause, Resume and Advance return new values.
type Subscription struct {
	// ID is the unique identifier for the subscription (UUID format).
	ID string

	// Name is the display name (e.g., "Netflix").
	Name string

	// Amount is what one billing period costs.
	Amount money.Amount

	// Cycle is the billing frequency.
	Cycle Cycle

	// PayerID is the party who pays the provider each period.
	PayerID string

	// Members are the parties sharing the cost, split equally in this order.
	Members []string

	// NextDueDate is the start of the next period to bill.
	NextDueDate time.Time

	// AnchorDate is the first due date. Month-based cycles bill on its day
	// of month.
	AnchorDate time.Time

	// Active is false while the subscription is paused.
	Active bool

	// CreatedAt is the Unix timestamp when the subscription was created.
	CreatedAt int64
}

// CurrentPeriod returns the billing period starting at NextDueDate.
func (s Subscription) CurrentPeriod() Period {
	return s.PeriodStarting(s.NextDueDate)
}

// PeriodStarting returns the billing period that starts at start.
func (s Subscription) PeriodStarting(start time.Time) Period {
	anchor := s.AnchorDate
	if anchor.IsZero() {
		anchor = start
	}
	return Period{Start: start, End: s.Cycle.Next(anchor, start)}
}

// IsDue reports whether the subscription should be billed at now.
func (s Subscription) IsDue(now time.Time) bool {
	return s.Active && !now.Before(s.NextDueDate)
}

// Advance returns a copy due at the start of the following period.
func (s Subscription) Advance() Subscription {
	s.NextDueDate = s.CurrentPeriod().End
	s.Members = append([]string(nil), s.Members...)
	return s
}

// Pause returns a paused copy.
func (s Subscription) Pause() Subscription {
	s.Active = false
	s.Members = append([]string(nil), s.Members...)
	return s
}

// Resume returns an active copy.
func (s Subscription) Resume() Subscription {
	s.Active = true
	s.Members = append([]string(nil), s.Members...)
	return s
}
