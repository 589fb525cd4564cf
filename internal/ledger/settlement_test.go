package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

func TestNewSettlement(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		amount  int64
		wantErr error
	}{
		{"valid", "alice", "bob", 5000, nil},
		{"same party", "alice", "alice", 5000, ErrSameParty},
		{"zero amount", "alice", "bob", 0, ErrInvalidAmount},
		{"negative amount", "alice", "bob", -1, ErrInvalidAmount},
		{"missing from", "", "bob", 100, ErrMissingField},
		{"missing to", "alice", "", 100, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSettlement(tt.from, tt.to, money.Cents(tt.amount), "  thanks  ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSettlement() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSettlement() unexpected error: %v", err)
			}
			if s.Note != "thanks" {
				t.Errorf("Note = %q, want trimmed %q", s.Note, "thanks")
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := NewSettlement("alice", "alice", 100, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "to_party_id" {
		t.Errorf("Field = %q, want to_party_id", verr.Field)
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false, want true")
	}
}

func TestNewSubscriptionValidation(t *testing.T) {
	due := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		mutate  func(name *string, cycle *models.Cycle, members *[]string)
		wantErr error
	}{
		{"valid", func(*string, *models.Cycle, *[]string) {}, nil},
		{"blank name", func(n *string, _ *models.Cycle, _ *[]string) { *n = "  " }, ErrMissingField},
		{"unknown cycle", func(_ *string, c *models.Cycle, _ *[]string) { *c = "daily" }, ErrMissingField},
		{"duplicate members", func(_ *string, _ *models.Cycle, m *[]string) { *m = []string{"a", "a"} }, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, cycle, members := "Spotify", models.CycleMonthly, []string{"a", "b"}
			tt.mutate(&name, &cycle, &members)
			_, err := NewSubscription(name, 999, cycle, "a", members, due)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSubscription() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
