// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/swisscoin/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict is returned (wrapped) when a conditional write finds the
	// record changed since it was read.
	ErrConflict = errors.New("storage: changed since read")
)

// AdvanceConflict explains why a subscription could not be moved off due.
// current is the stored subscription, nil if it no longer exists.
func AdvanceConflict(current *models.Subscription, subscriptionID string, due time.Time) error {
	switch {
	case current == nil:
		return fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
	case !current.Active:
		return fmt.Errorf("%w: subscription %s was paused", ErrConflict, subscriptionID)
	default:
		return fmt.Errorf("%w: subscription %s is due %s, not %s", ErrConflict, subscriptionID,
			current.NextDueDate.Format(time.DateOnly), due.Format(time.DateOnly))
	}
}

// FactFilter selects the facts a balance computation needs.
// Empty fields do not filter.
type FactFilter struct {
	// GroupID keeps only facts tagged with this group.
	GroupID string

	// SubscriptionID keeps only facts tagged with this subscription.
	SubscriptionID string

	// PartyIDs keeps only facts at least one of these parties takes part in.
	PartyIDs []string
}

// SettlementFilter selects settlements to list.
type SettlementFilter struct {
	GroupID string
	PartyID string
}

// FactStore reads consistent snapshots of ledger facts and appends new ones.
type FactStore interface {
	// LoadFacts returns every fact matching filter together with the ledger
	// revision the snapshot was read at.
	LoadFacts(ctx context.Context, filter FactFilter) (models.Facts, int64, error)

	// Revision returns the current ledger revision. It increases on every
	// fact write.
	Revision(ctx context.Context) (int64, error)

	// CreateSettlement persists a new settlement. ID and CreatedAt are
	// populated by the store if empty.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// AppendSettlement is CreateSettlement conditional on the ledger still
	// being at revision. It fails with ErrConflict otherwise.
	AppendSettlement(ctx context.Context, settlement *models.Settlement, revision int64) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the service layer.
type Store interface {
	FactStore

	CreateParty(ctx context.Context, party *models.Party) error
	GetParty(ctx context.Context, partyID string) (*models.Party, error)
	ListParties(ctx context.Context) ([]*models.Party, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	AddGroupMembers(ctx context.Context, groupID string, partyIDs []string) error

	// CreateExpense persists a new expense. ID and CreatedAt are populated
	// by the store if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// ReplaceExpense swaps the stored expense with the same ID for expense
	// in one transaction.
	ReplaceExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	// SetSubscriptionActive pauses or resumes a subscription and returns it.
	// Nothing but the active flag changes.
	SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) (*models.Subscription, error)
	// ListDueSubscriptions returns active subscriptions due at or before now.
	ListDueSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	// CreateRecurringPayment stores payment and moves its subscription's
	// due date to nextDue in one transaction. It fails with
	// ledger.ErrDuplicatePeriod if the period is already paid, and with
	// ErrConflict if the subscription was paused or is no longer due at the
	// payment's period start.
	CreateRecurringPayment(ctx context.Context, payment *models.Expense, nextDue time.Time) error

	// Close releases any resources held by the store.
	Close() error
}
