// Package balance answers balance queries against the store, with an
// optional cache in front of the engine.
package balance

import (
	"context"
	"fmt"

	"github.com/mmynk/swisscoin/internal/cache"
	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

// Scope narrows a pairwise balance to a group or a subscription.
// The zero value covers every fact.
type Scope struct {
	GroupID        string
	SubscriptionID string
}

func (s Scope) filter(parties ...string) storage.FactFilter {
	return storage.FactFilter{GroupID: s.GroupID, SubscriptionID: s.SubscriptionID, PartyIDs: parties}
}

func (s Scope) String() string {
	return s.GroupID + "/" + s.SubscriptionID
}

type Service struct {
	store   storage.FactStore
	cache   cache.BalanceCache
	metrics *metrics.Metrics
}

// NewService returns a Service. A nil cache disables caching.
func NewService(store storage.FactStore, c cache.BalanceCache, m *metrics.Metrics) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: store, cache: c, metrics: m}
}

// Compute returns self's balance with other within scope.
// Positive means other owes self.
func (s *Service) Compute(ctx context.Context, self, other string, scope Scope) (money.Amount, error) {
	return s.cached(ctx, cache.Key{Kind: "pair", Self: self, Other: other, Scope: scope.String()},
		scope.filter(self, other),
		func(facts models.Facts) money.Amount { return calculator.Balance(self, other, facts) })
}

// GroupShare returns self's balance against the rest of a group.
func (s *Service) GroupShare(ctx context.Context, self, groupID string) (money.Amount, error) {
	return s.cached(ctx, cache.Key{Kind: "group", Self: self, Scope: groupID},
		storage.FactFilter{GroupID: groupID},
		func(facts models.Facts) money.Amount { return calculator.GroupShare(self, groupID, facts) })
}

// SubscriptionShare returns self's balance against the other members of a
// subscription.
func (s *Service) SubscriptionShare(ctx context.Context, self, subscriptionID string) (money.Amount, error) {
	return s.cached(ctx, cache.Key{Kind: "subscription", Self: self, Scope: subscriptionID},
		storage.FactFilter{SubscriptionID: subscriptionID},
		func(facts models.Facts) money.Amount { return calculator.SubscriptionShare(self, subscriptionID, facts) })
}

// Overview returns self's outstanding balances with every counterparty
// within scope.
func (s *Service) Overview(ctx context.Context, self string, scope Scope) ([]calculator.PairBalance, error) {
	facts, _, err := s.store.LoadFacts(ctx, scope.filter(self))
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}
	s.metrics.BalanceComputed("overview")
	return calculator.Overview(self, facts), nil
}

// GroupBalances returns every member's position in a group and the
// simplified payments that would settle it.
func (s *Service) GroupBalances(ctx context.Context, groupID string) ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	facts, _, err := s.store.LoadFacts(ctx, storage.FactFilter{GroupID: groupID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load facts: %w", err)
	}
	s.metrics.BalanceComputed("group_balances")
	members, debts := calculator.CalculateGroupBalances(facts)
	return members, debts, nil
}

func (s *Service) cached(ctx context.Context, key cache.Key, filter storage.FactFilter, compute func(models.Facts) money.Amount) (money.Amount, error) {
	rev, err := s.store.Revision(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	key.Revision = rev
	if b, ok := s.cache.Get(ctx, key); ok {
		return b, nil
	}

	facts, rev, err := s.store.LoadFacts(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to load facts: %w", err)
	}
	b := compute(facts)
	s.metrics.BalanceComputed(key.Kind)

	key.Revision = rev
	s.cache.Set(ctx, key, b)
	return b, nil
}
