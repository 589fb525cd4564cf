// Package memory provides an in-process implementation of storage.Store.
// It backs tests and the server when DB_PATH is ":memory:"; nothing
// survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	revision int64

	parties map[string]*models.Party
	users   map[string]*models.User
	groups  map[string]*models.Group

	// Facts keep insertion order.
	expenses    []*models.Expense
	settlements []*models.Settlement

	subscriptions map[string]*models.Subscription
}

func New() *Store {
	return &Store{
		parties:       make(map[string]*models.Party),
		users:         make(map[string]*models.User),
		groups:        make(map[string]*models.Group),
		subscriptions: make(map[string]*models.Subscription),
	}
}

func (s *Store) Close() error { return nil }

// Revision returns the current ledger revision.
func (s *Store) Revision(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision, nil
}

// LoadFacts returns copies of the facts matching filter.
func (s *Store) LoadFacts(_ context.Context, filter storage.FactFilter) (models.Facts, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var facts models.Facts
	for _, e := range s.expenses {
		if matchExpense(e, filter) {
			facts.Expenses = append(facts.Expenses, cloneExpense(e))
		}
	}
	for _, st := range s.settlements {
		if matchSettlement(st, filter) {
			c := *st
			facts.Settlements = append(facts.Settlements, &c)
		}
	}
	return facts, s.revision, nil
}

func matchExpense(e *models.Expense, f storage.FactFilter) bool {
	if f.GroupID != "" && e.GroupID != f.GroupID {
		return false
	}
	if f.SubscriptionID != "" && e.SubscriptionID != f.SubscriptionID {
		return false
	}
	if len(f.PartyIDs) == 0 {
		return true
	}
	for _, p := range e.Parties() {
		for _, want := range f.PartyIDs {
			if p == want {
				return true
			}
		}
	}
	return false
}

func matchSettlement(st *models.Settlement, f storage.FactFilter) bool {
	if f.GroupID != "" && st.GroupID != f.GroupID {
		return false
	}
	if f.SubscriptionID != "" && st.SubscriptionID != f.SubscriptionID {
		return false
	}
	if len(f.PartyIDs) == 0 {
		return true
	}
	for _, want := range f.PartyIDs {
		if st.FromPartyID == want || st.ToPartyID == want {
			return true
		}
	}
	return false
}

// Party storage

func (s *Store) CreateParty(_ context.Context, p *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	if _, exists := s.parties[p.ID]; exists {
		return fmt.Errorf("party %s already exists", p.ID)
	}
	c := *p
	s.parties[p.ID] = &c
	return nil
}

func (s *Store) GetParty(_ context.Context, partyID string) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.parties[partyID]; ok {
		c := *p
		return &c, nil
	}
	return nil, fmt.Errorf("%w: party %s", storage.ErrNotFound, partyID)
}

func (s *Store) ListParties(_ context.Context) ([]*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Party, 0, len(s.parties))
	for _, p := range s.parties {
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// User storage

// CreateUser stores the user and the party it acts as.
func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user with email %s already exists", u.Email)
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	c := *u
	s.users[u.ID] = &c
	s.parties[u.ID] = &models.Party{ID: u.ID, Name: u.DisplayName, CreatedAt: u.CreatedAt}
	return nil
}

// GetUserByEmail returns nil, nil when no user has the email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

// Group storage

func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	c := *g
	c.Members = append([]string(nil), g.Members...)
	s.groups[g.ID] = &c
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	c := *g
	c.Members = append([]string(nil), g.Members...)
	return &c, nil
}

// ListGroups returns all groups, newest first.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		c := *g
		c.Members = append([]string(nil), g.Members...)
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// AddGroupMembers appends parties that are not yet members.
func (s *Store) AddGroupMembers(_ context.Context, groupID string, partyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	for _, id := range partyIDs {
		if !g.HasMember(id) {
			g.Members = append(g.Members, id)
		}
	}
	return nil
}

// Expense storage

func (s *Store) CreateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendExpense(e)
	s.revision++
	return nil
}

func (s *Store) appendExpense(e *models.Expense) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	s.expenses = append(s.expenses, cloneExpense(e))
}

func (s *Store) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.expenseIndex(expenseID); i >= 0 {
		return cloneExpense(s.expenses[i]), nil
	}
	return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
}

// ReplaceExpense swaps the stored expense in place, keeping its position
// and creation time.
func (s *Store) ReplaceExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.expenseIndex(e.ID)
	if i < 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, e.ID)
	}
	e.CreatedAt = s.expenses[i].CreatedAt
	if e.CreatedBy == "" {
		e.CreatedBy = s.expenses[i].CreatedBy
	}
	s.expenses[i] = cloneExpense(e)
	s.revision++
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.expenseIndex(expenseID)
	if i < 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
	s.revision++
	return nil
}

func (s *Store) expenseIndex(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Settlement storage

func (s *Store) CreateSettlement(_ context.Context, st *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendSettlement(st)
	return nil
}

// AppendSettlement stores st only if the ledger is still at revision.
func (s *Store) AppendSettlement(_ context.Context, st *models.Settlement, revision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision != revision {
		return fmt.Errorf("%w: ledger at revision %d, expected %d", storage.ErrConflict, s.revision, revision)
	}
	s.appendSettlement(st)
	return nil
}

func (s *Store) appendSettlement(st *models.Settlement) {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	c := *st
	s.settlements = append(s.settlements, &c)
	s.revision++
}

func (s *Store) GetSettlement(_ context.Context, settlementID string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.settlements {
		if st.ID == settlementID {
			c := *st
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
}

// ListSettlements returns matching settlements, newest first.
func (s *Store) ListSettlements(_ context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Settlement, 0)
	for i := len(s.settlements) - 1; i >= 0; i-- {
		st := s.settlements[i]
		if filter.GroupID != "" && st.GroupID != filter.GroupID {
			continue
		}
		if filter.PartyID != "" && st.FromPartyID != filter.PartyID && st.ToPartyID != filter.PartyID {
			continue
		}
		c := *st
		result = append(result, &c)
	}
	return result, nil
}

func (s *Store) DeleteSettlement(_ context.Context, settlementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, st := range s.settlements {
		if st.ID == settlementID {
			s.settlements = append(s.settlements[:i:i], s.settlements[i+1:]...)
			s.revision++
			return nil
		}
	}
	return fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
}

// Subscription storage

func (s *Store) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	if sub.AnchorDate.IsZero() {
		sub.AnchorDate = sub.NextDueDate
	}
	s.subscriptions[sub.ID] = cloneSubscription(sub)
	return nil
}

func (s *Store) GetSubscription(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscriptions[subscriptionID]; ok {
		return cloneSubscription(sub), nil
	}
	return nil, fmt.Errorf("%w: subscription %s", storage.ErrNotFound, subscriptionID)
}

// SetSubscriptionActive flips only the active flag.
func (s *Store) SetSubscriptionActive(_ context.Context, subscriptionID string, active bool) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s", storage.ErrNotFound, subscriptionID)
	}
	next := sub.Pause()
	if active {
		next = sub.Resume()
	}
	s.subscriptions[subscriptionID] = &next
	return cloneSubscription(&next), nil
}

// ListDueSubscriptions returns active subscriptions due at or before now,
// oldest due date first.
func (s *Store) ListDueSubscriptions(_ context.Context, now time.Time) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Subscription
	for _, sub := range s.subscriptions {
		if sub.IsDue(now) {
			result = append(result, cloneSubscription(sub))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].NextDueDate.Equal(result[j].NextDueDate) {
			return result[i].NextDueDate.Before(result[j].NextDueDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) CreateRecurringPayment(_ context.Context, payment *models.Expense, nextDue time.Time) error {
	if payment.Period == nil || payment.SubscriptionID == "" {
		return fmt.Errorf("recurring payment must carry a subscription and period")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ledger.CheckPeriodFree(s.expenses, payment.SubscriptionID, *payment.Period); err != nil {
		return err
	}
	sub, ok := s.subscriptions[payment.SubscriptionID]
	if !ok || !sub.Active || !sub.NextDueDate.Equal(payment.Period.Start) {
		var current *models.Subscription
		if ok {
			current = sub
		}
		return storage.AdvanceConflict(current, payment.SubscriptionID, payment.Period.Start)
	}

	advanced := *sub
	advanced.NextDueDate = nextDue
	s.subscriptions[sub.ID] = &advanced
	s.appendExpense(payment)
	s.revision++
	return nil
}

func cloneExpense(e *models.Expense) *models.Expense {
	c := *e
	c.Payments = append([]models.Contribution(nil), e.Payments...)
	c.Splits = append([]models.Contribution(nil), e.Splits...)
	if e.Period != nil {
		p := *e.Period
		c.Period = &p
	}
	return &c
}

func cloneSubscription(sub *models.Subscription) *models.Subscription {
	c := *sub
	c.Members = append([]string(nil), sub.Members...)
	return &c
}
