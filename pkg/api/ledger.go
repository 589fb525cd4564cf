package api

// ExpenseInput describes an expense to create or replace.
//
// Splits are given either explicitly in Splits or as the parties in
// SplitAmong. With SplitAmong alone the amount is split equally; with
// Items too, each item is split among its assignees and whatever Amount
// exceeds the item subtotal (tax, tip) is shared in proportion to it.
// Payments default to the caller paying the whole amount.
type ExpenseInput struct {
	GroupID     string         `json:"group_id,omitempty"`
	Description string         `json:"description" validate:"required,max=200"`
	Amount      string         `json:"amount" validate:"required,amount"`
	Payments    []Contribution `json:"payments,omitempty" validate:"dive"`
	Splits      []Contribution `json:"splits,omitempty" validate:"dive"`
	SplitAmong  []string       `json:"split_among,omitempty" validate:"dive,required"`
	Items       []Item         `json:"items,omitempty" validate:"dive"`
}

type CreateExpenseRequest struct {
	ExpenseInput
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ReplaceExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	ExpenseInput
}

type ReplaceExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

// CreateSettlementRequest records a settlement with an explicit direction.
// The caller must be one of the two parties.
type CreateSettlementRequest struct {
	FromPartyID string `json:"from_party_id" validate:"required"`
	ToPartyID   string `json:"to_party_id" validate:"required,nefield=FromPartyID"`
	Amount      string `json:"amount" validate:"required,amount"`
	Note        string `json:"note,omitempty" validate:"max=500"`
	GroupID     string `json:"group_id,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

// RecordPaymentRequest records a payment between the caller and a
// counterparty. The direction follows the current balance.
type RecordPaymentRequest struct {
	CounterpartyID   string `json:"counterparty_id" validate:"required"`
	Amount           string `json:"amount" validate:"required,amount"`
	Note             string `json:"note,omitempty" validate:"max=500"`
	GroupID          string `json:"group_id,omitempty"`
	SubscriptionID   string `json:"subscription_id,omitempty"`
	AllowOverpayment bool   `json:"allow_overpayment,omitempty"`
}

type RecordPaymentResponse struct {
	Settlement    *Settlement `json:"settlement"`
	BalanceBefore string      `json:"balance_before"`
	BalanceAfter  string      `json:"balance_after"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id" validate:"required"`
}

type DeleteSettlementResponse struct{}

// GetBalanceRequest asks for the caller's balance with CounterpartyID, or
// with everyone when CounterpartyID is empty.
type GetBalanceRequest struct {
	CounterpartyID string `json:"counterparty_id,omitempty"`
	GroupID        string `json:"group_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

type GetBalanceResponse struct {
	// Balance is set when a counterparty was given.
	Balance string `json:"balance,omitempty"`
	// Balances lists every unsettled counterparty otherwise.
	Balances []PairBalance `json:"balances,omitempty"`
}

type GetGroupShareRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupShareResponse struct {
	Share string `json:"share"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Members []MemberBalance `json:"members"`
	Debts   []Debt          `json:"debts"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
