package api

// Party is an identity that can owe or be owed money.
type Party struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// User is a registered account. Its ID is also its party ID.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// Contribution is one party's paid or owed part of an expense.
type Contribution struct {
	PartyID string `json:"party_id" validate:"required"`
	Amount  string `json:"amount" validate:"required,amount"`
}

// Item is one line of an itemized expense. Items with no assignees are
// shared by every participant.
type Item struct {
	Description string   `json:"description"`
	Amount      string   `json:"amount" validate:"required,amount"`
	AssignedTo  []string `json:"assigned_to,omitempty" validate:"dive,required"`
}

type Expense struct {
	ID             string         `json:"id"`
	GroupID        string         `json:"group_id,omitempty"`
	SubscriptionID string         `json:"subscription_id,omitempty"`
	Description    string         `json:"description"`
	Amount         string         `json:"amount"`
	Payments       []Contribution `json:"payments"`
	Splits         []Contribution `json:"splits"`
	PeriodStart    string         `json:"period_start,omitempty"`
	PeriodEnd      string         `json:"period_end,omitempty"`
	CreatedAt      int64          `json:"created_at"`
	CreatedBy      string         `json:"created_by,omitempty"`
}

type Settlement struct {
	ID             string `json:"id"`
	GroupID        string `json:"group_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	FromPartyID    string `json:"from_party_id"`
	ToPartyID      string `json:"to_party_id"`
	Amount         string `json:"amount"`
	Note           string `json:"note,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	CreatedBy      string `json:"created_by,omitempty"`
}

type Subscription struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Amount      string   `json:"amount"`
	Cycle       string   `json:"cycle"`
	PayerID     string   `json:"payer_id"`
	Members     []string `json:"members"`
	NextDueDate string   `json:"next_due_date"`
	Active      bool     `json:"active"`
	CreatedAt   int64    `json:"created_at"`
}

// PairBalance is the caller's balance with one counterparty.
// Positive means the counterparty owes the caller.
type PairBalance struct {
	PartyID string `json:"party_id"`
	Balance string `json:"balance"`
}

type MemberBalance struct {
	PartyID    string `json:"party_id"`
	NetBalance string `json:"net_balance"`
	TotalPaid  string `json:"total_paid"`
	TotalOwed  string `json:"total_owed"`
}

// Debt is one payment in a simplified settle-up plan.
type Debt struct {
	FromPartyID string `json:"from_party_id"`
	ToPartyID   string `json:"to_party_id"`
	Amount      string `json:"amount"`
}
