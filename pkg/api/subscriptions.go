package api

// CreateSubscriptionRequest creates a recurring expense template.
// PayerID defaults to the caller.
type CreateSubscriptionRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Amount       string   `json:"amount" validate:"required,amount"`
	Cycle        string   `json:"cycle" validate:"required,cycle"`
	PayerID      string   `json:"payer_id,omitempty"`
	MemberIDs    []string `json:"member_ids" validate:"required,min=1,dive,required"`
	FirstDueDate string   `json:"first_due_date" validate:"required,date"`
}

type CreateSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type GetSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

type GetSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
	// Share is the caller's balance against the other members.
	Share string `json:"share"`
}

type PauseSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

type PauseSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type ResumeSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

type ResumeSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

// ChargeSubscriptionRequest records the payment for the subscription's
// current period now, without waiting for the billing loop.
type ChargeSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

type ChargeSubscriptionResponse struct {
	Payment      *Expense      `json:"payment"`
	Subscription *Subscription `json:"subscription"`
}
