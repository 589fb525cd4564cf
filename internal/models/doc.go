// Package models defines the core domain models for Swiss Coin.
//
// # Facts
//
// The ledger is a set of immutable facts:
//   - Expense: a shared cost with payer contributions and split obligations
//   - Settlement: a directed payment from one party to another
//   - Expense with a Period: a recurring subscription payment materialized
//     for one billing period
//
// Balances are never stored. They are recomputed from facts by the
// calculator package.
//
// # Templates
//
//   - Group: a reusable member list that expenses and settlements can be tagged with
//   - Subscription: the template recurring payments are generated from
//
// # Design Principles
//
// 1. **Integer money**: every amount is a money.Amount in cents
// 2. **No hidden current user**: callers pass the party they act as explicitly
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
// 4. **Replace, don't mutate**: edits build a new value that is validated again
package models
