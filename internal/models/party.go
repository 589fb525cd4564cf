package models

// Party is anyone who can owe or be owed money: the user acting on the
// ledger or one of their contacts.
type Party struct {
	// ID is the unique identifier for the party (UUID format).
	ID string

	// Name is the display name. Required; the ledger rejects nameless parties.
	Name string

	// CreatedAt is the Unix timestamp when the party was created.
	CreatedAt int64
}
