package models

// Group represents a reusable member list.
// Expenses and settlements tagged with the group's ID make up its scope.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members is the list of party IDs in this group.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether partyID belongs to the group.
func (g *Group) HasMember(partyID string) bool {
	for _, m := range g.Members {
		if m == partyID {
			return true
		}
	}
	return false
}
