package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are INTEGER cents; dates are Unix seconds.
const schema = `
CREATE TABLE IF NOT EXISTS parties (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    party_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (group_id, party_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS subscriptions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    cycle TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    next_due_date INTEGER NOT NULL,
    anchor_date INTEGER NOT NULL,
    active INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subscription_members (
    subscription_id TEXT NOT NULL,
    party_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (subscription_id, party_id),
    FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    group_id TEXT,
    subscription_id TEXT,
    description TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    period_start INTEGER,
    period_end INTEGER,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE SET NULL,
    FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS expense_contributions (
    expense_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('payment', 'split')),
    party_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    position INTEGER NOT NULL,
    PRIMARY KEY (expense_id, kind, party_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    group_id TEXT,
    subscription_id TEXT,
    from_party_id TEXT NOT NULL,
    to_party_id TEXT NOT NULL CHECK (to_party_id <> from_party_id),
    amount INTEGER NOT NULL CHECK (amount > 0),
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    note TEXT,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS ledger_revision (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    revision INTEGER NOT NULL
);
INSERT OR IGNORE INTO ledger_revision (id, revision) VALUES (1, 0);

CREATE UNIQUE INDEX IF NOT EXISTS idx_expenses_subscription_period
    ON expenses(subscription_id, period_start) WHERE subscription_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_contributions_party_id ON expense_contributions(party_id);
CREATE INDEX IF NOT EXISTS idx_settlements_group_id ON settlements(group_id);
CREATE INDEX IF NOT EXISTS idx_settlements_parties ON settlements(from_party_id, to_party_id);
CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_subscriptions_due ON subscriptions(active, next_due_date);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
