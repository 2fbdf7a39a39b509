// Package sqlite opens the embedded SQLite flavour of the SQL store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/sqlstore"
)

// Dialect stores amounts and dates as TEXT. Decimal strings keep full
// precision and ISO dates sort lexically.
var Dialect = sqlstore.Dialect{
	Name:        "sqlite",
	Placeholder: sqlstore.QuestionPlaceholder,
	Schema: []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id              TEXT PRIMARY KEY,
			idempotency_key TEXT UNIQUE,
			entry_date      TEXT NOT NULL,
			memo            TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS postings (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT NOT NULL UNIQUE,
			entry_id     TEXT NOT NULL REFERENCES journal_entries(id),
			line_no      INTEGER NOT NULL,
			account_id   TEXT NOT NULL REFERENCES accounts(id),
			posting_date TEXT NOT NULL,
			debit        TEXT NOT NULL DEFAULT '0',
			credit       TEXT NOT NULL DEFAULT '0',
			reference    TEXT NOT NULL,
			created_at   TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_account_date ON postings(account_id, posting_date)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id              TEXT PRIMARY KEY,
			client_id       TEXT NOT NULL,
			principal       TEXT NOT NULL,
			rate_percent    TEXT NOT NULL,
			term_length     INTEGER NOT NULL,
			term_unit       TEXT NOT NULL,
			start_date      TEXT NOT NULL,
			interest_amount TEXT NOT NULL,
			total_repayment TEXT NOT NULL,
			balance_due     TEXT NOT NULL,
			due_date        TEXT NOT NULL,
			status          TEXT NOT NULL,
			created_at      TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_client ON loans(client_id)`,
		`CREATE TABLE IF NOT EXISTS payments (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT NOT NULL UNIQUE,
			loan_id       TEXT NOT NULL REFERENCES loans(id),
			amount        TEXT NOT NULL,
			paid_on       TEXT NOT NULL,
			balance_after TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id)`,
	},
}

// Open opens the database at path (":memory:" for a private in-memory
// database) and applies the schema. SQLite allows a single writer, so the
// pool is limited to one connection.
func Open(ctx context.Context, path string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	store := sqlstore.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
