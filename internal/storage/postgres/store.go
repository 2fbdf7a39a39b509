package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/sqlstore"
)

// Dialect is the PostgreSQL flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:        "postgres",
	Placeholder: sqlstore.DollarPlaceholder,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id              TEXT PRIMARY KEY,
			idempotency_key TEXT UNIQUE,
			entry_date      DATE NOT NULL,
			memo            TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS postings (
			seq          BIGSERIAL,
			id           TEXT PRIMARY KEY,
			entry_id     TEXT NOT NULL REFERENCES journal_entries(id),
			line_no      INTEGER NOT NULL,
			account_id   TEXT NOT NULL REFERENCES accounts(id),
			posting_date DATE NOT NULL,
			debit        NUMERIC(20,2) NOT NULL DEFAULT 0,
			credit       NUMERIC(20,2) NOT NULL DEFAULT 0,
			reference    TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_account_date ON postings(account_id, posting_date)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id              TEXT PRIMARY KEY,
			client_id       TEXT NOT NULL,
			principal       NUMERIC(20,2) NOT NULL,
			rate_percent    NUMERIC NOT NULL,
			term_length     INTEGER NOT NULL,
			term_unit       TEXT NOT NULL,
			start_date      DATE NOT NULL,
			interest_amount NUMERIC(20,2) NOT NULL,
			total_repayment NUMERIC(20,2) NOT NULL,
			balance_due     NUMERIC(20,2) NOT NULL,
			due_date        DATE NOT NULL,
			status          TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_client ON loans(client_id)`,
		`CREATE TABLE IF NOT EXISTS payments (
			seq           BIGSERIAL,
			id            TEXT PRIMARY KEY,
			loan_id       TEXT NOT NULL REFERENCES loans(id),
			amount        NUMERIC(20,2) NOT NULL,
			paid_on       DATE NOT NULL,
			balance_after NUMERIC(20,2) NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id)`,
	},
}

// Open connects to dsn, checks the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := sqlstore.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
