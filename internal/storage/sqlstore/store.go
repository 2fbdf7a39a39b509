package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	interfaces "github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// Store persists accounts, journal entries, postings, loans and payments.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Migrate applies the dialect schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *Store) q(query string) string { return s.dialect.rebind(query) }

func (s *Store) SaveAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, name, type) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.q(query), account.ID, account.Name, string(account.Type))
	return err
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	const query = `SELECT id, name, type FROM accounts WHERE id = ?`

	var a models.Account
	err := s.db.QueryRowContext(ctx, s.q(query), accountID).Scan(&a.ID, &a.Name, &a.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT id, name, type FROM accounts ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) SaveJournalEntry(ctx context.Context, entry models.JournalEntry, postings []models.Posting) (err error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const entryQuery = `INSERT INTO journal_entries (id, idempotency_key, entry_date, memo, created_at)
	VALUES (?, ?, ?, ?, ?)`
	key := sql.NullString{String: entry.IdempotencyKey, Valid: entry.IdempotencyKey != ""}
	if _, err = dbTx.ExecContext(ctx, s.q(entryQuery), entry.ID, key, entry.Date.String(), entry.Memo, entry.CreatedAt.UTC()); err != nil {
		return err
	}

	const postingQuery = `INSERT INTO postings (id, entry_id, line_no, account_id, posting_date, debit, credit, reference, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, p := range postings {
		_, err = dbTx.ExecContext(ctx, s.q(postingQuery),
			p.ID, p.EntryID, i+1, p.AccountID, p.Date.String(), p.Debit, p.Credit, p.Reference, p.CreatedAt.UTC())
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func (s *Store) FindJournalEntryByKey(ctx context.Context, idempotencyKey string) (models.JournalEntry, bool, error) {
	const query = `SELECT id, idempotency_key, entry_date, memo, created_at FROM journal_entries WHERE idempotency_key = ?`

	var (
		e   models.JournalEntry
		key sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.q(query), idempotencyKey).
		Scan(&e.ID, &key, dateColumn{&e.Date}, &e.Memo, timeColumn{&e.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, false, nil
	}
	if err != nil {
		return models.JournalEntry{}, false, err
	}
	e.IdempotencyKey = key.String

	const linesQuery = `SELECT account_id, debit, credit FROM postings WHERE entry_id = ? ORDER BY line_no`
	rows, err := s.db.QueryContext(ctx, s.q(linesQuery), e.ID)
	if err != nil {
		return models.JournalEntry{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var line models.JournalLine
		if err := rows.Scan(&line.AccountID, &line.Debit, &line.Credit); err != nil {
			return models.JournalEntry{}, false, err
		}
		e.Lines = append(e.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return models.JournalEntry{}, false, err
	}
	return e, true, nil
}

// GetPostings returns matching postings by date, then in the order they were
// saved.
func (s *Store) GetPostings(ctx context.Context, filter models.PostingFilter) ([]models.Posting, error) {
	var (
		where []string
		args  []any
	)
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.From.IsValid() {
		where = append(where, "posting_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To.IsValid() {
		where = append(where, "posting_date <= ?")
		args = append(args, filter.To.String())
	}

	query := `SELECT id, entry_id, account_id, posting_date, debit, credit, reference, created_at FROM postings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY posting_date, seq"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		var p models.Posting
		err := rows.Scan(&p.ID, &p.EntryID, &p.AccountID, dateColumn{&p.Date}, &p.Debit, &p.Credit, &p.Reference, timeColumn{&p.CreatedAt})
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return postings, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
