package memory

import (
	"context"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// It is safe for concurrent use; reads return copies.
type MemoryLedgerStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	order    []string // account ids in creation order
	entries  map[string]models.JournalEntry
	byKey    map[string]string // idempotency key -> entry id
	postings []models.Posting
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts: make(map[string]models.Account),
		entries:  make(map[string]models.JournalEntry),
		byKey:    make(map[string]string),
		postings: make([]models.Posting, 0),
	}
}

func (m *MemoryLedgerStore) SaveAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account %s already exists", models.ErrInvalidArgument, account.ID)
	}
	m.accounts[account.ID] = account
	m.order = append(m.order, account.ID)
	return nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	return a, nil
}

func (m *MemoryLedgerStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Account, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.accounts[id])
	}
	return out, nil
}

func (m *MemoryLedgerStore) SaveJournalEntry(ctx context.Context, entry models.JournalEntry, postings []models.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[entry.ID]; exists {
		return fmt.Errorf("%w: journal entry %s already exists", models.ErrInvalidArgument, entry.ID)
	}
	if entry.IdempotencyKey != "" {
		if _, exists := m.byKey[entry.IdempotencyKey]; exists {
			return fmt.Errorf("%w: idempotency key %s already used", models.ErrInvalidArgument, entry.IdempotencyKey)
		}
		m.byKey[entry.IdempotencyKey] = entry.ID
	}

	entry.Lines = append([]models.JournalLine(nil), entry.Lines...)
	m.entries[entry.ID] = entry
	m.postings = append(m.postings, postings...)
	return nil
}

func (m *MemoryLedgerStore) FindJournalEntryByKey(ctx context.Context, idempotencyKey string) (models.JournalEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[idempotencyKey]
	if !ok {
		return models.JournalEntry{}, false, nil
	}
	entry := m.entries[id]
	entry.Lines = append([]models.JournalLine(nil), entry.Lines...)
	return entry, true, nil
}

// GetPostings returns matching postings in the order they were saved.
func (m *MemoryLedgerStore) GetPostings(ctx context.Context, filter models.PostingFilter) ([]models.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Posting
	for _, p := range m.postings {
		if filter.AccountID != "" && p.AccountID != filter.AccountID {
			continue
		}
		if filter.From.IsValid() && p.Date.Before(filter.From) {
			continue
		}
		if filter.To.IsValid() && p.Date.After(filter.To) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
