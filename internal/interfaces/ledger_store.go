package interfaces

import (
	"context"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

type LedgerStore interface {
	SaveAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, accountID string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// SaveJournalEntry stores the entry and its postings atomically.
	SaveJournalEntry(ctx context.Context, entry models.JournalEntry, postings []models.Posting) error
	FindJournalEntryByKey(ctx context.Context, idempotencyKey string) (models.JournalEntry, bool, error)
	GetPostings(ctx context.Context, filter models.PostingFilter) ([]models.Posting, error)
}
