package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/locks"
	"github.com/sheikh-saqib/microfinance-ledger/internal/metrics"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models/events"
	"github.com/sheikh-saqib/microfinance-ledger/internal/money"
)

// Ledger records journal entries and builds the accounting reports from the
// stored postings.
type Ledger struct {
	store     interfaces.LedgerStore
	publisher interfaces.EventPublisher
	locks     *locks.Keyed
	log       *zap.Logger
	now       func() time.Time
}

// NewLedger creates a Ledger over store. publisher may be nil.
func NewLedger(store interfaces.LedgerStore, publisher interfaces.EventPublisher, log *zap.Logger) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		locks:     locks.NewKeyed(),
		log:       log,
		now:       time.Now,
	}
}

// CreateAccount adds an account to the chart of accounts.
func (l *Ledger) CreateAccount(ctx context.Context, account models.Account) error {
	if account.ID == "" || account.Name == "" {
		return fmt.Errorf("%w: account id and name are required", models.ErrInvalidArgument)
	}
	if !account.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", models.ErrInvalidArgument, account.Type)
	}
	return l.store.SaveAccount(ctx, account)
}

// EnsureAccounts creates every account in accounts that does not exist yet.
func (l *Ledger) EnsureAccounts(ctx context.Context, accounts []models.Account) error {
	for _, a := range accounts {
		_, err := l.store.GetAccount(ctx, a.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		if err := l.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("create account %s: %w", a.ID, err)
		}
	}
	return nil
}

func (l *Ledger) Accounts(ctx context.Context) ([]models.Account, error) {
	return l.store.ListAccounts(ctx)
}

// ValidateEntry checks that entry has at least two lines, each carrying one
// side, and that debits equal credits.
func ValidateEntry(entry models.JournalEntry) error {
	if len(entry.Lines) < 2 {
		return fmt.Errorf("%w: journal entry needs at least two lines", models.ErrInvalidArgument)
	}
	if !entry.Date.IsValid() {
		return fmt.Errorf("%w: journal entry has no valid date", models.ErrInvalidArgument)
	}
	debits, credits := decimal.Zero, decimal.Zero
	for i, line := range entry.Lines {
		if line.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", models.ErrInvalidArgument, i)
		}
		p := models.Posting{Date: entry.Date, Debit: line.Debit, Credit: line.Credit, Reference: fmt.Sprintf("line %d", i)}
		if err := ValidatePosting(p); err != nil {
			return err
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !money.Equal2(debits, credits) {
		return fmt.Errorf("%w: debits %s, credits %s", models.ErrUnbalancedEntry, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}

// PostJournalEntry validates entry, turns each line into a posting and saves
// them together. An entry whose idempotency key was already posted is not
// posted again; the stored entry is returned instead.
func (l *Ledger) PostJournalEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if err := ValidateEntry(entry); err != nil {
		return models.JournalEntry{}, err
	}

	accountIDs := make([]string, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}

	// Lock every touched account; Keyed locks in sorted order to avoid deadlocks
	unlock := l.locks.Lock(accountIDs...)
	defer unlock()

	if entry.IdempotencyKey != "" {
		existing, found, err := l.store.FindJournalEntryByKey(ctx, entry.IdempotencyKey)
		if err != nil {
			return models.JournalEntry{}, err
		}
		if found {
			return existing, nil
		}
	}

	for _, id := range accountIDs {
		if _, err := l.store.GetAccount(ctx, id); err != nil {
			return models.JournalEntry{}, fmt.Errorf("account %s: %w", id, err)
		}
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = l.now()

	postings := make([]models.Posting, 0, len(entry.Lines))
	total := decimal.Zero
	for i, line := range entry.Lines {
		postings = append(postings, models.Posting{
			ID:        fmt.Sprintf("%s-%d", entry.ID, i+1),
			EntryID:   entry.ID,
			AccountID: line.AccountID,
			Date:      entry.Date,
			Debit:     money.Round2(line.Debit),
			Credit:    money.Round2(line.Credit),
			Reference: entry.ID,
			CreatedAt: entry.CreatedAt,
		})
		total = total.Add(line.Debit)
	}

	if err := l.store.SaveJournalEntry(ctx, entry, postings); err != nil {
		return models.JournalEntry{}, err
	}
	metrics.JournalEntriesPosted.Inc()

	if l.publisher != nil {
		event := events.JournalEntryPosted{
			EntryID:    entry.ID,
			Date:       entry.Date,
			Total:      money.Round2(total),
			Lines:      len(entry.Lines),
			OccurredAt: entry.CreatedAt,
		}
		if err := l.publisher.Publish(ctx, events.TopicJournalEntryPosted, entry.ID, event); err != nil {
			l.log.Warn("publish journal entry", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	return entry, nil
}

// Balance returns the balance of accountID on its normal side as of asOf.
// A zero asOf includes every posting.
func (l *Ledger) Balance(ctx context.Context, accountID string, asOf civil.Date) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	postings, err := l.store.GetPostings(ctx, models.PostingFilter{AccountID: accountID, To: asOf})
	if err != nil {
		return decimal.Zero, err
	}
	return netBalance(postings, account.Type.NormalSide()), nil
}

// AccountLedger lists the postings of accountID dated from..to with running
// balances. Postings before from make up the opening balance. Zero dates
// leave that end open.
func (l *Ledger) AccountLedger(ctx context.Context, accountID string, from, to civil.Date) (models.LedgerResult, error) {
	if !isZero(from) && !isZero(to) && to.Before(from) {
		return models.LedgerResult{}, fmt.Errorf("%w: period ends before it starts", models.ErrInvalidArgument)
	}
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.LedgerResult{}, err
	}
	side := account.Type.NormalSide()

	opening := decimal.Zero
	if !isZero(from) {
		before, err := l.store.GetPostings(ctx, models.PostingFilter{AccountID: accountID, To: from.AddDays(-1)})
		if err != nil {
			return models.LedgerResult{}, err
		}
		opening = netBalance(before, side)
	}

	postings, err := l.store.GetPostings(ctx, models.PostingFilter{AccountID: accountID, From: from, To: to})
	if err != nil {
		return models.LedgerResult{}, err
	}
	return BuildLedger(accountID, postings, opening, side)
}

// TrialBalance nets each account's postings up to asOf into its debit or
// credit column.
func (l *Ledger) TrialBalance(ctx context.Context, asOf civil.Date) (models.TrialBalanceResult, error) {
	accounts, err := l.store.ListAccounts(ctx)
	if err != nil {
		return models.TrialBalanceResult{}, err
	}
	byAccount, err := l.postingsByAccount(ctx, models.PostingFilter{To: asOf})
	if err != nil {
		return models.TrialBalanceResult{}, err
	}

	rows := make([]models.AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		row := models.AccountBalance{AccountID: a.ID, Name: a.Name, DebitBalance: decimal.Zero, CreditBalance: decimal.Zero}
		net := netBalance(byAccount[a.ID], models.SideDebit)
		if net.IsNegative() {
			row.CreditBalance = net.Neg()
		} else {
			row.DebitBalance = net
		}
		rows = append(rows, row)
	}

	result, err := BuildTrialBalance(rows)
	if err != nil {
		return models.TrialBalanceResult{}, err
	}
	metrics.Reports.WithLabelValues("trial_balance", metrics.Verdict(result.IsBalanced)).Inc()
	return result, nil
}

// BalanceSheet reports assets, liabilities and equity as of asOf. Revenue
// less expenses not yet closed to equity appears as a current earnings line.
func (l *Ledger) BalanceSheet(ctx context.Context, asOf civil.Date) (models.BalanceSheetResult, error) {
	buckets, err := l.amountsByType(ctx, models.PostingFilter{To: asOf})
	if err != nil {
		return models.BalanceSheetResult{}, err
	}

	equity := buckets[models.AccountEquity]
	earnings := sumAmounts(buckets[models.AccountRevenue]).Sub(sumAmounts(buckets[models.AccountExpense]))
	if !earnings.IsZero() {
		equity = append(equity, models.AccountAmount{AccountID: CurrentEarningsID, Name: "Current earnings", Amount: earnings})
	}

	result := BuildBalanceSheet(buckets[models.AccountAsset], buckets[models.AccountLiability], equity)
	metrics.Reports.WithLabelValues("balance_sheet", metrics.Verdict(result.IsBalanced)).Inc()
	return result, nil
}

// IncomeStatement reports revenue and expense activity dated from..to.
func (l *Ledger) IncomeStatement(ctx context.Context, from, to civil.Date) (models.IncomeStatementResult, error) {
	if !isZero(from) && !isZero(to) && to.Before(from) {
		return models.IncomeStatementResult{}, fmt.Errorf("%w: period ends before it starts", models.ErrInvalidArgument)
	}
	buckets, err := l.amountsByType(ctx, models.PostingFilter{From: from, To: to})
	if err != nil {
		return models.IncomeStatementResult{}, err
	}
	result := BuildIncomeStatement(buckets[models.AccountRevenue], buckets[models.AccountExpense])
	metrics.Reports.WithLabelValues("income_statement", "n/a").Inc()
	return result, nil
}

// CurrentEarningsID is the synthetic equity line carrying unclosed earnings.
const CurrentEarningsID = "current-earnings"

func (l *Ledger) amountsByType(ctx context.Context, filter models.PostingFilter) (map[models.AccountType][]models.AccountAmount, error) {
	accounts, err := l.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	byAccount, err := l.postingsByAccount(ctx, filter)
	if err != nil {
		return nil, err
	}

	buckets := make(map[models.AccountType][]models.AccountAmount)
	for _, a := range accounts {
		buckets[a.Type] = append(buckets[a.Type], models.AccountAmount{
			AccountID: a.ID,
			Name:      a.Name,
			Amount:    netBalance(byAccount[a.ID], a.Type.NormalSide()),
		})
	}
	return buckets, nil
}

func (l *Ledger) postingsByAccount(ctx context.Context, filter models.PostingFilter) (map[string][]models.Posting, error) {
	postings, err := l.store.GetPostings(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Posting)
	for _, p := range postings {
		out[p.AccountID] = append(out[p.AccountID], p)
	}
	return out, nil
}

func netBalance(postings []models.Posting, side models.NormalSide) decimal.Decimal {
	balance := decimal.Zero
	for _, p := range postings {
		balance = balance.Add(SignedAmount(p, side))
	}
	return money.Round2(balance)
}

func isZero(d civil.Date) bool {
	return d == civil.Date{}
}
