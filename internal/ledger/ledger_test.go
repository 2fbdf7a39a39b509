package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	l := NewLedger(memory.NewMemoryLedgerStore(), pub, zap.NewNop())
	require.NoError(t, l.EnsureAccounts(context.Background(), DefaultChart()))
	return l, pub
}

func entry(date civil.Date, key string, lines ...models.JournalLine) models.JournalEntry {
	return models.JournalEntry{IdempotencyKey: key, Date: date, Lines: lines}
}

func dr(account, amount string) models.JournalLine {
	return models.JournalLine{AccountID: account, Debit: dec(amount)}
}

func cr(account, amount string) models.JournalLine {
	return models.JournalLine{AccountID: account, Credit: dec(amount)}
}

func TestPostJournalEntry(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLedger(t)

	posted, err := l.PostJournalEntry(ctx, entry(jan(1), "capital", dr("cash", "1000"), cr("owner-capital", "1000")))
	require.NoError(t, err)
	assert.NotEmpty(t, posted.ID)
	assert.Equal(t, []string{"journal_entry_posted"}, pub.topics)

	balance, err := l.Balance(ctx, "cash", civil.Date{})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("1000")))

	capital, err := l.Balance(ctx, "owner-capital", civil.Date{})
	require.NoError(t, err)
	assert.True(t, capital.Equal(dec("1000")), "credit-normal account grows with credits")
}

func TestPostJournalEntry_Idempotent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	e := entry(jan(1), "dup", dr("cash", "10"), cr("owner-capital", "10"))
	first, err := l.PostJournalEntry(ctx, e)
	require.NoError(t, err)
	second, err := l.PostJournalEntry(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	balance, err := l.Balance(ctx, "cash", civil.Date{})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("10")))
}

func TestPostJournalEntry_Rejects(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	_, err := l.PostJournalEntry(ctx, entry(jan(1), "", dr("cash", "10"), cr("owner-capital", "9.99")))
	assert.ErrorIs(t, err, models.ErrUnbalancedEntry)

	_, err = l.PostJournalEntry(ctx, entry(jan(1), "", dr("cash", "10")))
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = l.PostJournalEntry(ctx, entry(jan(1), "", dr("cash", "10"), cr("nowhere", "10")))
	assert.ErrorIs(t, err, models.ErrNotFound)

	both := models.JournalLine{AccountID: "cash", Debit: dec("10"), Credit: dec("5")}
	_, err = l.PostJournalEntry(ctx, entry(jan(1), "", both, cr("owner-capital", "5")))
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestAccountLedger_OpeningFromEarlierPostings(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	mustPost(t, l, entry(jan(1), "", dr("cash", "100"), cr("owner-capital", "100")))
	mustPost(t, l, entry(jan(5), "", dr("cash", "50"), cr("owner-capital", "50")))
	mustPost(t, l, entry(jan(3), "", dr("operating-expenses", "30"), cr("cash", "30")))
	mustPost(t, l, entry(jan(9), "", dr("operating-expenses", "5"), cr("cash", "5")))

	res, err := l.AccountLedger(ctx, "cash", jan(2), jan(8))
	require.NoError(t, err)
	assert.True(t, res.OpeningBalance.Equal(dec("100")))
	assert.Equal(t, []string{"70", "120"}, balances(res))
	assert.True(t, res.ClosingBalance.Equal(dec("120")))

	all, err := l.AccountLedger(ctx, "cash", civil.Date{}, civil.Date{})
	require.NoError(t, err)
	assert.Len(t, all.Rows, 4)
	assert.True(t, all.ClosingBalance.Equal(dec("115")))

	_, err = l.AccountLedger(ctx, "cash", jan(8), jan(2))
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	mustPost(t, l, entry(jan(1), "", dr("cash", "1000"), cr("owner-capital", "1000")))
	mustPost(t, l, entry(jan(2), "", dr("loans-receivable", "1150"), cr("cash", "1000"), cr("interest-income", "150")))
	mustPost(t, l, entry(jan(10), "", dr("operating-expenses", "20"), cr("cash", "20")))

	tb, err := l.TrialBalance(ctx, civil.Date{})
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced, tb.Message)
	assert.True(t, tb.TotalDebits.Equal(dec("1170")), "debits = %s", tb.TotalDebits)

	bs, err := l.BalanceSheet(ctx, civil.Date{})
	require.NoError(t, err)
	assert.True(t, bs.IsBalanced, bs.Message)
	assert.True(t, bs.TotalAssets.Equal(dec("1130")))
	assert.True(t, bs.TotalEquity.Equal(dec("1130")))

	is, err := l.IncomeStatement(ctx, jan(1), jan(31))
	require.NoError(t, err)
	assert.True(t, is.NetIncome.Equal(dec("130")))

	early, err := l.IncomeStatement(ctx, jan(1), jan(5))
	require.NoError(t, err)
	assert.True(t, early.NetIncome.Equal(dec("150")))

	asOf, err := l.TrialBalance(ctx, jan(1))
	require.NoError(t, err)
	assert.True(t, asOf.TotalDebits.Equal(dec("1000")))
}

func TestPostJournalEntry_Concurrent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := entry(civil.DateOf(time.Date(2024, 1, 1+i%28, 0, 0, 0, 0, time.UTC)), "", dr("cash", "2"), cr("owner-capital", "2"))
			if i%2 == 1 {
				e.Lines[0], e.Lines[1] = e.Lines[1], e.Lines[0]
			}
			_, err := l.PostJournalEntry(ctx, e)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	balance, err := l.Balance(ctx, "cash", civil.Date{})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("50")))
}

func mustPost(t *testing.T, l *Ledger, e models.JournalEntry) {
	t.Helper()
	_, err := l.PostJournalEntry(context.Background(), e)
	require.NoError(t, err)
}
