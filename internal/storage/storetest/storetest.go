// Package storetest holds the behaviour every ledger and loan store must
// share. Store packages run it from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) civil.Date { return civil.Date{Year: 2024, Month: time.March, Day: d} }

var created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func entryWithPostings(id, key string, date civil.Date, debitAcct, creditAcct, amount string) (models.JournalEntry, []models.Posting) {
	e := models.JournalEntry{
		ID:             id,
		IdempotencyKey: key,
		Date:           date,
		Memo:           "memo " + id,
		Lines: []models.JournalLine{
			{AccountID: debitAcct, Debit: dec(amount), Credit: decimal.Zero},
			{AccountID: creditAcct, Debit: decimal.Zero, Credit: dec(amount)},
		},
		CreatedAt: created,
	}
	postings := []models.Posting{
		{ID: id + "-1", EntryID: id, AccountID: debitAcct, Date: date, Debit: dec(amount), Credit: decimal.Zero, Reference: id, CreatedAt: created},
		{ID: id + "-2", EntryID: id, AccountID: creditAcct, Date: date, Debit: decimal.Zero, Credit: dec(amount), Reference: id, CreatedAt: created},
	}
	return e, postings
}

// LedgerStore exercises a fresh, empty store returned by newStore.
func LedgerStore(t *testing.T, newStore func(t *testing.T) interfaces.LedgerStore) {
	ctx := context.Background()

	t.Run("accounts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAccount(ctx, models.Account{ID: "cash", Name: "Cash", Type: models.AccountAsset}))
		require.NoError(t, s.SaveAccount(ctx, models.Account{ID: "capital", Name: "Capital", Type: models.AccountEquity}))

		got, err := s.GetAccount(ctx, "cash")
		require.NoError(t, err)
		assert.Equal(t, models.AccountAsset, got.Type)

		_, err = s.GetAccount(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)

		all, err := s.ListAccounts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		assert.Error(t, s.SaveAccount(ctx, models.Account{ID: "cash", Name: "Again", Type: models.AccountAsset}))
	})

	t.Run("journal entries and postings", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAccount(ctx, models.Account{ID: "cash", Name: "Cash", Type: models.AccountAsset}))
		require.NoError(t, s.SaveAccount(ctx, models.Account{ID: "capital", Name: "Capital", Type: models.AccountEquity}))

		e1, p1 := entryWithPostings("e1", "k1", day(5), "cash", "capital", "50.25")
		e2, p2 := entryWithPostings("e2", "", day(3), "capital", "cash", "30")
		e3, p3 := entryWithPostings("e3", "k3", day(5), "capital", "cash", "1")
		require.NoError(t, s.SaveJournalEntry(ctx, e1, p1))
		require.NoError(t, s.SaveJournalEntry(ctx, e2, p2))
		require.NoError(t, s.SaveJournalEntry(ctx, e3, p3))

		found, ok, err := s.FindJournalEntryByKey(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "e1", found.ID)
		assert.Equal(t, day(5), found.Date)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, "cash", found.Lines[0].AccountID)
		assert.True(t, found.Lines[0].Debit.Equal(dec("50.25")))

		_, ok, err = s.FindJournalEntryByKey(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)

		cash, err := s.GetPostings(ctx, models.PostingFilter{AccountID: "cash"})
		require.NoError(t, err)
		require.Len(t, cash, 3)
		total := decimal.Zero
		for _, p := range cash {
			assert.Equal(t, "cash", p.AccountID)
			total = total.Add(p.Debit).Sub(p.Credit)
		}
		assert.True(t, total.Equal(dec("19.25")), "total = %s", total)

		// same-day postings keep the order they were saved in
		var sameDay []string
		for _, p := range cash {
			if p.Date == day(5) {
				sameDay = append(sameDay, p.EntryID)
			}
		}
		assert.Equal(t, []string{"e1", "e3"}, sameDay)

		ranged, err := s.GetPostings(ctx, models.PostingFilter{AccountID: "cash", From: day(4), To: day(5)})
		require.NoError(t, err)
		assert.Len(t, ranged, 2)

		upTo, err := s.GetPostings(ctx, models.PostingFilter{To: day(3)})
		require.NoError(t, err)
		assert.Len(t, upTo, 2)
	})
}

// LoanStore exercises a fresh, empty store returned by newStore.
func LoanStore(t *testing.T, newStore func(t *testing.T) interfaces.LoanStore) {
	ctx := context.Background()

	loan := models.Loan{
		ID:          "loan-1",
		ClientID:    "client-1",
		Principal:   dec("1000"),
		RatePercent: dec("2.5"),
		TermLength:  3,
		TermUnit:    models.TermMonth,
		StartDate:   day(31),
		LoanFinancials: models.LoanFinancials{
			InterestAmount: dec("75"),
			TotalRepayment: dec("1075"),
			BalanceDue:     dec("1075"),
			DueDate:        civil.Date{Year: 2024, Month: time.June, Day: 30},
		},
		Status:    models.LoanActive,
		CreatedAt: created,
	}

	t.Run("save and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveLoan(ctx, loan))

		got, err := s.GetLoan(ctx, "loan-1")
		require.NoError(t, err)
		assert.Equal(t, loan.ClientID, got.ClientID)
		assert.Equal(t, loan.TermUnit, got.TermUnit)
		assert.Equal(t, loan.StartDate, got.StartDate)
		assert.Equal(t, loan.DueDate, got.DueDate)
		assert.True(t, got.RatePercent.Equal(dec("2.5")))
		assert.True(t, got.BalanceDue.Equal(dec("1075")))
		assert.True(t, got.CreatedAt.Equal(created))

		_, err = s.GetLoan(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("payments", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveLoan(ctx, loan))

		updated := loan
		updated.BalanceDue = dec("1000")
		first := models.Payment{ID: "p1", LoanID: loan.ID, Amount: dec("75"), PaidOn: day(31), BalanceAfter: dec("1000"), CreatedAt: created}
		require.NoError(t, s.SavePayment(ctx, updated, first))

		updated.BalanceDue = decimal.Zero
		updated.Status = models.LoanSettled
		second := models.Payment{ID: "p2", LoanID: loan.ID, Amount: dec("1000"), PaidOn: day(31), BalanceAfter: decimal.Zero, CreatedAt: created}
		require.NoError(t, s.SavePayment(ctx, updated, second))

		got, err := s.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.True(t, got.BalanceDue.IsZero())
		assert.Equal(t, models.LoanSettled, got.Status)

		payments, err := s.ListPayments(ctx, loan.ID)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, "p1", payments[0].ID)
		assert.Equal(t, day(31), payments[1].PaidOn)

		missing := loan
		missing.ID = "ghost"
		assert.ErrorIs(t, s.SavePayment(ctx, missing, models.Payment{ID: "p3", LoanID: "ghost", PaidOn: day(1), CreatedAt: created}), models.ErrNotFound)
	})
}
