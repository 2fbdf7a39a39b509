package loan

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

func TestRecomputer_StaleResultIsDiscarded(t *testing.T) {
	var r Recomputer

	older := r.Begin()
	newer := r.Begin()

	assert.True(t, r.Commit(newer, models.LoanFinancials{TotalRepayment: dec("200")}))
	assert.False(t, r.Commit(older, models.LoanFinancials{TotalRepayment: dec("100")}))

	got, ok := r.Latest()
	require.True(t, ok)
	assert.True(t, got.TotalRepayment.Equal(dec("200")))
}

func TestRecomputer_IncompleteKeepsPrevious(t *testing.T) {
	var r Recomputer

	full := terms("1000", "5", 3, models.TermMonth, day(2024, 1, 15))
	fin, ok, err := r.Recompute(full)
	require.NoError(t, err)
	require.True(t, ok)

	partial := full
	partial.Principal = decimal.NullDecimal{}
	kept, ok, err := r.Recompute(partial)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fin, kept)
}

func TestRecomputer_IncompleteBeforeAnyResult(t *testing.T) {
	var r Recomputer
	_, ok, err := r.Recompute(models.LoanTerms{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecomputer_InvalidIsReported(t *testing.T) {
	var r Recomputer
	bad := terms("1000", "5", 0, models.TermMonth, day(2024, 1, 15))
	_, _, err := r.Recompute(bad)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestRecomputer_Concurrent(t *testing.T) {
	var r Recomputer
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, err := r.Recompute(terms("1000", "1", n, models.TermDay, day(2024, 1, 1)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	_, ok := r.Latest()
	assert.True(t, ok)
}
