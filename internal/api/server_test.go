package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/microfinance-ledger/internal/cache"
	"github.com/sheikh-saqib/microfinance-ledger/internal/ledger"
	"github.com/sheikh-saqib/microfinance-ledger/internal/loan"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop()

	l := ledger.NewLedger(memory.NewMemoryLedgerStore(), nil, log)
	require.NoError(t, l.EnsureAccounts(context.Background(), ledger.DefaultChart()))

	svc := loan.NewService(memory.NewMemoryLoanStore(), nil, log,
		loan.WithCache(cache.NewMemoryCache(), 0),
		loan.WithJournal(l, loan.Accounts{Cash: "cash", LoansReceivable: "loans-receivable", InterestIncome: "interest-income"}),
	)

	srv := NewServer(svc, l, log)
	srv.today = func() civil.Date { return civil.Date{Year: 2024, Month: 3, Day: 15} }
	srv.EnableMetrics()
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "microfinance_")
}

func TestQuote(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		status   int
		interest string
		total    string
		due      string
	}{
		{
			name:     "monthly loan",
			body:     `{"principal":"1000","rate_percent":"5","term_length":3,"term_unit":"month","start_date":"2024-01-31"}`,
			status:   http.StatusOK,
			interest: "150",
			total:    "1150",
			due:      "2024-04-30",
		},
		{
			name:     "zero rate",
			body:     `{"principal":"500","rate_percent":"0","term_length":10,"term_unit":"day","start_date":"2024-03-01"}`,
			status:   http.StatusOK,
			interest: "0",
			total:    "500",
			due:      "2024-03-11",
		},
		{
			name:   "missing start date is incomplete",
			body:   `{"principal":"1000","rate_percent":"5","term_length":3,"term_unit":"month"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "negative principal is invalid",
			body:   `{"principal":"-1","rate_percent":"5","term_length":3,"term_unit":"month","start_date":"2024-01-31"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"amount":"1000"}`,
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/loans/quote", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				body := decode[map[string]map[string]any](t, rec)
				assert.NotEmpty(t, body["error"]["message"])
				return
			}
			fin := decode[models.LoanFinancials](t, rec)
			assert.Equal(t, tt.interest, fin.InterestAmount.String())
			assert.Equal(t, tt.total, fin.TotalRepayment.String())
			assert.Equal(t, tt.total, fin.BalanceDue.String())
			assert.Equal(t, tt.due, fin.DueDate.String())
		})
	}
}

func TestLoanLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/loans",
		`{"client_id":"c-1","principal":"1000","rate_percent":"5","term_length":3,"term_unit":"month","start_date":"2024-01-31"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Loan](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "1150", created.BalanceDue.String())

	rec = do(t, h, http.MethodPost, "/v1/loans/"+created.ID+"/payments", `{"amount":"150"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	paid := decode[paymentResponse](t, rec)
	assert.Equal(t, "1000", paid.Loan.BalanceDue.String())
	assert.Equal(t, "2024-03-15", paid.Payment.PaidOn.String())

	rec = do(t, h, http.MethodPost, "/v1/loans/"+created.ID+"/payments", `{"amount":"5000","paid_on":"2024-03-20"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/loans/"+created.ID+"/payments", `{"amount":"1000","paid_on":"2024-03-20"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/v1/loans/"+created.ID+"/payments", `{"amount":"1","paid_on":"2024-03-21"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/loans/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Loan](t, rec)
	assert.Equal(t, models.LoanSettled, got.Status)
	assert.True(t, got.BalanceDue.IsZero())

	rec = do(t, h, http.MethodGet, "/v1/loans/"+created.ID+"/payments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	payments := decode[map[string][]models.Payment](t, rec)
	assert.Len(t, payments["payments"], 2)

	rec = do(t, h, http.MethodGet, "/v1/reports/trial-balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tb := decode[models.TrialBalanceResult](t, rec)
	assert.True(t, tb.IsBalanced)
	assert.Equal(t, "150", tb.TotalDebits.String())

	rec = do(t, h, http.MethodGet, "/v1/accounts/loans-receivable/ledger?from=2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ledgerResult := decode[models.LedgerResult](t, rec)
	assert.Equal(t, "1150", ledgerResult.OpeningBalance.String())
	require.Len(t, ledgerResult.Rows, 2)
	assert.True(t, ledgerResult.ClosingBalance.IsZero())
}

func TestGetLoanNotFound(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/v1/loans/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalEntries(t *testing.T) {
	h := newTestServer(t)

	capital := `{"date":"2024-01-01","memo":"capital","lines":[` +
		`{"account_id":"cash","debit":"1000"},{"account_id":"owner-capital","credit":"1000"}]}`

	req := httptest.NewRequest(http.MethodPost, "/v1/journal-entries", bytes.NewBufferString(capital))
	req.Header.Set("Idempotency-Key", "capital-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[models.JournalEntry](t, rec)

	req = httptest.NewRequest(http.MethodPost, "/v1/journal-entries", bytes.NewBufferString(capital))
	req.Header.Set("Idempotency-Key", "capital-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, first.ID, decode[models.JournalEntry](t, rec).ID)

	unbalanced := `{"date":"2024-01-02","lines":[` +
		`{"account_id":"operating-expenses","debit":"10"},{"account_id":"cash","credit":"9.99"}]}`
	rec = do(t, h, http.MethodPost, "/v1/journal-entries", unbalanced)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	expense := `{"date":"2024-01-05","lines":[` +
		`{"account_id":"operating-expenses","debit":"40"},{"account_id":"cash","credit":"40"}]}`
	rec = do(t, h, http.MethodPost, "/v1/journal-entries", expense)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/reports/balance-sheet?as_of=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	bs := decode[models.BalanceSheetResult](t, rec)
	assert.True(t, bs.IsBalanced)
	assert.Equal(t, "960", bs.TotalAssets.String())
	assert.Equal(t, "960", bs.TotalEquity.String())

	rec = do(t, h, http.MethodGet, "/v1/reports/income-statement?from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	is := decode[models.IncomeStatementResult](t, rec)
	assert.Equal(t, "-40", is.NetIncome.String())

	rec = do(t, h, http.MethodGet, "/v1/reports/trial-balance?as_of=2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tb := decode[models.TrialBalanceResult](t, rec)
	assert.Equal(t, "1000", tb.TotalDebits.String())

	rec = do(t, h, http.MethodGet, "/v1/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[map[string][]models.Account](t, rec)
	assert.Len(t, accounts["accounts"], len(ledger.DefaultChart()))
}

func TestBadQueryDates(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{
		"/v1/reports/trial-balance?as_of=yesterday",
		"/v1/reports/balance-sheet?as_of=2024-13-01",
		"/v1/reports/income-statement?from=2024-02-01&to=2024-01-01",
		"/v1/accounts/cash/ledger?to=31-01-2024",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
