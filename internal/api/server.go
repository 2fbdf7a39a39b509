// Package api provides the HTTP server for loan quotes, loan servicing and
// ledger reports.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/microfinance-ledger/internal/logger"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// LoanService is the loan side of the API.
type LoanService interface {
	Quote(ctx context.Context, terms models.LoanTerms) (models.LoanFinancials, error)
	Originate(ctx context.Context, clientID string, terms models.LoanTerms) (models.Loan, error)
	RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, paidOn civil.Date) (models.Loan, models.Payment, error)
	GetLoan(ctx context.Context, loanID string) (models.Loan, error)
	Payments(ctx context.Context, loanID string) ([]models.Payment, error)
}

// LedgerService is the accounting side of the API.
type LedgerService interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	PostJournalEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error)
	AccountLedger(ctx context.Context, accountID string, from, to civil.Date) (models.LedgerResult, error)
	TrialBalance(ctx context.Context, asOf civil.Date) (models.TrialBalanceResult, error)
	BalanceSheet(ctx context.Context, asOf civil.Date) (models.BalanceSheetResult, error)
	IncomeStatement(ctx context.Context, from, to civil.Date) (models.IncomeStatementResult, error)
}

// Server is the HTTP API server.
type Server struct {
	loans          LoanService
	ledger         LedgerService
	log            *zap.Logger
	metricsEnabled bool
	today          func() civil.Date
}

func NewServer(loans LoanService, ledger LedgerService, log *zap.Logger) *Server {
	return &Server{
		loans:  loans,
		ledger: ledger,
		log:    log,
		today:  func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/loans/quote", s.handleQuote)
		r.Post("/loans", s.handleOriginate)
		r.Get("/loans/{id}", s.handleGetLoan)
		r.Get("/loans/{id}/payments", s.handleListPayments)
		r.Post("/loans/{id}/payments", s.handleRecordPayment)

		r.Get("/accounts", s.handleListAccounts)
		r.Get("/accounts/{id}/ledger", s.handleAccountLedger)
		r.Post("/journal-entries", s.handleJournalEntry)

		r.Get("/reports/trial-balance", s.handleTrialBalance)
		r.Get("/reports/balance-sheet", s.handleBalanceSheet)
		r.Get("/reports/income-statement", s.handleIncomeStatement)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrIncomplete):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrInvalidArgument), errors.Is(err, models.ErrUnbalancedEntry):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrLoanSettled):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryDate parses an optional YYYY-MM-DD query parameter. An absent
// parameter yields the zero date.
func queryDate(r *http.Request, name string) (civil.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return civil.Date{}, errors.New(name + " must be a YYYY-MM-DD date")
	}
	return d, nil
}
