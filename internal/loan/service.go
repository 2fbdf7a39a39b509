package loan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/locks"
	"github.com/sheikh-saqib/microfinance-ledger/internal/metrics"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models/events"
	"github.com/sheikh-saqib/microfinance-ledger/internal/money"
)

// JournalPoster books the accounting side of loan events.
type JournalPoster interface {
	PostJournalEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error)
}

// Accounts names the ledger accounts loan events are booked against.
type Accounts struct {
	Cash            string
	LoansReceivable string
	InterestIncome  string
}

// Service quotes, originates and collects loans.
type Service struct {
	store     interfaces.LoanStore
	cache     interfaces.QuoteCache
	publisher interfaces.EventPublisher
	journal   JournalPoster
	accounts  Accounts
	cacheTTL  time.Duration
	locks     *locks.Keyed
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithCache enables quote caching.
func WithCache(c interfaces.QuoteCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithJournal books originations and payments in the ledger.
func WithJournal(j JournalPoster, accounts Accounts) Option {
	return func(s *Service) {
		s.journal = j
		s.accounts = accounts
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store interfaces.LoanStore, publisher interfaces.EventPublisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		locks:     locks.NewKeyed(),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote computes financials for terms without persisting anything.
func (s *Service) Quote(ctx context.Context, terms models.LoanTerms) (models.LoanFinancials, error) {
	key := quoteKey(terms)
	if s.cache != nil {
		if fin, ok := s.cachedQuote(ctx, key); ok {
			metrics.LoanQuotes.WithLabelValues("cached").Inc()
			return fin, nil
		}
	}

	fin, err := ComputeLoanFinancials(terms)
	switch {
	case errors.Is(err, models.ErrIncomplete):
		metrics.LoanQuotes.WithLabelValues("incomplete").Inc()
		return models.LoanFinancials{}, err
	case err != nil:
		metrics.LoanQuotes.WithLabelValues("invalid").Inc()
		return models.LoanFinancials{}, err
	}
	metrics.LoanQuotes.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if raw, err := json.Marshal(fin); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
				s.log.Warn("cache quote", zap.String("key", key), zap.Error(err))
			}
		}
	}

	s.publish(ctx, events.TopicLoanQuoted, key, events.LoanQuoted{
		Principal:      terms.Principal.Decimal,
		RatePercent:    terms.RatePercent.Decimal,
		TermLength:     *terms.TermLength,
		TermUnit:       string(terms.TermUnit),
		InterestAmount: fin.InterestAmount,
		TotalRepayment: fin.TotalRepayment,
		DueDate:        fin.DueDate,
		OccurredAt:     s.now(),
	})
	return fin, nil
}

func (s *Service) cachedQuote(ctx context.Context, key string) (models.LoanFinancials, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("read cached quote", zap.String("key", key), zap.Error(err))
		return models.LoanFinancials{}, false
	}
	if !ok {
		return models.LoanFinancials{}, false
	}
	var fin models.LoanFinancials
	if err := json.Unmarshal([]byte(raw), &fin); err != nil {
		s.log.Warn("decode cached quote", zap.String("key", key), zap.Error(err))
		return models.LoanFinancials{}, false
	}
	return fin, true
}

// Originate creates a loan for clientID. Incomplete terms are rejected.
func (s *Service) Originate(ctx context.Context, clientID string, terms models.LoanTerms) (models.Loan, error) {
	if clientID == "" {
		return models.Loan{}, fmt.Errorf("%w: client id is required", models.ErrInvalidArgument)
	}
	loan, err := Resolve(terms)
	if err != nil {
		return models.Loan{}, err
	}
	loan.ID = uuid.New().String()
	loan.ClientID = clientID
	loan.CreatedAt = s.now()

	// Book first so a loan is never stored without its ledger entry.
	booked, err := s.book(ctx, s.originationEntry(loan))
	if err != nil {
		return models.Loan{}, fmt.Errorf("book loan %s: %w", loan.ID, err)
	}
	if err := s.store.SaveLoan(ctx, loan); err != nil {
		s.reverse(ctx, booked)
		return models.Loan{}, fmt.Errorf("save loan: %w", err)
	}
	metrics.LoansOriginated.Inc()

	s.publish(ctx, events.TopicLoanOriginated, loan.ID, events.LoanOriginated{
		LoanID:         loan.ID,
		ClientID:       loan.ClientID,
		Principal:      loan.Principal,
		TotalRepayment: loan.TotalRepayment,
		DueDate:        loan.DueDate,
		OccurredAt:     loan.CreatedAt,
	})
	return loan, nil
}

// RecordPayment applies a repayment to the loan and stores both.
func (s *Service) RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, paidOn civil.Date) (models.Loan, models.Payment, error) {
	if !paidOn.IsValid() {
		return models.Loan{}, models.Payment{}, fmt.Errorf("%w: payment date %s is not a calendar date", models.ErrInvalidArgument, paidOn)
	}

	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return models.Loan{}, models.Payment{}, err
	}
	if loan.Status == models.LoanSettled {
		return models.Loan{}, models.Payment{}, fmt.Errorf("loan %s: %w", loanID, models.ErrLoanSettled)
	}

	fin, err := ApplyPayment(loan.LoanFinancials, amount)
	if err != nil {
		return models.Loan{}, models.Payment{}, err
	}
	loan.LoanFinancials = fin
	if fin.BalanceDue.IsZero() {
		loan.Status = models.LoanSettled
	}

	payment := models.Payment{
		ID:           uuid.New().String(),
		LoanID:       loanID,
		Amount:       money.Round2(amount),
		PaidOn:       paidOn,
		BalanceAfter: fin.BalanceDue,
		CreatedAt:    s.now(),
	}
	booked, err := s.book(ctx, s.paymentEntry(payment))
	if err != nil {
		return models.Loan{}, models.Payment{}, fmt.Errorf("book payment %s: %w", payment.ID, err)
	}
	if err := s.store.SavePayment(ctx, loan, payment); err != nil {
		s.reverse(ctx, booked)
		return models.Loan{}, models.Payment{}, fmt.Errorf("save payment: %w", err)
	}
	metrics.PaymentsRecorded.Inc()

	s.publish(ctx, events.TopicPaymentRecorded, loanID, events.PaymentRecorded{
		PaymentID:    payment.ID,
		LoanID:       loanID,
		Amount:       payment.Amount,
		BalanceAfter: payment.BalanceAfter,
		OccurredAt:   payment.CreatedAt,
	})
	return loan, payment, nil
}

func (s *Service) GetLoan(ctx context.Context, loanID string) (models.Loan, error) {
	return s.store.GetLoan(ctx, loanID)
}

func (s *Service) Payments(ctx context.Context, loanID string) ([]models.Payment, error) {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, loanID)
}

// originationEntry books the full repayment as receivable: principal leaves
// cash and the flat interest is recognised up front.
func (s *Service) originationEntry(loan models.Loan) models.JournalEntry {
	lines := []models.JournalLine{
		{AccountID: s.accounts.LoansReceivable, Debit: loan.TotalRepayment},
		{AccountID: s.accounts.Cash, Credit: loan.Principal},
	}
	if loan.InterestAmount.IsPositive() {
		lines = append(lines, models.JournalLine{AccountID: s.accounts.InterestIncome, Credit: loan.InterestAmount})
	}
	return models.JournalEntry{
		IdempotencyKey: "loan:" + loan.ID,
		Date:           loan.StartDate,
		Memo:           "loan disbursement " + loan.ID,
		Lines:          lines,
	}
}

func (s *Service) paymentEntry(p models.Payment) models.JournalEntry {
	return models.JournalEntry{
		IdempotencyKey: "payment:" + p.ID,
		Date:           p.PaidOn,
		Memo:           "loan repayment " + p.LoanID,
		Lines: []models.JournalLine{
			{AccountID: s.accounts.Cash, Debit: p.Amount},
			{AccountID: s.accounts.LoansReceivable, Credit: p.Amount},
		},
	}
}

// book posts entry when a journal is configured. The zero entry is returned
// without one.
func (s *Service) book(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if s.journal == nil {
		return models.JournalEntry{}, nil
	}
	return s.journal.PostJournalEntry(ctx, entry)
}

// reverse undoes a booked entry whose loan record could not be saved.
func (s *Service) reverse(ctx context.Context, booked models.JournalEntry) {
	if s.journal == nil || booked.ID == "" {
		return
	}
	lines := make([]models.JournalLine, 0, len(booked.Lines))
	for _, line := range booked.Lines {
		lines = append(lines, models.JournalLine{AccountID: line.AccountID, Debit: line.Credit, Credit: line.Debit})
	}
	reversal := models.JournalEntry{
		IdempotencyKey: "reversal:" + booked.ID,
		Date:           booked.Date,
		Memo:           "reversal of " + booked.ID,
		Lines:          lines,
	}
	if _, err := s.journal.PostJournalEntry(ctx, reversal); err != nil {
		s.log.Error("reverse journal entry", zap.String("entry_id", booked.ID), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, topic, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		s.log.Warn("publish event", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
	}
}

// quoteKey fingerprints terms for the quote cache.
func quoteKey(t models.LoanTerms) string {
	length := "-"
	if t.TermLength != nil {
		length = strconv.Itoa(*t.TermLength)
	}
	return fmt.Sprintf("quote:%s:%s:%s:%s:%s",
		nullString(t.Principal), nullString(t.RatePercent), length, t.TermUnit, t.StartDate)
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}
