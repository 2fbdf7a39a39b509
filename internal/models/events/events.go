package events

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	TopicLoanQuoted         = "loan_quoted"
	TopicLoanOriginated     = "loan_originated"
	TopicPaymentRecorded    = "payment_recorded"
	TopicJournalEntryPosted = "journal_entry_posted"
)

type LoanQuoted struct {
	Principal      decimal.Decimal `json:"principal"`
	RatePercent    decimal.Decimal `json:"rate_percent"`
	TermLength     int             `json:"term_length"`
	TermUnit       string          `json:"term_unit"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	DueDate        civil.Date      `json:"due_date"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type LoanOriginated struct {
	LoanID         string          `json:"loan_id"`
	ClientID       string          `json:"client_id"`
	Principal      decimal.Decimal `json:"principal"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	DueDate        civil.Date      `json:"due_date"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type PaymentRecorded struct {
	PaymentID    string          `json:"payment_id"`
	LoanID       string          `json:"loan_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type JournalEntryPosted struct {
	EntryID    string          `json:"entry_id"`
	Date       civil.Date      `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Lines      int             `json:"lines"`
	OccurredAt time.Time       `json:"occurred_at"`
}
