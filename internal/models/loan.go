package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TermUnit is the calendar unit a loan term is expressed in.
type TermUnit string

const (
	TermDay   TermUnit = "day"
	TermWeek  TermUnit = "week"
	TermMonth TermUnit = "month"
	TermYear  TermUnit = "year"
)

// Valid reports whether u is one of the known units.
func (u TermUnit) Valid() bool {
	switch u {
	case TermDay, TermWeek, TermMonth, TermYear:
		return true
	}
	return false
}

// LoanTerms is the raw loan form. Optional fields model input that has not
// been entered yet: an invalid NullDecimal, a nil TermLength or a zero StartDate.
type LoanTerms struct {
	Principal   decimal.NullDecimal `json:"principal"`
	RatePercent decimal.NullDecimal `json:"rate_percent"` // flat, applied once per term unit
	TermLength  *int                `json:"term_length"`
	TermUnit    TermUnit            `json:"term_unit"`
	StartDate   civil.Date          `json:"start_date"`
}

// LoanFinancials holds the values derived from LoanTerms. It is always
// replaced as a whole.
type LoanFinancials struct {
	InterestAmount decimal.Decimal `json:"interest_amount"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	DueDate        civil.Date      `json:"due_date"`
}

type LoanStatus string

const (
	LoanActive  LoanStatus = "active"
	LoanSettled LoanStatus = "settled"
)

// Loan is an originated loan with resolved terms.
type Loan struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Principal   decimal.Decimal `json:"principal"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	TermLength  int             `json:"term_length"`
	TermUnit    TermUnit        `json:"term_unit"`
	StartDate   civil.Date      `json:"start_date"`
	LoanFinancials
	Status    LoanStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Payment is a single repayment recorded against a loan.
type Payment struct {
	ID           string          `json:"id"`
	LoanID       string          `json:"loan_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidOn       civil.Date      `json:"paid_on"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
