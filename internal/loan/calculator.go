// Package loan derives loan financials from loan terms and records
// originations and repayments.
package loan

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/microfinance-ledger/internal/calendar"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/money"
)

// ComputeLoanFinancials derives interest, total repayment, balance due and
// due date from terms.
//
// Interest is flat: principal * rate% * termLength, applied once per term
// unit and never compounded. Interest is rounded first and the total is the
// rounded sum of principal and rounded interest.
//
// It returns models.ErrIncomplete while the principal is missing or zero, or
// the rate, term length, unit or start date is missing. Present but malformed
// values fail with models.ErrInvalidArgument.
func ComputeLoanFinancials(terms models.LoanTerms) (models.LoanFinancials, error) {
	if err := validateTerms(terms); err != nil {
		return models.LoanFinancials{}, err
	}
	if !isComplete(terms) {
		return models.LoanFinancials{}, models.ErrIncomplete
	}

	principal := terms.Principal.Decimal
	length := *terms.TermLength

	dueDate, err := calendar.AddTerm(terms.StartDate, length, terms.TermUnit)
	if err != nil {
		return models.LoanFinancials{}, err
	}

	interest := money.Round2(money.Percent(principal, terms.RatePercent.Decimal).Mul(decimal.NewFromInt(int64(length))))
	total := money.Round2(principal.Add(interest))

	return models.LoanFinancials{
		InterestAmount: interest,
		TotalRepayment: total,
		BalanceDue:     total,
		DueDate:        dueDate,
	}, nil
}

func validateTerms(terms models.LoanTerms) error {
	if terms.Principal.Valid && terms.Principal.Decimal.IsNegative() {
		return fmt.Errorf("%w: principal must not be negative", models.ErrInvalidArgument)
	}
	if terms.RatePercent.Valid && terms.RatePercent.Decimal.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative", models.ErrInvalidArgument)
	}
	if terms.TermLength != nil && *terms.TermLength <= 0 {
		return fmt.Errorf("%w: term length must be positive, got %d", models.ErrInvalidArgument, *terms.TermLength)
	}
	if terms.TermUnit != "" && !terms.TermUnit.Valid() {
		return fmt.Errorf("%w: unknown term unit %q", models.ErrInvalidArgument, terms.TermUnit)
	}
	if !isZeroDate(terms.StartDate) && !terms.StartDate.IsValid() {
		return fmt.Errorf("%w: start date %s is not a calendar date", models.ErrInvalidArgument, terms.StartDate)
	}
	return nil
}

func isComplete(terms models.LoanTerms) bool {
	return terms.Principal.Valid && terms.Principal.Decimal.IsPositive() &&
		terms.RatePercent.Valid &&
		terms.TermLength != nil &&
		terms.TermUnit != "" &&
		!isZeroDate(terms.StartDate)
}

func isZeroDate(d civil.Date) bool {
	return d == civil.Date{}
}

// Resolve turns complete terms into an unsaved Loan carrying its financials.
func Resolve(terms models.LoanTerms) (models.Loan, error) {
	fin, err := ComputeLoanFinancials(terms)
	if err != nil {
		return models.Loan{}, err
	}
	return models.Loan{
		Principal:      terms.Principal.Decimal,
		RatePercent:    terms.RatePercent.Decimal,
		TermLength:     *terms.TermLength,
		TermUnit:       terms.TermUnit,
		StartDate:      terms.StartDate,
		LoanFinancials: fin,
		Status:         models.LoanActive,
	}, nil
}
