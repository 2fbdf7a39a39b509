package interfaces

import (
	"context"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

type LoanStore interface {
	SaveLoan(ctx context.Context, loan models.Loan) error
	GetLoan(ctx context.Context, loanID string) (models.Loan, error)

	// SavePayment records the payment and the loan's new balance and status
	// together.
	SavePayment(ctx context.Context, loan models.Loan, payment models.Payment) error
	ListPayments(ctx context.Context, loanID string) ([]models.Payment, error)
}
