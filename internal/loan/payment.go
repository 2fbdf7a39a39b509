package loan

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/money"
)

// ApplyPayment returns a copy of fin with amount taken off the balance due.
// Overpayment is rejected.
func ApplyPayment(fin models.LoanFinancials, amount decimal.Decimal) (models.LoanFinancials, error) {
	amount = money.Round2(amount)
	if !amount.IsPositive() {
		return fin, fmt.Errorf("%w: payment amount must be positive", models.ErrInvalidArgument)
	}
	if amount.GreaterThan(fin.BalanceDue) {
		return fin, fmt.Errorf("%w: payment %s exceeds balance due %s",
			models.ErrInvalidArgument, amount.StringFixed(2), fin.BalanceDue.StringFixed(2))
	}
	out := fin
	out.BalanceDue = money.Round2(fin.BalanceDue.Sub(amount))
	return out, nil
}
