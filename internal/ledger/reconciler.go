package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/microfinance-ledger/internal/calendar"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
	"github.com/sheikh-saqib/microfinance-ledger/internal/money"
)

// ValidatePosting checks that p carries exactly one non-negative, non-zero side.
func ValidatePosting(p models.Posting) error {
	if p.Debit.IsNegative() || p.Credit.IsNegative() {
		return fmt.Errorf("%w: posting %q has a negative amount", models.ErrInvalidArgument, p.Reference)
	}
	if p.Debit.IsZero() == p.Credit.IsZero() {
		return fmt.Errorf("%w: posting %q must carry exactly one of debit or credit", models.ErrInvalidArgument, p.Reference)
	}
	if !p.Date.IsValid() {
		return fmt.Errorf("%w: posting %q has no valid date", models.ErrInvalidArgument, p.Reference)
	}
	return nil
}

// SignedAmount is the effect of p on a balance kept on side.
func SignedAmount(p models.Posting, side models.NormalSide) decimal.Decimal {
	if side == models.SideCredit {
		return p.Credit.Sub(p.Debit)
	}
	return p.Debit.Sub(p.Credit)
}

// BuildLedger orders postings by date, keeping the supplied order for
// same-day postings, and computes the running balance from opening.
// The postings slice is not modified.
func BuildLedger(accountID string, postings []models.Posting, opening decimal.Decimal, side models.NormalSide) (models.LedgerResult, error) {
	if side != models.SideDebit && side != models.SideCredit {
		return models.LedgerResult{}, fmt.Errorf("%w: unknown normal side %q", models.ErrInvalidArgument, side)
	}
	for _, p := range postings {
		if err := ValidatePosting(p); err != nil {
			return models.LedgerResult{}, err
		}
	}

	sorted := slices.Clone(postings)
	slices.SortStableFunc(sorted, func(a, b models.Posting) int {
		return calendar.Compare(a.Date, b.Date)
	})

	// The running sum stays exact; only the reported balances are rounded.
	running := opening
	rows := make([]models.LedgerRow, 0, len(sorted))
	for _, p := range sorted {
		running = running.Add(SignedAmount(p, side))
		rows = append(rows, models.LedgerRow{Posting: p, RunningBalance: money.Round2(running)})
	}

	return models.LedgerResult{
		AccountID:      accountID,
		OpeningBalance: money.Round2(opening),
		Rows:           rows,
		ClosingBalance: money.Round2(running),
	}, nil
}

// BuildTrialBalance totals the debit and credit columns independently and
// checks that they agree to the cent. Difference is credits minus debits,
// so a debit column short by a cent reports 0.01.
func BuildTrialBalance(accounts []models.AccountBalance) (models.TrialBalanceResult, error) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		if a.DebitBalance.IsNegative() || a.CreditBalance.IsNegative() {
			return models.TrialBalanceResult{}, fmt.Errorf("%w: account %q has a negative balance column", models.ErrInvalidArgument, a.AccountID)
		}
		debits = debits.Add(a.DebitBalance)
		credits = credits.Add(a.CreditBalance)
	}
	debits, credits = money.Round2(debits), money.Round2(credits)
	diff := credits.Sub(debits)
	balanced := diff.IsZero()

	msg := fmt.Sprintf("Trial balance is balanced: total debits %s equal total credits %s.",
		debits.StringFixed(2), credits.StringFixed(2))
	if !balanced {
		msg = fmt.Sprintf("Trial balance is out of balance by %s: total debits %s, total credits %s.",
			diff.StringFixed(2), debits.StringFixed(2), credits.StringFixed(2))
	}

	return models.TrialBalanceResult{
		Accounts:     slices.Clone(accounts),
		TotalDebits:  debits,
		TotalCredits: credits,
		Difference:   diff,
		IsBalanced:   balanced,
		Message:      msg,
	}, nil
}

// BuildBalanceSheet totals each bucket and checks the accounting equation
// assets = liabilities + equity.
func BuildBalanceSheet(assets, liabilities, equity []models.AccountAmount) models.BalanceSheetResult {
	rawAssets := sumAmounts(assets)
	rawLiabilities := sumAmounts(liabilities)
	rawEquity := sumAmounts(equity)

	totalAssets := money.Round2(rawAssets)
	rhs := money.Round2(rawLiabilities.Add(rawEquity))
	diff := totalAssets.Sub(rhs)
	balanced := diff.IsZero()

	msg := fmt.Sprintf("Balance sheet is balanced: total assets %s equal liabilities and equity %s.",
		totalAssets.StringFixed(2), rhs.StringFixed(2))
	if !balanced {
		msg = fmt.Sprintf("Balance sheet is out of balance by %s: total assets %s, liabilities and equity %s.",
			diff.StringFixed(2), totalAssets.StringFixed(2), rhs.StringFixed(2))
	}

	return models.BalanceSheetResult{
		Assets:                    slices.Clone(assets),
		Liabilities:               slices.Clone(liabilities),
		Equity:                    slices.Clone(equity),
		TotalAssets:               totalAssets,
		TotalLiabilities:          money.Round2(rawLiabilities),
		TotalEquity:               money.Round2(rawEquity),
		TotalLiabilitiesAndEquity: rhs,
		Difference:                diff,
		IsBalanced:                balanced,
		Message:                   msg,
	}
}

// BuildIncomeStatement nets revenues against expenses.
func BuildIncomeStatement(revenues, expenses []models.AccountAmount) models.IncomeStatementResult {
	totalRevenue := sumAmounts(revenues)
	totalExpenses := sumAmounts(expenses)
	return models.IncomeStatementResult{
		Revenues:      slices.Clone(revenues),
		Expenses:      slices.Clone(expenses),
		TotalRevenue:  money.Round2(totalRevenue),
		TotalExpenses: money.Round2(totalExpenses),
		NetIncome:     money.Round2(totalRevenue.Sub(totalExpenses)),
	}
}

// sumAmounts is exact; callers round the totals they report.
func sumAmounts(items []models.AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
