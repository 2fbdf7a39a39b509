package ledger

import "github.com/sheikh-saqib/microfinance-ledger/internal/models"

// DefaultChart is the minimal chart of accounts a lending desk needs.
func DefaultChart() []models.Account {
	return []models.Account{
		{ID: "cash", Name: "Cash", Type: models.AccountAsset},
		{ID: "loans-receivable", Name: "Loans receivable", Type: models.AccountAsset},
		{ID: "owner-capital", Name: "Owner capital", Type: models.AccountEquity},
		{ID: "interest-income", Name: "Interest income", Type: models.AccountRevenue},
		{ID: "operating-expenses", Name: "Operating expenses", Type: models.AccountExpense},
	}
}
