package models

import "github.com/shopspring/decimal"

// LedgerRow is a posting together with the account balance after it.
type LedgerRow struct {
	Posting        Posting         `json:"posting"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type LedgerResult struct {
	AccountID      string          `json:"account_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []LedgerRow     `json:"rows"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// AccountBalance is one trial balance line.
type AccountBalance struct {
	AccountID     string          `json:"account_id"`
	Name          string          `json:"name"`
	DebitBalance  decimal.Decimal `json:"debit_balance"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

type TrialBalanceResult struct {
	Accounts     []AccountBalance `json:"accounts"`
	TotalDebits  decimal.Decimal  `json:"total_debits"`
	TotalCredits decimal.Decimal  `json:"total_credits"`
	Difference   decimal.Decimal  `json:"difference"` // credits minus debits
	IsBalanced   bool             `json:"is_balanced"`
	Message      string           `json:"message"`
}

// AccountAmount is an account with its balance on its normal side.
type AccountAmount struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

type BalanceSheetResult struct {
	Assets                    []AccountAmount `json:"assets"`
	Liabilities               []AccountAmount `json:"liabilities"`
	Equity                    []AccountAmount `json:"equity"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	TotalLiabilities          decimal.Decimal `json:"total_liabilities"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	Difference                decimal.Decimal `json:"difference"` // assets minus liabilities and equity
	IsBalanced                bool            `json:"is_balanced"`
	Message                   string          `json:"message"`
}

type IncomeStatementResult struct {
	Revenues      []AccountAmount `json:"revenues"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
}
