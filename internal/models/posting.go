package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// NormalSide is the side on which an account's balance conventionally grows.
type NormalSide string

const (
	SideDebit  NormalSide = "debit"
	SideCredit NormalSide = "credit"
)

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// NormalSide returns debit for assets and expenses, credit otherwise.
func (t AccountType) NormalSide() NormalSide {
	if t == AccountAsset || t == AccountExpense {
		return SideDebit
	}
	return SideCredit
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// Account is a chart-of-accounts entry.
type Account struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Posting is one debit or credit line against an account. Exactly one of
// Debit and Credit is non-zero.
type Posting struct {
	ID        string          `json:"id,omitempty"`
	EntryID   string          `json:"entry_id,omitempty"`
	AccountID string          `json:"account_id"`
	Date      civil.Date      `json:"date"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// JournalLine is a line of a journal entry before it is posted.
type JournalLine struct {
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// JournalEntry is a balanced set of lines recorded on one date.
type JournalEntry struct {
	ID             string        `json:"id"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
	Date           civil.Date    `json:"date"`
	Memo           string        `json:"memo,omitempty"`
	Lines          []JournalLine `json:"lines"`
	CreatedAt      time.Time     `json:"created_at"`
}

// PostingFilter narrows a posting query. Zero dates leave that end open and
// an empty AccountID matches every account.
type PostingFilter struct {
	AccountID string
	From      civil.Date
	To        civil.Date
}
