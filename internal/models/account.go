package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeChecking   AccountType = "checking"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{
	AccountTypeSavings,
	AccountTypeInvestment,
	AccountTypeCredit,
	AccountTypeChecking,
}

// ParseAccountType parses an account type token case-insensitively.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AccountTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Account represents a financial account. Its balance is never stored; it is
// derived from the general ledger on every read.
type Account struct {
	Base
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Description string      `gorm:"not null" json:"description"`
	Type        AccountType `gorm:"not null" json:"type"`

	Balance decimal.Decimal `gorm:"-" json:"balance"` // Populated at query time from ledger_entries
}
