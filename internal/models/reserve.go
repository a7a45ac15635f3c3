package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReserveKind represents the purpose of a reserve bucket.
type ReserveKind string

const (
	ReserveKindSavings             ReserveKind = "savings"
	ReserveKindFixedExpense        ReserveKind = "fixed_expense"
	ReserveKindFixedExpenseMonthly ReserveKind = "fixed_expense_monthly"
	ReserveKindInvestment          ReserveKind = "investment"
)

// ReserveKinds lists every supported reserve kind.
var ReserveKinds = []ReserveKind{
	ReserveKindSavings,
	ReserveKindFixedExpense,
	ReserveKindFixedExpenseMonthly,
	ReserveKindInvestment,
}

// ParseReserveKind parses a reserve kind token case-insensitively.
func ParseReserveKind(s string) (ReserveKind, bool) {
	k := ReserveKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ReserveKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Reserve is a savings goal or fixed-expense provision funded by weekly contributions.
type Reserve struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Concept      string          `gorm:"not null" json:"concept"`
	GoalAmount   decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"goal_amount"`
	Kind         ReserveKind     `gorm:"not null" json:"kind"`
	WeeklyAmount decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"weekly_amount"`
	TargetDate   *time.Time      `gorm:"type:date" json:"target_date,omitempty"`

	Balance decimal.Decimal `gorm:"-" json:"balance"` // Net reserved, populated at query time
}
