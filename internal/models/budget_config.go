package models

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidPercentages is returned by the save hook when the split is not a valid partition of 100.
var ErrInvalidPercentages = errors.New("budget percentages must be non-negative and sum to 100")

// Default budget split applied when a user has not configured one.
const (
	DefaultExpensesPct   = 60
	DefaultSavingsPct    = 20
	DefaultInvestmentPct = 10
	DefaultFreePct       = 10
)

// BudgetConfig is the per-user percentage split of weekly income.
type BudgetConfig struct {
	Base
	UserID        string          `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	WeeklyIncome  decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"weekly_income"`
	ExpensesPct   int             `gorm:"not null" json:"expenses_pct"`
	SavingsPct    int             `gorm:"not null" json:"savings_pct"`
	InvestmentPct int             `gorm:"not null" json:"investment_pct"`
	FreePct       int             `gorm:"not null" json:"free_pct"`
}

// NewDefaultBudgetConfig returns the 60/20/10/10 split for a user.
func NewDefaultBudgetConfig(userID string, weeklyIncome decimal.Decimal) *BudgetConfig {
	return &BudgetConfig{
		UserID:        userID,
		WeeklyIncome:  weeklyIncome,
		ExpensesPct:   DefaultExpensesPct,
		SavingsPct:    DefaultSavingsPct,
		InvestmentPct: DefaultInvestmentPct,
		FreePct:       DefaultFreePct,
	}
}

// PercentagesValid reports whether no percentage is negative and all four sum to 100.
func (c *BudgetConfig) PercentagesValid() bool {
	if c.ExpensesPct < 0 || c.SavingsPct < 0 || c.InvestmentPct < 0 || c.FreePct < 0 {
		return false
	}
	return c.ExpensesPct+c.SavingsPct+c.InvestmentPct+c.FreePct == 100
}

// BeforeSave rejects any write that would break the percentage invariant.
func (c *BudgetConfig) BeforeSave(tx *gorm.DB) error {
	if !c.PercentagesValid() {
		return ErrInvalidPercentages
	}
	return nil
}
