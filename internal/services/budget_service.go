package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/logger"
	"finanzas/internal/models"
)

// budgetService handles the per-user budget configuration and its breakdowns.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// loadOrCreateConfig returns the user's config, creating the default split
// with zero income on first access.
func loadOrCreateConfig(ctx context.Context, db *gorm.DB, userID string) (*models.BudgetConfig, error) {
	cfg, err := findBudgetConfig(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg = models.NewDefaultBudgetConfig(userID, decimal.Zero)
	if err := db.WithContext(ctx).Create(cfg).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cfg, nil
}

// GetConfig returns the user's budget configuration.
func (s *budgetService) GetConfig(ctx context.Context, userID string) (*models.BudgetConfig, error) {
	return loadOrCreateConfig(ctx, s.db, userID)
}

// SaveConfig upserts the user's budget configuration.
func (s *budgetService) SaveConfig(ctx context.Context, userID string, in BudgetConfigInput) (*models.BudgetConfig, error) {
	if in.ExpensesPct < 0 || in.SavingsPct < 0 || in.InvestmentPct < 0 || in.FreePct < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPercentages, "Budget percentages cannot be negative")
	}
	if in.ExpensesPct+in.SavingsPct+in.InvestmentPct+in.FreePct != 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPercentages,
			"Budget percentages (expenses, savings, investment, free) must sum to exactly 100")
	}
	if in.WeeklyIncome.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "weekly income cannot be negative")
	}
	if err := checkCents("weekly income", in.WeeklyIncome); err != nil {
		return nil, err
	}

	var cfg *models.BudgetConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, committed, err := weeklyCommitments(ctx, tx, userID)
		if err != nil {
			return err
		}
		if in.WeeklyIncome.LessThan(committed) {
			return apperrors.WithMessage(apperrors.ErrCommitmentExceeded,
				fmt.Sprintf("Weekly income cannot be less than the weekly contributions of your reserves (%s)",
					committed.StringFixed(2)))
		}

		cfg, err = findBudgetConfig(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cfg == nil {
			cfg = &models.BudgetConfig{UserID: userID}
		}
		cfg.WeeklyIncome = in.WeeklyIncome
		cfg.ExpensesPct = in.ExpensesPct
		cfg.SavingsPct = in.SavingsPct
		cfg.InvestmentPct = in.InvestmentPct
		cfg.FreePct = in.FreePct

		if err := tx.Save(cfg).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("budget config saved",
		"user_id", userID,
		"weekly_income", cfg.WeeklyIncome.String(),
	)
	return cfg, nil
}

// plannedLine is the share of income a configured percentage allots.
func plannedLine(income decimal.Decimal, pct int) PlannedLine {
	return PlannedLine{
		Value:      income.Mul(decimal.NewFromInt(int64(pct))).DivRound(hundred, 2),
		Percentage: pct,
	}
}

func newBudgetLine(value, income decimal.Decimal) *BudgetLine {
	return &BudgetLine{Value: value, Percentage: percentageOf(value, income)}
}

func scaleLine(l *BudgetLine, factor decimal.Decimal) *BudgetLine {
	return &BudgetLine{Value: l.Value.Mul(factor), Percentage: l.Percentage}
}

func emptyBreakdown() BudgetBreakdown {
	return BudgetBreakdown{
		ExpenseReserves:    []BudgetReserveLine{},
		SavingsReserves:    []BudgetReserveLine{},
		InvestmentReserves: []BudgetReserveLine{},
	}
}

// GetSummary expresses the configured split as amounts and compares it with
// what the user's reserves actually commit each week and month.
func (s *budgetService) GetSummary(ctx context.Context, userID string) (*BudgetSummary, error) {
	cfg, err := loadOrCreateConfig(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	income := cfg.WeeklyIncome
	summary := &BudgetSummary{
		Config: BudgetPlan{
			WeeklyIncome:  income,
			MonthlyIncome: income.Mul(weeksPerMonth),
			Expenses:      plannedLine(income, cfg.ExpensesPct),
			Savings:       plannedLine(income, cfg.SavingsPct),
			Investment:    plannedLine(income, cfg.InvestmentPct),
			Free:          plannedLine(income, cfg.FreePct),
		},
		Weekly:  emptyBreakdown(),
		Monthly: emptyBreakdown(),
	}
	if !income.IsPositive() {
		return summary, nil
	}

	byKind, _, err := weeklyCommitments(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	expenses := byKind[models.ReserveKindFixedExpense].Add(byKind[models.ReserveKindFixedExpenseMonthly])
	savings := byKind[models.ReserveKindSavings]
	investment := byKind[models.ReserveKindInvestment]
	available := income.Sub(expenses).Sub(savings).Sub(investment)

	var reserves []models.Reserve
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&reserves).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	weekly := &summary.Weekly
	weekly.Expenses = newBudgetLine(expenses, income)
	weekly.Savings = newBudgetLine(savings, income)
	weekly.Investment = newBudgetLine(investment, income)
	weekly.Available = newBudgetLine(available, income)
	for _, r := range reserves {
		line := BudgetReserveLine{ID: r.ID, Concept: r.Concept, WeeklyAmount: r.WeeklyAmount}
		switch r.Kind {
		case models.ReserveKindFixedExpense, models.ReserveKindFixedExpenseMonthly:
			weekly.ExpenseReserves = append(weekly.ExpenseReserves, line)
		case models.ReserveKindSavings:
			weekly.SavingsReserves = append(weekly.SavingsReserves, line)
		case models.ReserveKindInvestment:
			weekly.InvestmentReserves = append(weekly.InvestmentReserves, line)
		}
	}

	summary.Monthly = BudgetBreakdown{
		Expenses:           scaleLine(weekly.Expenses, weeksPerMonth),
		Savings:            scaleLine(weekly.Savings, weeksPerMonth),
		Investment:         scaleLine(weekly.Investment, weeksPerMonth),
		Available:          scaleLine(weekly.Available, weeksPerMonth),
		ExpenseReserves:    weekly.ExpenseReserves,
		SavingsReserves:    weekly.SavingsReserves,
		InvestmentReserves: weekly.InvestmentReserves,
	}
	return summary, nil
}
