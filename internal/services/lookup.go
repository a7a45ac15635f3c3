package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
)

// weeksPerMonth converts weekly figures to monthly ones.
var weeksPerMonth = decimal.NewFromInt(4)

var hundred = decimal.NewFromInt(100)

// findAccount loads an account scoped to its owner.
func findAccount(ctx context.Context, db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// findReserve loads a reserve scoped to its owner. With lock set the row is
// held FOR UPDATE until the surrounding transaction ends.
func findReserve(ctx context.Context, db *gorm.DB, userID, reserveID string, lock bool) (*models.Reserve, error) {
	q := db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var reserve models.Reserve
	if err := q.Where("id = ? AND user_id = ?", reserveID, userID).First(&reserve).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReserveNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &reserve, nil
}

// findBudgetConfig returns the user's budget config, or nil when none exists.
func findBudgetConfig(ctx context.Context, db *gorm.DB, userID string) (*models.BudgetConfig, error) {
	var cfg models.BudgetConfig
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cfg, nil
}

// weeklyCommitments sums the weekly contribution of a user's reserves per kind.
func weeklyCommitments(ctx context.Context, db *gorm.DB, userID string) (map[models.ReserveKind]decimal.Decimal, decimal.Decimal, error) {
	var rows []struct {
		Kind  string
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&models.Reserve{}).
		Select("kind, SUM(weekly_amount) AS total").
		Where("user_id = ?", userID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byKind := make(map[models.ReserveKind]decimal.Decimal, len(rows))
	total := decimal.Zero
	for _, r := range rows {
		amount := r.Total.Round(2)
		byKind[models.ReserveKind(r.Kind)] = amount
		total = total.Add(amount)
	}
	return byKind, total, nil
}

// parseReserveFilter turns a kind filter token into a kind. Empty and ALL
// select every kind and yield nil.
func parseReserveFilter(filter string) (*models.ReserveKind, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "all") {
		return nil, nil
	}
	kind, ok := models.ParseReserveKind(filter)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidReserveKind, "Unknown reserve kind '"+filter+"'")
	}
	return &kind, nil
}

// checkCents rejects amounts finer than a cent. Ledger columns hold two
// decimals, so anything finer would be stored as a different value.
func checkCents(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" cannot have more than two decimal places")
	}
	return nil
}

// percentageOf returns value*100/total to two decimals, or zero when total is zero.
func percentageOf(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).DivRound(total, 2)
}
