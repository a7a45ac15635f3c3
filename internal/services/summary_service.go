package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/ledger"
	"finanzas/internal/models"
)

// summaryService aggregates a user's net-worth position.
type summaryService struct {
	db     *gorm.DB
	ledger *ledger.Store
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB) SummaryServicer {
	return &summaryService{db: db, ledger: ledger.NewStore(db)}
}

// GetFinancialSummary derives every figure from grouped aggregates. Only
// savings and investment accounts count towards total money.
func (s *summaryService) GetFinancialSummary(ctx context.Context, userID string) (*FinancialSummary, error) {
	byType, err := s.ledger.TotalsByAccountType(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byKind, err := s.ledger.ReserveTotalsByKind(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var projections struct{ Total decimal.Decimal }
	err = s.db.WithContext(ctx).Model(&models.Projection{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&projections).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balances, err := s.ledger.AccountTotalsByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range accounts {
		accounts[i].Balance = balances[accounts[i].ID].Net()
	}

	totalMoney := byType[models.AccountTypeSavings].Net().Add(byType[models.AccountTypeInvestment].Net())
	creditBalance := byType[models.AccountTypeCredit].Net()
	netReserves := decimal.Zero
	for _, t := range byKind {
		netReserves = netReserves.Add(t.Net())
	}
	available := totalMoney.Sub(creditBalance).Sub(netReserves)
	totalProjections := projections.Total.Round(2)

	return &FinancialSummary{
		TotalMoney:                    totalMoney,
		AvailableMoney:                available,
		ReservedMoney:                 netReserves.Add(creditBalance),
		NetReserves:                   netReserves,
		CreditBalance:                 creditBalance,
		TotalProjections:              totalProjections,
		TotalMoneyWithProjections:     totalMoney.Add(totalProjections),
		AvailableMoneyWithProjections: available.Add(totalProjections),
		Accounts:                      accounts,
	}, nil
}
