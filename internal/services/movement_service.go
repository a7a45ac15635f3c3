package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/ledger"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// movementService records and removes general-ledger movements.
type movementService struct {
	db     *gorm.DB
	ledger *ledger.Store
	now    func() time.Time
}

// NewMovementService creates a new MovementServicer.
func NewMovementService(db *gorm.DB) MovementServicer {
	return &movementService{db: db, ledger: ledger.NewStore(db), now: time.Now}
}

// RegisterMovement appends an income or expense entry to an owned account.
func (s *movementService) RegisterMovement(ctx context.Context, userID, accountID string, kind models.MovementKind, amount decimal.Decimal, concept string) (*models.LedgerEntry, error) {
	parsed, ok := models.ParseMovementKind(string(kind))
	if !ok {
		return nil, apperrors.ErrInvalidMovementKind
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if err := checkCents("amount", amount); err != nil {
		return nil, err
	}

	account, err := findAccount(ctx, s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		AccountID: account.ID,
		Kind:      parsed,
		Amount:    amount,
		Concept:   strings.TrimSpace(concept),
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// DeleteMovement hard-deletes a general-ledger entry. The entry is looked up
// unscoped so that an existing entry on a foreign account is reported as
// forbidden rather than missing.
func (s *movementService) DeleteMovement(ctx context.Context, userID, movementID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.LedgerEntry
		if err := tx.Preload("Account").First(&entry, "id = ?", movementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrMovementNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if entry.Account == nil || entry.Account.UserID != userID {
			return apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to delete this movement")
		}

		if err := tx.Delete(&models.LedgerEntry{}, "id = ?", entry.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetAccountMovements lists one month of an account's movements, newest first.
// Zero year or month default to the current month.
func (s *movementService) GetAccountMovements(ctx context.Context, userID, accountID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.LedgerEntry], error) {
	page.Defaults()

	period, ok := ledger.ResolvePeriod(year, month, s.now())
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	account, err := findAccount(ctx, s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.ledger.AccountEntriesInPeriod(ctx, account.ID, period, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &result, nil
}
