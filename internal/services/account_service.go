package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/ledger"
	"finanzas/internal/logger"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// ReconcileConcept tags the synthetic entry written by a balance reconciliation.
const ReconcileConcept = "Reajuste de cuenta"

// accountService handles account-related business logic.
type accountService struct {
	db     *gorm.DB
	ledger *ledger.Store
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db, ledger: ledger.NewStore(db)}
}

func validateAccountFields(description string, accountType models.AccountType) (string, models.AccountType, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", "", apperrors.WithMessage(apperrors.ErrInvalidInput, "account description is required")
	}
	if accountType == "" {
		return "", "", apperrors.WithMessage(apperrors.ErrInvalidInput, "account type is required")
	}
	t, ok := models.ParseAccountType(string(accountType))
	if !ok {
		return "", "", apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown account type '"+string(accountType)+"'")
	}
	return description, t, nil
}

// CreateAccount creates a new account for a user. A new account has no
// entries, so its balance starts at zero.
func (s *accountService) CreateAccount(ctx context.Context, userID, description string, accountType models.AccountType) (*models.Account, error) {
	description, accountType, err := validateAccountFields(description, accountType)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:      userID,
		Description: description,
		Type:        accountType,
		Balance:     decimal.Zero,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user, each
// with its derived balance. Balances come from one grouped query per page.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals, err := s.ledger.AccountTotalsByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range accounts {
		accounts[i].Balance = totals[accounts[i].ID].Net()
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error) {
	account, err := findAccount(ctx, s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.AccountTotals(ctx, account.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = totals.Net()
	return account, nil
}

// UpdateAccount replaces an account's description and type.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID, description string, accountType models.AccountType) (*models.Account, error) {
	description, accountType, err := validateAccountFields(description, accountType)
	if err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"description": description,
		"type":        accountType,
	}
	if err := s.db.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account.Description = description
	account.Type = accountType
	return account, nil
}

// DeleteAccount hard-deletes an account that has no ledger entries.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(ctx, tx, userID, accountID)
		if err != nil {
			return err
		}

		inUse, err := s.ledger.WithTx(tx).HasAccountEntries(ctx, account.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if inUse {
			return apperrors.WithMessage(apperrors.ErrAccountInUse,
				"Account "+account.ID+" cannot be deleted because it has associated movements")
		}

		if err := tx.Delete(&models.Account{}, "id = ?", account.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ReconcileBalance forces an account's derived balance to target by writing
// one correcting entry. Nothing is written when the balance already matches.
func (s *accountService) ReconcileBalance(ctx context.Context, userID, accountID string, target decimal.Decimal) (*ReconcileResult, error) {
	if err := checkCents("balance", target); err != nil {
		return nil, err
	}
	result := &ReconcileResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(ctx, tx, userID, accountID)
		if err != nil {
			return err
		}

		store := s.ledger.WithTx(tx)
		totals, err := store.AccountTotals(ctx, account.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		current := totals.Net()
		diff := target.Sub(current)
		result.Account = account
		if diff.IsZero() {
			account.Balance = current
			return nil
		}

		entry := &models.LedgerEntry{
			AccountID: account.ID,
			Kind:      models.MovementIncome,
			Amount:    diff,
			Concept:   ReconcileConcept,
		}
		if diff.IsNegative() {
			entry.Kind = models.MovementExpense
			entry.Amount = diff.Abs()
		}
		if err := store.Append(ctx, entry); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		account.Balance = target
		result.Entry = entry
		logger.Get().Infow("account reconciled",
			"account_id", account.ID,
			"previous_balance", current.String(),
			"target_balance", target.String(),
			"kind", entry.Kind,
			"at", entry.CreatedAt.Format(time.RFC3339),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
