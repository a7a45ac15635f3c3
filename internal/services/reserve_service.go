package services

import (
	"context"
	"errors"
	"fmt"
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

// WithdrawalConceptPrefix prefixes the general-ledger mirror of a reserve withdrawal.
const WithdrawalConceptPrefix = "Reserve withdrawal: "

// reserveService handles reserve accounting and the weekly commitment checks.
type reserveService struct {
	db     *gorm.DB
	ledger *ledger.Store
	now    func() time.Time
}

// NewReserveService creates a new ReserveServicer.
func NewReserveService(db *gorm.DB) ReserveServicer {
	return &reserveService{db: db, ledger: ledger.NewStore(db), now: time.Now}
}

func (s *reserveService) today() time.Time {
	return dateOnly(s.now())
}

func validateReserveInput(in ReserveInput) (ReserveInput, error) {
	in.Concept = strings.TrimSpace(in.Concept)
	if in.Concept == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "reserve concept is required")
	}
	kind, ok := models.ParseReserveKind(string(in.Kind))
	if !ok {
		return in, apperrors.ErrInvalidReserveKind
	}
	in.Kind = kind
	if in.GoalAmount.IsNegative() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal amount cannot be negative")
	}
	if in.WeeklyAmount.IsNegative() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "weekly amount cannot be negative")
	}
	if err := checkCents("goal amount", in.GoalAmount); err != nil {
		return in, err
	}
	if err := checkCents("weekly amount", in.WeeklyAmount); err != nil {
		return in, err
	}
	return in, nil
}

// checkCommitment verifies that replacing previous with requested keeps the
// user's weekly reserve commitments within the configured weekly income.
func (s *reserveService) checkCommitment(ctx context.Context, tx *gorm.DB, userID string, previous, requested decimal.Decimal) error {
	cfg, err := findBudgetConfig(ctx, tx, userID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return apperrors.ErrBudgetNotConfigured
	}
	if !cfg.WeeklyIncome.IsPositive() {
		return apperrors.ErrNoWeeklyIncome
	}

	_, committed, err := weeklyCommitments(ctx, tx, userID)
	if err != nil {
		return err
	}
	newTotal := committed.Sub(previous).Add(requested)
	if newTotal.GreaterThan(cfg.WeeklyIncome) {
		return apperrors.WithMessage(apperrors.ErrCommitmentExceeded,
			fmt.Sprintf("Weekly reserve commitments (%s) cannot exceed weekly income (%s)",
				newTotal.StringFixed(2), cfg.WeeklyIncome.StringFixed(2)))
	}
	return nil
}

// applyInput copies validated fields onto a reserve. Monthly fixed expenses
// always target the last day of the current month.
func (s *reserveService) applyInput(r *models.Reserve, in ReserveInput) {
	r.Concept = in.Concept
	r.Kind = in.Kind
	r.GoalAmount = in.GoalAmount
	r.WeeklyAmount = in.WeeklyAmount

	switch {
	case in.Kind == models.ReserveKindFixedExpenseMonthly:
		d := endOfMonth(s.today())
		r.TargetDate = &d
	case in.TargetDate != nil:
		d := dateOnly(*in.TargetDate)
		r.TargetDate = &d
	default:
		r.TargetDate = nil
	}
}

// CreateReserve creates a reserve once its weekly amount fits the budget.
func (s *reserveService) CreateReserve(ctx context.Context, userID string, in ReserveInput) (*models.Reserve, error) {
	in, err := validateReserveInput(in)
	if err != nil {
		return nil, err
	}

	reserve := &models.Reserve{UserID: userID}
	s.applyInput(reserve, in)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCommitment(ctx, tx, userID, decimal.Zero, in.WeeklyAmount); err != nil {
			return err
		}
		if err := tx.Create(reserve).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reserve.Balance = decimal.Zero
	return reserve, nil
}

// UpdateReserve replaces a reserve's fields, re-checking the weekly budget
// with the old weekly amount swapped for the new one.
func (s *reserveService) UpdateReserve(ctx context.Context, userID, reserveID string, in ReserveInput) (*models.Reserve, error) {
	in, err := validateReserveInput(in)
	if err != nil {
		return nil, err
	}

	var reserve *models.Reserve
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reserve, err = findReserve(ctx, tx, userID, reserveID, true)
		if err != nil {
			return err
		}
		if err := s.checkCommitment(ctx, tx, userID, reserve.WeeklyAmount, in.WeeklyAmount); err != nil {
			return err
		}

		s.applyInput(reserve, in)
		updates := map[string]interface{}{
			"concept":       reserve.Concept,
			"kind":          reserve.Kind,
			"goal_amount":   reserve.GoalAmount,
			"weekly_amount": reserve.WeeklyAmount,
			"target_date":   reserve.TargetDate,
		}
		if err := tx.Model(reserve).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		totals, err := s.ledger.WithTx(tx).ReserveTotals(ctx, reserve.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		reserve.Balance = totals.Net()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserve, nil
}

// GetReserveByID retrieves a reserve with its net balance.
func (s *reserveService) GetReserveByID(ctx context.Context, userID, reserveID string) (*models.Reserve, error) {
	reserve, err := findReserve(ctx, s.db, userID, reserveID, false)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.ReserveTotals(ctx, reserve.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	reserve.Balance = totals.Net()
	return reserve, nil
}

func (s *reserveService) listReserves(ctx context.Context, userID string, kind *models.ReserveKind) ([]models.Reserve, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != nil {
		q = q.Where("kind = ?", *kind)
	}

	var reserves []models.Reserve
	if err := q.Order("created_at ASC").Find(&reserves).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reserves, nil
}

// GetUserReserves lists a user's reserves, optionally filtered by kind, each
// with its net balance.
func (s *reserveService) GetUserReserves(ctx context.Context, userID, kindFilter string) ([]models.Reserve, error) {
	kind, err := parseReserveFilter(kindFilter)
	if err != nil {
		return nil, err
	}

	reserves, err := s.listReserves(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.ReserveTotalsByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range reserves {
		reserves[i].Balance = totals[reserves[i].ID].Net()
	}
	return reserves, nil
}

// DeleteReserve hard-deletes a reserve with an empty ledger.
func (s *reserveService) DeleteReserve(ctx context.Context, userID, reserveID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reserve, err := findReserve(ctx, tx, userID, reserveID, true)
		if err != nil {
			return err
		}

		inUse, err := s.ledger.WithTx(tx).HasReserveEntries(ctx, reserve.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if inUse {
			return apperrors.WithMessage(apperrors.ErrReserveInUse,
				"Reserve "+reserve.ID+" cannot be deleted because it has associated movements")
		}

		if err := tx.Delete(&models.Reserve{}, "id = ?", reserve.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Contribute appends a contribution. The source account is optional but,
// when given, must belong to the user.
func (s *reserveService) Contribute(ctx context.Context, userID, reserveID string, amount decimal.Decimal, accountID *string, concept string) (*models.ReserveEntry, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if err := checkCents("amount", amount); err != nil {
		return nil, err
	}

	reserve, err := findReserve(ctx, s.db, userID, reserveID, false)
	if err != nil {
		return nil, err
	}
	if accountID != nil {
		if _, err := findAccount(ctx, s.db, userID, *accountID); err != nil {
			return nil, err
		}
	}

	entry := &models.ReserveEntry{
		ReserveID: reserve.ID,
		AccountID: accountID,
		Kind:      models.ReserveContribution,
		Amount:    amount,
		Concept:   strings.TrimSpace(concept),
	}
	if err := s.ledger.AppendReserve(ctx, entry); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// Withdraw draws down a reserve into an account. The reserve row is locked
// for the whole transaction so concurrent withdrawals against one reserve
// serialize on the balance check. The reserve entry and its general-ledger
// mirror commit together or not at all.
func (s *reserveService) Withdraw(ctx context.Context, userID, reserveID string, amount decimal.Decimal, accountID, concept string) (*WithdrawalResult, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if err := checkCents("amount", amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a source account is required for withdrawals")
	}
	concept = strings.TrimSpace(concept)

	result := &WithdrawalResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reserve, err := findReserve(ctx, tx, userID, reserveID, true)
		if err != nil {
			return err
		}
		account, err := findAccount(ctx, tx, userID, accountID)
		if err != nil {
			return err
		}

		store := s.ledger.WithTx(tx)
		totals, err := store.ReserveTotals(ctx, reserve.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		available := totals.Net()
		if amount.GreaterThan(available) {
			return apperrors.WithMessage(apperrors.ErrInsufficientReserve,
				fmt.Sprintf("Withdrawal of %s exceeds available reserved balance %s",
					amount.StringFixed(2), available.StringFixed(2)))
		}

		result.ReserveEntry = &models.ReserveEntry{
			ReserveID: reserve.ID,
			AccountID: &account.ID,
			Kind:      models.ReserveWithdrawal,
			Amount:    amount,
			Concept:   concept,
		}
		if err := store.AppendReserve(ctx, result.ReserveEntry); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Paying from a credit account reduces what is owed.
		mirrorKind := models.MovementExpense
		if account.Type == models.AccountTypeCredit {
			mirrorKind = models.MovementIncome
		}
		result.LedgerEntry = &models.LedgerEntry{
			AccountID: account.ID,
			Kind:      mirrorKind,
			Amount:    amount,
			Concept:   WithdrawalConceptPrefix + concept,
		}
		if err := store.Append(ctx, result.LedgerEntry); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		logger.Get().Infow("reserve withdrawal",
			"reserve_id", reserve.ID,
			"account_id", account.ID,
			"amount", amount.String(),
			"mirror_kind", mirrorKind,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RegisterReserveMovement dispatches a contribution or withdrawal.
func (s *reserveService) RegisterReserveMovement(ctx context.Context, userID, reserveID string, kind models.ReserveMovementKind, amount decimal.Decimal, accountID *string, concept string) (*models.ReserveEntry, error) {
	parsed, ok := models.ParseReserveMovementKind(string(kind))
	if !ok {
		return nil, apperrors.ErrInvalidReserveMovementKind
	}

	if parsed == models.ReserveContribution {
		return s.Contribute(ctx, userID, reserveID, amount, accountID, concept)
	}

	if accountID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a source account is required for withdrawals")
	}
	result, err := s.Withdraw(ctx, userID, reserveID, amount, *accountID, concept)
	if err != nil {
		return nil, err
	}
	return result.ReserveEntry, nil
}

// BulkContribute advances every selected reserve by weeks times its weekly
// amount. Reserves without a weekly amount are skipped.
func (s *reserveService) BulkContribute(ctx context.Context, userID string, in BulkContributionInput) ([]models.ReserveEntry, error) {
	if in.Weeks < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "weeks must be at least 1")
	}
	kind, err := parseReserveFilter(in.KindFilter)
	if err != nil {
		return nil, err
	}
	concept := strings.TrimSpace(in.Concept)

	entries := []models.ReserveEntry{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AccountID != nil {
			if _, err := findAccount(ctx, tx, userID, *in.AccountID); err != nil {
				return err
			}
		}

		q := tx.WithContext(ctx).Where("user_id = ?", userID)
		if kind != nil {
			q = q.Where("kind = ?", *kind)
		}
		var reserves []models.Reserve
		if err := q.Order("created_at ASC").Find(&reserves).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		store := s.ledger.WithTx(tx)
		weeks := decimal.NewFromInt(int64(in.Weeks))
		for _, r := range reserves {
			if !r.WeeklyAmount.IsPositive() {
				continue
			}
			entry := models.ReserveEntry{
				ReserveID: r.ID,
				AccountID: in.AccountID,
				Kind:      models.ReserveContribution,
				Amount:    r.WeeklyAmount.Mul(weeks),
				Concept:   concept + " - " + r.Concept,
			}
			if err := store.AppendReserve(ctx, &entry); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("bulk contribution",
		"user_id", userID,
		"weeks", in.Weeks,
		"reserves", len(entries),
	)
	return entries, nil
}

// GetSummary reports every reserve's totals and goal projection together
// with owner-wide totals per kind. The kind filter narrows the reserve list
// only; the totals always cover all of the user's reserves.
func (s *reserveService) GetSummary(ctx context.Context, userID, kindFilter string) (*ReserveSummary, error) {
	kind, err := parseReserveFilter(kindFilter)
	if err != nil {
		return nil, err
	}

	reserves, err := s.listReserves(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	perReserve, err := s.ledger.ReserveTotalsByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	perKind, err := s.ledger.ReserveTotalsByKind(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	weekly, weeklyTotal, err := weeklyCommitments(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	summary := &ReserveSummary{
		TotalReserved: decimal.Zero,
		WeeklyTotal:   weeklyTotal,
		MonthlyTotal:  weeklyTotal.Mul(weeksPerMonth),
		ByKind:        make(map[models.ReserveKind]KindTotals, len(models.ReserveKinds)),
		Reserves:      make([]ReserveDetail, 0, len(reserves)),
	}
	for _, k := range models.ReserveKinds {
		reserved := perKind[k].Net()
		summary.TotalReserved = summary.TotalReserved.Add(reserved)
		summary.ByKind[k] = KindTotals{
			Reserved: reserved,
			Weekly:   weekly[k],
			Monthly:  weekly[k].Mul(weeksPerMonth),
		}
	}

	today := s.today()
	for _, r := range reserves {
		t := perReserve[r.ID]
		shortfall := r.GoalAmount.Sub(t.In)
		summary.Reserves = append(summary.Reserves, ReserveDetail{
			ID:                    r.ID,
			Concept:               r.Concept,
			Kind:                  r.Kind,
			GoalAmount:            r.GoalAmount,
			WeeklyAmount:          r.WeeklyAmount,
			TargetDate:            r.TargetDate,
			Contributed:           t.In,
			Withdrawn:             t.Out,
			Reserved:              t.Net(),
			Shortfall:             shortfall,
			SuggestedWeekly:       suggestWeekly(shortfall, r.TargetDate, today),
			ProjectedCompletionAt: projectCompletion(shortfall, r.WeeklyAmount, today),
		})
	}
	return summary, nil
}

// GetReserveMovements lists one month of a reserve's movements, newest first.
func (s *reserveService) GetReserveMovements(ctx context.Context, userID, reserveID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.ReserveEntry], error) {
	page.Defaults()

	period, ok := ledger.ResolvePeriod(year, month, s.now())
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	reserve, err := findReserve(ctx, s.db, userID, reserveID, false)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.ledger.ReserveEntriesInPeriod(ctx, reserve.ID, period, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &result, nil
}

// DeleteReserveMovement hard-deletes a reserve-ledger entry. An entry on
// another user's reserve is forbidden rather than missing. Removing a
// contribution locks the reserve and is refused when later withdrawals
// would then exceed what remains contributed.
func (s *reserveService) DeleteReserveMovement(ctx context.Context, userID, movementID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.ReserveEntry
		if err := tx.Preload("Reserve").First(&entry, "id = ?", movementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReserveMovementNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if entry.Reserve == nil || entry.Reserve.UserID != userID {
			return apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to delete this movement")
		}

		if entry.Kind == models.ReserveContribution {
			if _, err := findReserve(ctx, tx, userID, entry.ReserveID, true); err != nil {
				return err
			}
			totals, err := s.ledger.WithTx(tx).ReserveTotals(ctx, entry.ReserveID)
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if remaining := totals.Net().Sub(entry.Amount); remaining.IsNegative() {
				return apperrors.WithMessage(apperrors.ErrInsufficientReserve,
					fmt.Sprintf("Deleting this contribution would leave the reserve at %s", remaining.StringFixed(2)))
			}
		}

		if err := tx.Delete(&models.ReserveEntry{}, "id = ?", entry.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
