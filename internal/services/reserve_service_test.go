package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finanzas/internal/ledger"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/testutil"
)

func newTestReserveService(db *gorm.DB, now time.Time) *reserveService {
	return &reserveService{db: db, ledger: ledger.NewStore(db), now: func() time.Time { return now }}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateReserve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 11, 9, 30, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudgetConfig(t, db, user.ID, "1000")

		target := time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)
		reserve, err := svc.CreateReserve(ctx, user.ID, ReserveInput{
			Concept:      "Vacation",
			Kind:         "SAVINGS",
			GoalAmount:   dec("1000"),
			WeeklyAmount: dec("200"),
			TargetDate:   &target,
		})
		testutil.AssertNoError(t, err)

		if reserve.Kind != models.ReserveKindSavings {
			t.Errorf("expected savings kind, got %s", reserve.Kind)
		}
		if reserve.TargetDate == nil || !reserve.TargetDate.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected target date truncated to the day, got %v", reserve.TargetDate)
		}
	})

	t.Run("monthly_fixed_expense_targets_end_of_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudgetConfig(t, db, user.ID, "1000")

		requested := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		reserve, err := svc.CreateReserve(ctx, user.ID, ReserveInput{
			Concept:      "Rent",
			Kind:         models.ReserveKindFixedExpenseMonthly,
			WeeklyAmount: dec("100"),
			TargetDate:   &requested,
		})
		testutil.AssertNoError(t, err)

		want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
		if reserve.TargetDate == nil || !reserve.TargetDate.Equal(want) {
			t.Errorf("expected %s, got %v", want, reserve.TargetDate)
		}
	})

	t.Run("no_budget_config", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "x", Kind: models.ReserveKindSavings})
		testutil.AssertAppError(t, err, "BUDGET_NOT_CONFIGURED")
		testutil.AssertKind(t, err, "business_rule")
	})

	t.Run("zero_weekly_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudgetConfig(t, db, user.ID, "0")

		_, err := svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "x", Kind: models.ReserveKindSavings})
		testutil.AssertAppError(t, err, "NO_WEEKLY_INCOME")
	})

	t.Run("commitment_exceeds_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudgetConfig(t, db, user.ID, "1000")
		testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "700", "0")

		_, err := svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "Car", Kind: models.ReserveKindInvestment, WeeklyAmount: dec("300.01")})
		testutil.AssertAppError(t, err, "COMMITMENT_EXCEEDED")

		_, err = svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "Car", Kind: models.ReserveKindInvestment, WeeklyAmount: dec("300")})
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestReserveService(db, now)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: " ", Kind: models.ReserveKindSavings})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "x", Kind: "loan"})
		testutil.AssertAppError(t, err, "INVALID_RESERVE_KIND")

		_, err = svc.CreateReserve(ctx, user.ID, ReserveInput{Concept: "x", Kind: models.ReserveKindSavings, WeeklyAmount: dec("-1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateReserve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestReserveService(db, now)

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestBudgetConfig(t, db, user.ID, "500")
	reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "400", "1000")
	testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindInvestment, "100", "0")

	t.Run("swaps_old_weekly_amount", func(t *testing.T) {
		// 500 committed: replacing 400 with 400 stays within 500.
		updated, err := svc.UpdateReserve(ctx, user.ID, reserve.ID, ReserveInput{
			Concept:      "Emergency fund",
			Kind:         models.ReserveKindSavings,
			GoalAmount:   dec("2000"),
			WeeklyAmount: dec("400"),
		})
		testutil.AssertNoError(t, err)
		if updated.Concept != "Emergency fund" {
			t.Errorf("expected concept to change, got %q", updated.Concept)
		}
		testutil.AssertDecimal(t, updated.GoalAmount, "2000")
	})

	t.Run("exceeds_income", func(t *testing.T) {
		_, err := svc.UpdateReserve(ctx, user.ID, reserve.ID, ReserveInput{
			Concept:      "Emergency fund",
			Kind:         models.ReserveKindSavings,
			WeeklyAmount: dec("401"),
		})
		testutil.AssertAppError(t, err, "COMMITMENT_EXCEEDED")
	})

	t.Run("to_monthly_fixed_expense", func(t *testing.T) {
		updated, err := svc.UpdateReserve(ctx, user.ID, reserve.ID, ReserveInput{
			Concept:      "Utilities",
			Kind:         "fixed_expense_monthly",
			WeeklyAmount: dec("50"),
		})
		testutil.AssertNoError(t, err)

		got, err := svc.GetReserveByID(ctx, user.ID, updated.ID)
		testutil.AssertNoError(t, err)
		want := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
		if got.TargetDate == nil || !got.TargetDate.Equal(want) {
			t.Errorf("expected persisted target date %s, got %v", want, got.TargetDate)
		}
	})

	t.Run("other_owner", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.UpdateReserve(ctx, other.ID, reserve.ID, ReserveInput{Concept: "x", Kind: models.ReserveKindSavings})
		testutil.AssertAppError(t, err, "RESERVE_NOT_FOUND")
	})
}

func TestGetUserReserves(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)

	user := testutil.CreateTestUser(t, db)
	savings := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "10", "100")
	testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindFixedExpense, "10", "100")
	testutil.CreateTestReserveEntry(t, db, savings.ID, nil, models.ReserveContribution, "60")
	testutil.CreateTestReserveEntry(t, db, savings.ID, nil, models.ReserveWithdrawal, "15")

	t.Run("all", func(t *testing.T) {
		reserves, err := svc.GetUserReserves(ctx, user.ID, "ALL")
		testutil.AssertNoError(t, err)
		if len(reserves) != 2 {
			t.Fatalf("expected 2 reserves, got %d", len(reserves))
		}
		testutil.AssertDecimal(t, reserves[0].Balance, "45")
	})

	t.Run("filtered", func(t *testing.T) {
		reserves, err := svc.GetUserReserves(ctx, user.ID, "Fixed_Expense")
		testutil.AssertNoError(t, err)
		if len(reserves) != 1 || reserves[0].Kind != models.ReserveKindFixedExpense {
			t.Errorf("expected only the fixed expense reserve, got %+v", reserves)
		}
	})

	t.Run("unknown_filter", func(t *testing.T) {
		_, err := svc.GetUserReserves(ctx, user.ID, "bonds")
		testutil.AssertAppError(t, err, "INVALID_RESERVE_KIND")
	})
}

func TestDeleteReserve(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("with_entries", func(t *testing.T) {
		reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "0", "0")
		testutil.CreateTestReserveEntry(t, db, reserve.ID, nil, models.ReserveContribution, "1")

		err := svc.DeleteReserve(ctx, user.ID, reserve.ID)
		testutil.AssertAppError(t, err, "RESERVE_IN_USE")
	})

	t.Run("empty", func(t *testing.T) {
		reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "0", "0")
		testutil.AssertNoError(t, svc.DeleteReserve(ctx, user.ID, reserve.ID))

		_, err := svc.GetReserveByID(ctx, user.ID, reserve.ID)
		testutil.AssertAppError(t, err, "RESERVE_NOT_FOUND")
	})
}

func TestContribute(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)

	user := testutil.CreateTestUser(t, db)
	reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "0", "0")
	account := testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeSavings)

	t.Run("without_account", func(t *testing.T) {
		entry, err := svc.Contribute(ctx, user.ID, reserve.ID, dec("25"), nil, "cash")
		testutil.AssertNoError(t, err)
		if entry.Kind != models.ReserveContribution || entry.AccountID != nil {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("with_account_leaves_general_ledger_untouched", func(t *testing.T) {
		_, err := svc.Contribute(ctx, user.ID, reserve.ID, dec("25"), &account.ID, "")
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no general-ledger entries, got %d", count)
		}
	})

	t.Run("foreign_account", func(t *testing.T) {
		foreign := testutil.CreateTestAccount(t, db, testutil.CreateTestUser(t, db).ID, models.AccountTypeSavings)
		_, err := svc.Contribute(ctx, user.ID, reserve.ID, dec("1"), &foreign.ID, "")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("non_positive", func(t *testing.T) {
		_, err := svc.Contribute(ctx, user.ID, reserve.ID, dec("-5"), nil, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, accountType models.AccountType) (*gorm.DB, ReserveServicer, *models.User, *models.Reserve, *models.Account) {
		db := testutil.SetupTestDB(t)
		svc := NewReserveService(db)
		user := testutil.CreateTestUser(t, db)
		reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindFixedExpense, "10", "0")
		account := testutil.CreateTestAccount(t, db, user.ID, accountType)
		testutil.CreateTestReserveEntry(t, db, reserve.ID, nil, models.ReserveContribution, "100")
		testutil.CreateTestReserveEntry(t, db, reserve.ID, nil, models.ReserveWithdrawal, "30")
		return db, svc, user, reserve, account
	}

	t.Run("exceeds_available", func(t *testing.T) {
		db, svc, user, reserve, account := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)

		_, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("71"), account.ID, "rent")
		testutil.AssertAppError(t, err, "INSUFFICIENT_RESERVE")
		testutil.AssertKind(t, err, "business_rule")

		var count int64
		db.Model(&models.LedgerEntry{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no writes after a failed withdrawal, got %d ledger entries", count)
		}
	})

	t.Run("exact_available_mirrors_expense", func(t *testing.T) {
		db, svc, user, reserve, account := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)

		result, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("70"), account.ID, "rent")
		testutil.AssertNoError(t, err)

		if result.LedgerEntry.Kind != models.MovementExpense {
			t.Errorf("expected expense mirror, got %s", result.LedgerEntry.Kind)
		}
		testutil.AssertDecimal(t, result.LedgerEntry.Amount, "70")
		if result.LedgerEntry.Concept != WithdrawalConceptPrefix+"rent" {
			t.Errorf("unexpected mirror concept %q", result.LedgerEntry.Concept)
		}
		if result.ReserveEntry.AccountID == nil || *result.ReserveEntry.AccountID != account.ID {
			t.Error("expected the reserve entry to reference the source account")
		}

		got, err := svc.GetReserveByID(ctx, user.ID, reserve.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, got.Balance, "0")

		totals, err := ledger.NewStore(db).AccountTotals(ctx, account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, totals.Net(), "-70")
	})

	t.Run("credit_account_mirrors_income", func(t *testing.T) {
		db, svc, user, reserve, account := setup(t, models.AccountTypeCredit)
		defer testutil.TeardownTestDB(t, db)

		result, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("20"), account.ID, "card payment")
		testutil.AssertNoError(t, err)
		if result.LedgerEntry.Kind != models.MovementIncome {
			t.Errorf("expected income mirror for credit account, got %s", result.LedgerEntry.Kind)
		}
		testutil.AssertDecimal(t, result.LedgerEntry.Amount, "20")
	})

	t.Run("requires_account", func(t *testing.T) {
		db, svc, user, reserve, _ := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)

		_, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("1"), "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_account_writes_nothing", func(t *testing.T) {
		db, svc, user, reserve, _ := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)
		foreign := testutil.CreateTestAccount(t, db, testutil.CreateTestUser(t, db).ID, models.AccountTypeChecking)

		_, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("1"), foreign.ID, "")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		var count int64
		db.Model(&models.ReserveEntry{}).Where("reserve_id = ?", reserve.ID).Count(&count)
		if count != 2 {
			t.Errorf("expected reserve ledger unchanged, got %d entries", count)
		}
	})

	t.Run("sub_cent_amount", func(t *testing.T) {
		db, svc, user, reserve, account := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)

		_, err := svc.Withdraw(ctx, user.ID, reserve.ID, dec("10.005"), account.ID, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("mirror_failure_rolls_back_reserve_entry", func(t *testing.T) {
		db, svc, user, reserve, account := setup(t, models.AccountTypeChecking)
		defer testutil.TeardownTestDB(t, db)

		err := db.Callback().Create().Before("gorm:create").Register("test:fail_ledger_entries", func(tx *gorm.DB) {
			if tx.Statement.Table == "ledger_entries" {
				_ = tx.AddError(errors.New("disk full"))
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.Withdraw(ctx, user.ID, reserve.ID, dec("10"), account.ID, "rent")
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var withdrawals int64
		db.Model(&models.ReserveEntry{}).
			Where("reserve_id = ? AND kind = ?", reserve.ID, models.ReserveWithdrawal).
			Count(&withdrawals)
		if withdrawals != 1 {
			t.Errorf("expected only the seeded withdrawal, got %d", withdrawals)
		}

		got, err := svc.GetReserveByID(ctx, user.ID, reserve.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, got.Balance, "70")
	})
}

func TestRegisterReserveMovement(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)

	user := testutil.CreateTestUser(t, db)
	reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "0", "0")
	account := testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeSavings)

	entry, err := svc.RegisterReserveMovement(ctx, user.ID, reserve.ID, "CONTRIBUTION", dec("50"), nil, "")
	testutil.AssertNoError(t, err)
	if entry.Kind != models.ReserveContribution {
		t.Errorf("expected contribution, got %s", entry.Kind)
	}

	_, err = svc.RegisterReserveMovement(ctx, user.ID, reserve.ID, "Withdrawal", dec("10"), nil, "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	entry, err = svc.RegisterReserveMovement(ctx, user.ID, reserve.ID, "Withdrawal", dec("10"), &account.ID, "")
	testutil.AssertNoError(t, err)
	if entry.Kind != models.ReserveWithdrawal {
		t.Errorf("expected withdrawal, got %s", entry.Kind)
	}

	_, err = svc.RegisterReserveMovement(ctx, user.ID, reserve.ID, "payment", dec("10"), nil, "")
	testutil.AssertAppError(t, err, "INVALID_RESERVE_MOVEMENT_KIND")
}

func TestBulkContribute(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)

	user := testutil.CreateTestUser(t, db)
	savings := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "25.50", "0")
	fixed := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindFixedExpense, "40", "0")
	testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "0", "0")

	t.Run("all_skips_zero_weekly", func(t *testing.T) {
		entries, err := svc.BulkContribute(ctx, user.ID, BulkContributionInput{Weeks: 2, Concept: "Payday", KindFilter: "all"})
		testutil.AssertNoError(t, err)
		if len(entries) != 2 {
			t.Fatalf("expected 2 contributions, got %d", len(entries))
		}

		amounts := map[string]decimal.Decimal{}
		for _, e := range entries {
			amounts[e.ReserveID] = e.Amount
			if e.Kind != models.ReserveContribution {
				t.Errorf("expected contribution, got %s", e.Kind)
			}
		}
		testutil.AssertDecimal(t, amounts[savings.ID], "51")
		testutil.AssertDecimal(t, amounts[fixed.ID], "80")
		if entries[0].Concept != "Payday - "+savings.Concept {
			t.Errorf("unexpected concept %q", entries[0].Concept)
		}
	})

	t.Run("filtered_by_kind", func(t *testing.T) {
		entries, err := svc.BulkContribute(ctx, user.ID, BulkContributionInput{Weeks: 1, Concept: "Bills", KindFilter: "FIXED_EXPENSE"})
		testutil.AssertNoError(t, err)
		if len(entries) != 1 || entries[0].ReserveID != fixed.ID {
			t.Errorf("expected only the fixed expense reserve, got %+v", entries)
		}
	})

	t.Run("unknown_kind", func(t *testing.T) {
		_, err := svc.BulkContribute(ctx, user.ID, BulkContributionInput{Weeks: 1, KindFilter: "stocks"})
		testutil.AssertAppError(t, err, "INVALID_RESERVE_KIND")
		testutil.AssertKind(t, err, "validation")
	})

	t.Run("zero_weeks", func(t *testing.T) {
		_, err := svc.BulkContribute(ctx, user.ID, BulkContributionInput{Weeks: 0})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestReserveSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestReserveService(db, now)

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestBudgetConfig(t, db, user.ID, "1000")
	trip := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "200", "1000")
	testutil.CreateTestReserveEntry(t, db, trip.ID, nil, models.ReserveContribution, "400")

	rent := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindFixedExpense, "50", "300")
	target := today.AddDate(0, 0, 30)
	db.Model(rent).Update("target_date", target)
	testutil.CreateTestReserveEntry(t, db, rent.ID, nil, models.ReserveContribution, "100")
	testutil.CreateTestReserveEntry(t, db, rent.ID, nil, models.ReserveWithdrawal, "20")

	t.Run("goal_projection", func(t *testing.T) {
		summary, err := svc.GetSummary(ctx, user.ID, "ALL")
		testutil.AssertNoError(t, err)

		var detail *ReserveDetail
		for i := range summary.Reserves {
			if summary.Reserves[i].ID == trip.ID {
				detail = &summary.Reserves[i]
			}
		}
		if detail == nil {
			t.Fatal("expected the trip reserve in the summary")
		}
		testutil.AssertDecimal(t, detail.Contributed, "400")
		testutil.AssertDecimal(t, detail.Shortfall, "600")
		want := today.AddDate(0, 0, 21)
		if detail.ProjectedCompletionAt == nil || !detail.ProjectedCompletionAt.Equal(want) {
			t.Errorf("expected completion %s, got %v", want, detail.ProjectedCompletionAt)
		}
		if detail.SuggestedWeekly != nil {
			t.Error("expected no suggestion without a target date")
		}
	})

	t.Run("suggested_weekly", func(t *testing.T) {
		summary, err := svc.GetSummary(ctx, user.ID, "fixed_expense")
		testutil.AssertNoError(t, err)
		if len(summary.Reserves) != 1 {
			t.Fatalf("expected 1 reserve after filtering, got %d", len(summary.Reserves))
		}
		detail := summary.Reserves[0]
		testutil.AssertDecimal(t, detail.Reserved, "80")
		testutil.AssertDecimal(t, detail.Shortfall, "200")
		// 30 days is four whole weeks
		if detail.SuggestedWeekly == nil {
			t.Fatal("expected a suggested weekly contribution")
		}
		testutil.AssertDecimal(t, *detail.SuggestedWeekly, "50")
	})

	t.Run("totals_by_kind", func(t *testing.T) {
		summary, err := svc.GetSummary(ctx, user.ID, "fixed_expense")
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, summary.TotalReserved, "480")
		testutil.AssertDecimal(t, summary.WeeklyTotal, "250")
		testutil.AssertDecimal(t, summary.MonthlyTotal, "1000")
		testutil.AssertDecimal(t, summary.ByKind[models.ReserveKindSavings].Reserved, "400")
		testutil.AssertDecimal(t, summary.ByKind[models.ReserveKindFixedExpense].Monthly, "200")
		testutil.AssertDecimal(t, summary.ByKind[models.ReserveKindInvestment].Weekly, "0")
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := svc.GetSummary(ctx, user.ID, "")
		testutil.AssertNoError(t, err)
		second, err := svc.GetSummary(ctx, user.ID, "")
		testutil.AssertNoError(t, err)
		if !reflect.DeepEqual(first, second) {
			t.Error("expected repeated summaries to be identical")
		}
	})

	t.Run("unknown_filter", func(t *testing.T) {
		_, err := svc.GetSummary(ctx, user.ID, "nope")
		testutil.AssertAppError(t, err, "INVALID_RESERVE_KIND")
	})
}

func TestReserveMovements(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReserveService(db)

	owner := testutil.CreateTestUser(t, db)
	reserve := testutil.CreateTestReserve(t, db, owner.ID, models.ReserveKindSavings, "0", "0")
	entry := testutil.CreateTestReserveEntry(t, db, reserve.ID, nil, models.ReserveContribution, "10")

	t.Run("list_current_month", func(t *testing.T) {
		resp, err := svc.GetReserveMovements(ctx, owner.ID, reserve.ID, 0, 0, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if resp.TotalItems != 1 {
			t.Errorf("expected 1 movement, got %d", resp.TotalItems)
		}
	})

	t.Run("list_foreign_reserve", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.GetReserveMovements(ctx, other.ID, reserve.ID, 0, 0, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "RESERVE_NOT_FOUND")
	})

	t.Run("delete_missing", func(t *testing.T) {
		err := svc.DeleteReserveMovement(ctx, owner.ID, "01890000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "RESERVE_MOVEMENT_NOT_FOUND")
	})

	t.Run("delete_foreign_is_forbidden", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		err := svc.DeleteReserveMovement(ctx, other.ID, entry.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
		testutil.AssertKind(t, err, "forbidden")
	})

	t.Run("delete_contribution_backing_withdrawals", func(t *testing.T) {
		budget := testutil.CreateTestReserve(t, db, owner.ID, models.ReserveKindSavings, "0", "0")
		first := testutil.CreateTestReserveEntry(t, db, budget.ID, nil, models.ReserveContribution, "50")
		testutil.CreateTestReserveEntry(t, db, budget.ID, nil, models.ReserveContribution, "20")
		withdrawal := testutil.CreateTestReserveEntry(t, db, budget.ID, nil, models.ReserveWithdrawal, "40")

		err := svc.DeleteReserveMovement(ctx, owner.ID, first.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_RESERVE")

		got, err := svc.GetReserveByID(ctx, owner.ID, budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, got.Balance, "30")

		// Withdrawals can always be removed, after which the contribution can go too.
		testutil.AssertNoError(t, svc.DeleteReserveMovement(ctx, owner.ID, withdrawal.ID))
		testutil.AssertNoError(t, svc.DeleteReserveMovement(ctx, owner.ID, first.ID))

		got, err = svc.GetReserveByID(ctx, owner.ID, budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, got.Balance, "20")
	})

	t.Run("delete_owner", func(t *testing.T) {
		testutil.AssertNoError(t, svc.DeleteReserveMovement(ctx, owner.ID, entry.ID))
		got, err := svc.GetReserveByID(ctx, owner.ID, reserve.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, got.Balance, "0")
	})
}
