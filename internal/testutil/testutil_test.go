package testutil_test

import (
	"testing"

	"finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "accounts", "ledger_entries", "reserves", "reserve_entries", "budget_configs", "projections"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	if err := second.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeSavings)
	if account.Type != models.AccountTypeSavings {
		t.Errorf("expected savings account, got %s", account.Type)
	}

	entry := testutil.CreateTestEntry(t, db, account.ID, models.MovementIncome, "100.50")
	testutil.AssertDecimal(t, entry.Amount, "100.5")

	reserve := testutil.CreateTestReserve(t, db, user.ID, models.ReserveKindSavings, "200", "1000")
	testutil.AssertDecimal(t, reserve.WeeklyAmount, "200")

	re := testutil.CreateTestReserveEntry(t, db, reserve.ID, nil, models.ReserveContribution, "50")
	if re.AccountID != nil {
		t.Error("expected contribution without source account")
	}

	cfg := testutil.CreateTestBudgetConfig(t, db, user.ID, "1000")
	if cfg.ExpensesPct != models.DefaultExpensesPct {
		t.Errorf("expected default expenses pct, got %d", cfg.ExpensesPct)
	}

	p := testutil.CreateTestProjection(t, db, user.ID, "-25")
	if !p.Amount.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("expected -25, got %s", p.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	testutil.AssertKind(t, err, errors.KindNotFound)
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
