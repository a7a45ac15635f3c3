package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finanzas/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an account of the given type.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:      userID,
		Description: fmt.Sprintf("Test Account %d", nextID()),
		Type:        accountType,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestEntry appends a general-ledger entry stamped now.
func CreateTestEntry(t *testing.T, db *gorm.DB, accountID string, kind models.MovementKind, amount string) *models.LedgerEntry {
	t.Helper()
	return CreateTestEntryAt(t, db, accountID, kind, amount, time.Now().UTC())
}

// CreateTestEntryAt appends a general-ledger entry with an explicit timestamp.
func CreateTestEntryAt(t *testing.T, db *gorm.DB, accountID string, kind models.MovementKind, amount string, at time.Time) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		CreatedAt: at,
		AccountID: accountID,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		Concept:   fmt.Sprintf("Test Movement %d", nextID()),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test ledger entry: %v", err)
	}
	return entry
}

// CreateTestReserve creates a reserve with the given weekly contribution and goal.
func CreateTestReserve(t *testing.T, db *gorm.DB, userID string, kind models.ReserveKind, weekly, goal string) *models.Reserve {
	t.Helper()

	reserve := &models.Reserve{
		UserID:       userID,
		Concept:      fmt.Sprintf("Test Reserve %d", nextID()),
		Kind:         kind,
		WeeklyAmount: decimal.RequireFromString(weekly),
		GoalAmount:   decimal.RequireFromString(goal),
	}
	if err := db.Create(reserve).Error; err != nil {
		t.Fatalf("failed to create test reserve: %v", err)
	}
	return reserve
}

// CreateTestReserveEntry appends a reserve-ledger entry. accountID may be nil.
func CreateTestReserveEntry(t *testing.T, db *gorm.DB, reserveID string, accountID *string, kind models.ReserveMovementKind, amount string) *models.ReserveEntry {
	t.Helper()

	entry := &models.ReserveEntry{
		CreatedAt: time.Now().UTC(),
		ReserveID: reserveID,
		AccountID: accountID,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		Concept:   fmt.Sprintf("Test Reserve Movement %d", nextID()),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test reserve entry: %v", err)
	}
	return entry
}

// CreateTestBudgetConfig creates the default 60/20/10/10 split with the given weekly income.
func CreateTestBudgetConfig(t *testing.T, db *gorm.DB, userID string, weeklyIncome string) *models.BudgetConfig {
	t.Helper()

	cfg := models.NewDefaultBudgetConfig(userID, decimal.RequireFromString(weeklyIncome))
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("failed to create test budget config: %v", err)
	}
	return cfg
}

// CreateTestProjection creates a projection with the given amount.
func CreateTestProjection(t *testing.T, db *gorm.DB, userID string, amount string) *models.Projection {
	t.Helper()

	projection := &models.Projection{
		UserID:  userID,
		Concept: fmt.Sprintf("Test Projection %d", nextID()),
		Amount:  decimal.RequireFromString(amount),
	}
	if err := db.Create(projection).Error; err != nil {
		t.Fatalf("failed to create test projection: %v", err)
	}
	return projection
}
