package models

import (
	"strings"
	"time"

	"finanzas/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementKind is the direction of a general-ledger movement.
type MovementKind string

const (
	MovementIncome  MovementKind = "income"
	MovementExpense MovementKind = "expense"
)

// ParseMovementKind parses INCOME/EXPENSE case-insensitively.
func ParseMovementKind(s string) (MovementKind, bool) {
	switch k := MovementKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MovementIncome, MovementExpense:
		return k, true
	}
	return "", false
}

// LedgerEntry is one immutable movement on an account's general ledger.
// Append-only: no Base embed, no UpdatedAt.
type LedgerEntry struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
	AccountID string          `gorm:"type:uuid;not null;index" json:"account_id"`
	Kind      MovementKind    `gorm:"not null" json:"kind"`
	Amount    decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"amount"`
	Concept   string          `gorm:"not null" json:"concept"`

	// Relationships
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}
