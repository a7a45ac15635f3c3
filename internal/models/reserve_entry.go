package models

import (
	"strings"
	"time"

	"finanzas/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReserveMovementKind is the direction of a reserve-ledger movement.
type ReserveMovementKind string

const (
	ReserveContribution ReserveMovementKind = "contribution"
	ReserveWithdrawal   ReserveMovementKind = "withdrawal"
)

// ParseReserveMovementKind parses CONTRIBUTION/WITHDRAWAL case-insensitively.
func ParseReserveMovementKind(s string) (ReserveMovementKind, bool) {
	switch k := ReserveMovementKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ReserveContribution, ReserveWithdrawal:
		return k, true
	}
	return "", false
}

// ReserveEntry is one immutable movement on a reserve's ledger.
type ReserveEntry struct {
	ID        string              `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time           `gorm:"not null;index" json:"created_at"`
	ReserveID string              `gorm:"type:uuid;not null;index" json:"reserve_id"`
	AccountID *string             `gorm:"type:uuid;index" json:"account_id,omitempty"`
	Kind      ReserveMovementKind `gorm:"not null" json:"kind"`
	Amount    decimal.Decimal     `gorm:"type:decimal(19,2);not null" json:"amount"`
	Concept   string              `json:"concept"`

	// Relationships
	Reserve *Reserve `gorm:"foreignKey:ReserveID" json:"reserve,omitempty"`
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (e *ReserveEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}
