package models

import "github.com/shopspring/decimal"

// Projection is a forward-looking adjustment with no ledger backing.
type Projection struct {
	Base
	UserID  string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Concept string          `gorm:"not null" json:"concept"`
	Amount  decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"amount"`
}
