package models

// User is the identity anchor that owns every other entity.
type User struct {
	Base
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	BudgetConfig *BudgetConfig `gorm:"foreignKey:UserID" json:"budget_config,omitempty"`
}
