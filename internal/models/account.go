package models

import "time"

// AccountType is the kind of bank account reported by the provider.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
)

// Account is a bank account linked through the banking provider.
type Account struct {
	Base
	UserID            string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name              string      `gorm:"not null" json:"name"`
	Institution       string      `json:"institution"`
	Type              AccountType `gorm:"not null" json:"type"`
	Currency          string      `gorm:"not null;default:'USD'" json:"currency"`
	Mask              string      `gorm:"size:4" json:"mask,omitempty"`
	ProviderAccountID string      `gorm:"not null;uniqueIndex" json:"provider_account_id"`
	IsActive          bool        `gorm:"default:true" json:"is_active"`
	LastSyncedAt      *time.Time  `json:"last_synced_at,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"-"`
}
