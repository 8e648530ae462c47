package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"finsight/internal/analytics"
)

// Transaction is a bank transaction imported from the provider.
// Amount is signed: positive is an inflow, negative an outflow.
type Transaction struct {
	Base
	UserID                string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID             string          `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_account_provider" json:"account_id"`
	ProviderTransactionID string          `gorm:"not null;uniqueIndex:idx_transactions_account_provider" json:"provider_transaction_id"`
	Amount                decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Date                  string          `gorm:"not null" json:"date"`
	BookedOn              time.Time       `gorm:"type:date;not null;index" json:"booked_on"`
	Description           string          `json:"description"`
	MerchantName          string          `json:"merchant_name,omitempty"`
	Categories            StringList      `json:"categories"`
	Pending               bool            `gorm:"not null;default:false" json:"pending"`
	Currency              string          `gorm:"not null;default:'USD'" json:"currency"`
}

// ToAnalytics converts the stored row into the analytics input shape.
func (t *Transaction) ToAnalytics() analytics.Transaction {
	return analytics.Transaction{
		ID:           t.ID,
		Amount:       t.Amount,
		Date:         t.Date,
		Description:  t.Description,
		MerchantName: t.MerchantName,
		Categories:   []string(t.Categories),
		Pending:      t.Pending,
		Currency:     t.Currency,
	}
}

// ToAnalyticsBatch converts a slice of rows, preserving order.
func ToAnalyticsBatch(rows []Transaction) []analytics.Transaction {
	batch := make([]analytics.Transaction, len(rows))
	for i := range rows {
		batch[i] = rows[i].ToAnalytics()
	}
	return batch
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported StringList source %T", value)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// GormDBDataType stores the list as jsonb on Postgres and text elsewhere.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
