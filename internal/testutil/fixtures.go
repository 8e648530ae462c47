package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finsight/internal/analytics"
	"finsight/internal/models"
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

// CreateTestUserWithEmail creates a user with the given email and the
// password "password123".
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

// CreateTestAccount links a checking account with a unique provider id.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()

	n := nextID()
	account := &models.Account{
		UserID:            userID,
		Name:              fmt.Sprintf("Test Checking %d", n),
		Institution:       "Test Bank",
		Type:              models.AccountTypeChecking,
		Currency:          "USD",
		Mask:              fmt.Sprintf("%04d", n%10000),
		ProviderAccountID: fmt.Sprintf("prov-acc-%d", n),
		IsActive:          true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction stores a settled transaction on account. amount is a
// signed decimal string and date any form analytics.ParseDate accepts.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.Account, amount, date, description string, categories ...string) *models.Transaction {
	t.Helper()

	bookedOn, err := analytics.ParseDate(date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}

	tx := &models.Transaction{
		UserID:                account.UserID,
		AccountID:             account.ID,
		ProviderTransactionID: fmt.Sprintf("prov-tx-%d", nextID()),
		Amount:                decimal.RequireFromString(amount),
		Date:                  date,
		BookedOn:              bookedOn,
		Description:           description,
		Categories:            models.StringList(categories),
		Currency:              account.Currency,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// MarkPending flags an existing fixture transaction as pending.
func MarkPending(t *testing.T, db *gorm.DB, tx *models.Transaction) {
	t.Helper()
	if err := db.Model(tx).Update("pending", true).Error; err != nil {
		t.Fatalf("failed to mark transaction pending: %v", err)
	}
	tx.Pending = true
}

// Date parses a YYYY-MM-DD literal for tests.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date literal %q: %v", s, err)
	}
	return d
}
