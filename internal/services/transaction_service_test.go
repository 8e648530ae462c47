package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/testutil"
)

func newTransactionService(t *testing.T) (TransactionServicer, *models.User, *models.Account, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewTransactionService(db, NewAccountService(db))
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	return svc, user, account, func() { testutil.TeardownTestDB(t, db) }
}

func TestGetAccountTransactions(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		testutil.CreateTestTransaction(t, db, account, "-10.00", "2024-01-05", "Coffee")
		testutil.CreateTestTransaction(t, db, account, "-20.00", "2024-02-05", "Lunch")
		testutil.CreateTestTransaction(t, db, account, "3000.00", "2024-01-31", "Payroll")

		result, err := svc.GetAccountTransactions(user.ID, account.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].Description != "Lunch" || result.Data[2].Description != "Coffee" {
			t.Errorf("unexpected order: %s, %s, %s", result.Data[0].Description, result.Data[1].Description, result.Data[2].Description)
		}
	})

	t.Run("foreign_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, other.ID)

		_, err := svc.GetAccountTransactions(user.ID, account.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		testutil.CreateTestTransaction(t, db, account, "-12.50", "2024-01-05", "Blue Bottle Coffee", "Food and Drink", "Coffee Shop")
		testutil.CreateTestTransaction(t, db, account, "-1200.00", "2024-01-01", "Rent", "Housing")
		pending := testutil.CreateTestTransaction(t, db, account, "-45.00", "2024-02-10", "Shell Gas", "Travel")
		testutil.MarkPending(t, db, pending)

		from := testutil.Date(t, "2024-01-02")
		to := testutil.Date(t, "2024-01-31")
		yes := true
		category := "Housing"
		merchant := "BOTTLE"
		minAmount := decimal.RequireFromString("-100")
		maxAmount := decimal.RequireFromString("-100")

		tests := []struct {
			name   string
			filter TransactionFilter
			want   []string
		}{
			{"date_window", TransactionFilter{FromDate: &from, ToDate: &to}, []string{"Blue Bottle Coffee"}},
			{"pending", TransactionFilter{Pending: &yes}, []string{"Shell Gas"}},
			{"category", TransactionFilter{Category: &category}, []string{"Rent"}},
			{"merchant_case_insensitive", TransactionFilter{Merchant: &merchant}, []string{"Blue Bottle Coffee"}},
			{"min_amount", TransactionFilter{MinAmount: &minAmount}, []string{"Shell Gas", "Blue Bottle Coffee"}},
			{"max_amount", TransactionFilter{MaxAmount: &maxAmount}, []string{"Rent"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := svc.GetAccountTransactions(user.ID, account.ID, pagination.PageRequest{}, tt.filter)
				testutil.AssertNoError(t, err)

				if len(result.Data) != len(tt.want) {
					t.Fatalf("expected %d transactions, got %d", len(tt.want), len(result.Data))
				}
				for i, desc := range tt.want {
					if result.Data[i].Description != desc {
						t.Errorf("position %d: expected %s, got %s", i, desc, result.Data[i].Description)
					}
				}
			})
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewAccountService(db))
	user := testutil.CreateTestUser(t, db)
	checking := testutil.CreateTestAccount(t, db, user.ID)
	savings := testutil.CreateTestAccount(t, db, user.ID)
	other := testutil.CreateTestAccount(t, db, testutil.CreateTestUser(t, db).ID)

	testutil.CreateTestTransaction(t, db, checking, "-10.00", "2024-01-05", "Coffee")
	testutil.CreateTestTransaction(t, db, savings, "5.00", "2024-01-31", "Interest")
	testutil.CreateTestTransaction(t, db, other, "-99.00", "2024-01-10", "Not mine")

	result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Errorf("expected 2 transactions across accounts, got %d", result.TotalItems)
	}
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		created := testutil.CreateTestTransaction(t, db, account, "-10.25", "2024-01-05", "Coffee", "Food and Drink")

		tx, err := svc.GetTransactionByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, tx.Amount, "-10.25")
		if len(tx.Categories) != 1 || tx.Categories[0] != "Food and Drink" {
			t.Errorf("expected categories to round trip, got %v", tx.Categories)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		created := testutil.CreateTestTransaction(t, db, account, "-10.00", "2024-01-05", "Coffee")

		_, err := svc.GetTransactionByID(other.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestImportTransactions(t *testing.T) {
	t.Run("inserts_and_marks_synced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		result, err := svc.ImportTransactions(account.ID, []ImportTransaction{
			{ProviderTransactionID: "p1", Amount: "-1200.00", Date: "2024-01-01", Description: "Rent", Categories: []string{"Housing"}},
			{ProviderTransactionID: "p2", Amount: "3000", Date: "2024-W02", Description: "Payroll"},
		})
		testutil.AssertNoError(t, err)

		if result.Received != 2 || result.Upserted != 2 {
			t.Errorf("expected 2 received and upserted, got %+v", result)
		}

		var stored []models.Transaction
		db.Where("account_id = ?", account.ID).Order("booked_on ASC").Find(&stored)
		if len(stored) != 2 {
			t.Fatalf("expected 2 stored rows, got %d", len(stored))
		}
		if stored[1].Date != "2024-W02" {
			t.Errorf("expected raw date to be kept, got %s", stored[1].Date)
		}
		if stored[1].Currency != "USD" {
			t.Errorf("expected account currency fallback, got %s", stored[1].Currency)
		}
		if stored[0].UserID != user.ID {
			t.Errorf("expected owner %s, got %s", user.ID, stored[0].UserID)
		}

		var refreshed models.Account
		db.First(&refreshed, "id = ?", account.ID)
		if refreshed.LastSyncedAt == nil {
			t.Error("expected last_synced_at to be set")
		}
	})

	t.Run("reimport_updates_in_place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.ImportTransactions(account.ID, []ImportTransaction{
			{ProviderTransactionID: "p1", Amount: "-10.00", Date: "2024-01-05", Description: "Coffee", Pending: true},
		})
		testutil.AssertNoError(t, err)

		_, err = svc.ImportTransactions(account.ID, []ImportTransaction{
			{ProviderTransactionID: "p1", Amount: "-11.50", Date: "2024-01-06", Description: "Coffee"},
		})
		testutil.AssertNoError(t, err)

		var stored []models.Transaction
		db.Where("account_id = ?", account.ID).Find(&stored)
		if len(stored) != 1 {
			t.Fatalf("expected a single row after re-import, got %d", len(stored))
		}
		testutil.AssertDecimal(t, stored[0].Amount, "-11.50")
		if stored[0].Pending {
			t.Error("expected transaction to be posted")
		}
	})

	t.Run("posted_replaces_pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.ImportTransactions(account.ID, []ImportTransaction{
			{ProviderTransactionID: "pend-1", Amount: "-45.00", Date: "2024-02-10", Description: "Shell", Pending: true},
		})
		testutil.AssertNoError(t, err)

		result, err := svc.ImportTransactions(account.ID, []ImportTransaction{
			{ProviderTransactionID: "post-1", PendingTransactionID: "pend-1", Amount: "-45.00", Date: "2024-02-11", Description: "Shell"},
		})
		testutil.AssertNoError(t, err)

		if result.PendingResolved != 1 {
			t.Errorf("expected 1 pending resolved, got %d", result.PendingResolved)
		}
		var ids []string
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Pluck("provider_transaction_id", &ids)
		if len(ids) != 1 || ids[0] != "post-1" {
			t.Errorf("expected only post-1 to remain, got %v", ids)
		}
	})

	t.Run("malformed_batch_rejected", func(t *testing.T) {
		tests := []struct {
			name    string
			entries []ImportTransaction
		}{
			{"bad_amount", []ImportTransaction{{ProviderTransactionID: "p1", Amount: "ten", Date: "2024-01-01"}}},
			{"bad_date", []ImportTransaction{{ProviderTransactionID: "p1", Amount: "-1", Date: "01/02/2024"}}},
			{"missing_id", []ImportTransaction{{Amount: "-1", Date: "2024-01-01"}}},
			{"duplicate_id", []ImportTransaction{
				{ProviderTransactionID: "p1", Amount: "-1", Date: "2024-01-01"},
				{ProviderTransactionID: "p1", Amount: "-2", Date: "2024-01-02"},
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				db := testutil.SetupTestDB(t)
				defer testutil.TeardownTestDB(t, db)
				svc := NewTransactionService(db, NewAccountService(db))
				user := testutil.CreateTestUser(t, db)
				account := testutil.CreateTestAccount(t, db, user.ID)

				_, err := svc.ImportTransactions(account.ID, tt.entries)
				testutil.AssertAppError(t, err, "INVALID_TRANSACTION")

				var count int64
				db.Model(&models.Transaction{}).Count(&count)
				if count != 0 {
					t.Errorf("expected nothing stored, got %d rows", count)
				}
			})
		}
	})

	t.Run("unknown_account", func(t *testing.T) {
		svc, _, _, teardown := newTransactionService(t)
		defer teardown()

		_, err := svc.ImportTransactions("0190a000-0000-7000-8000-000000000000", nil)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("empty_batch", func(t *testing.T) {
		svc, _, account, teardown := newTransactionService(t)
		defer teardown()

		result, err := svc.ImportTransactions(account.ID, nil)
		testutil.AssertNoError(t, err)
		if result.Upserted != 0 {
			t.Errorf("expected nothing upserted, got %d", result.Upserted)
		}
	})
}

func TestFetchTransactions(t *testing.T) {
	t.Run("window_and_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		testutil.CreateTestTransaction(t, db, account, "-1.00", "2023-12-31", "Before")
		testutil.CreateTestTransaction(t, db, account, "-3.00", "2024-01-20", "Later")
		testutil.CreateTestTransaction(t, db, account, "-2.00", "2024-01-01", "First")
		testutil.CreateTestTransaction(t, db, account, "-4.00", "2024-02-01", "After")

		window := analytics.DateRange{From: testutil.Date(t, "2024-01-01"), To: testutil.Date(t, "2024-01-31")}
		txns, err := svc.FetchTransactions(context.Background(), account.ID, window)
		testutil.AssertNoError(t, err)

		if len(txns) != 2 {
			t.Fatalf("expected 2 transactions in window, got %d", len(txns))
		}
		if txns[0].Description != "First" || txns[1].Description != "Later" {
			t.Errorf("expected oldest first, got %s then %s", txns[0].Description, txns[1].Description)
		}
		if txns[0].Date != "2024-01-01" {
			t.Errorf("expected raw date, got %s", txns[0].Date)
		}
	})

	t.Run("open_window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewAccountService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, account, "-1.00", "2019-06-01", "Old")
		testutil.CreateTestTransaction(t, db, account, "-1.00", "2024-06-01", "New")

		txns, err := svc.FetchTransactions(context.Background(), account.ID, analytics.DateRange{})
		testutil.AssertNoError(t, err)
		if len(txns) != 2 {
			t.Errorf("expected all transactions, got %d", len(txns))
		}
	})

	t.Run("inverted_window", func(t *testing.T) {
		svc, _, account, teardown := newTransactionService(t)
		defer teardown()

		window := analytics.DateRange{From: testutil.Date(t, "2024-02-01"), To: testutil.Date(t, "2024-01-01")}
		_, err := svc.FetchTransactions(context.Background(), account.ID, window)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})
}

func TestFetchUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewAccountService(db))
	user := testutil.CreateTestUser(t, db)
	checking := testutil.CreateTestAccount(t, db, user.ID)
	card := testutil.CreateTestAccount(t, db, user.ID)

	testutil.CreateTestTransaction(t, db, checking, "-5.00", "2024-01-03", "Coffee")
	testutil.CreateTestTransaction(t, db, card, "-50.00", "2024-01-02", "Groceries")

	txns, err := svc.FetchUserTransactions(context.Background(), user.ID, analytics.DateRange{})
	testutil.AssertNoError(t, err)

	if len(txns) != 2 {
		t.Fatalf("expected transactions from both accounts, got %d", len(txns))
	}
	if txns[0].Description != "Groceries" {
		t.Errorf("expected oldest first, got %s", txns[0].Description)
	}
}
