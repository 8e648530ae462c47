package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// AccountInput describes a bank account as reported by the provider.
type AccountInput struct {
	UserID            string
	ProviderAccountID string
	Name              string
	Institution       string
	Type              models.AccountType
	Currency          string
	Mask              string
}

// AccountServicer defines the contract for linked bank accounts.
type AccountServicer interface {
	LinkAccount(input AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	ListActiveAccounts(userID string) ([]models.Account, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpsertProviderAccount(input AccountInput) (*models.Account, bool, error)
	ListLinkedAccounts() ([]models.Account, error)
	MarkSynced(accountID string, at time.Time) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Pending   *bool
	Category  *string
	Merchant  *string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// ImportTransaction is one provider transaction pushed by the sync worker.
// Amount and Date are kept as the provider's strings and validated on import.
type ImportTransaction struct {
	ProviderTransactionID string
	PendingTransactionID  string
	Amount                string
	Date                  string
	Description           string
	MerchantName          string
	Categories            []string
	Pending               bool
	Currency              string
}

// ImportResult summarizes an ImportTransactions call.
type ImportResult struct {
	AccountID       string `json:"account_id"`
	UserID          string `json:"-"`
	Received        int    `json:"received"`
	Upserted        int    `json:"upserted"`
	PendingResolved int    `json:"pending_resolved"`
}

// TransactionServicer defines the contract for stored bank transactions.
type TransactionServicer interface {
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	ImportTransactions(accountID string, entries []ImportTransaction) (*ImportResult, error)
	FetchTransactions(ctx context.Context, accountID string, window analytics.DateRange) ([]analytics.Transaction, error)
	FetchUserTransactions(ctx context.Context, userID string, window analytics.DateRange) ([]analytics.Transaction, error)
}

// AnalyticsQuery selects the window and pending handling of an analysis.
// A nil IncludePending falls back to the service default.
type AnalyticsQuery struct {
	Window         analytics.DateRange
	IncludePending *bool
}

// AccountReport is the analysis of a single account.
type AccountReport struct {
	AccountID   string            `json:"account_id"`
	AccountName string            `json:"account_name"`
	Report      *analytics.Report `json:"report"`
}

// AnalyticsServicer runs the analytics engine over stored or supplied batches.
type AnalyticsServicer interface {
	AnalyzeAccount(ctx context.Context, userID, accountID string, q AnalyticsQuery) (*analytics.Report, error)
	AnalyzeUser(ctx context.Context, userID string, q AnalyticsQuery) (*analytics.Report, error)
	AnalyzeAccounts(ctx context.Context, userID string, q AnalyticsQuery) ([]AccountReport, error)
	AnalyzeBatch(txns []analytics.Transaction, includePending *bool) (*analytics.Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
