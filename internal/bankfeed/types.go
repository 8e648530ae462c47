package bankfeed

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	"finsight/internal/models"
)

// Account is an account returned by /accounts/get.
type Account struct {
	AccountID    string   `json:"account_id"`
	Balances     Balances `json:"balances"`
	Mask         string   `json:"mask"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Type         string   `json:"type"`    // depository, credit, loan, investment, other
	Subtype      string   `json:"subtype"` // checking, savings, credit card, ...
}

// Balances carries the currency of an account. Balance figures are not used.
type Balances struct {
	IsoCurrencyCode        string `json:"iso_currency_code"`
	UnofficialCurrencyCode string `json:"unofficial_currency_code"`
}

// Currency returns the account currency, USD when the provider reports none.
func (a Account) Currency() string {
	return currencyOr(a.Balances.IsoCurrencyCode, a.Balances.UnofficialCurrencyCode)
}

// AccountType maps the provider type and subtype onto a finsight account type.
// ok is false for account kinds finsight does not track.
func (a Account) AccountType() (models.AccountType, bool) {
	switch a.Type {
	case "depository":
		if a.Subtype == "savings" {
			return models.AccountTypeSavings, true
		}
		return models.AccountTypeChecking, true
	case "credit":
		return models.AccountTypeCreditCard, true
	case "loan":
		return models.AccountTypeLoan, true
	default:
		return "", false
	}
}

// Transaction is a transaction returned by /transactions/get. Amount follows
// the provider convention: positive is money leaving the account.
type Transaction struct {
	TransactionID          string          `json:"transaction_id"`
	AccountID              string          `json:"account_id"`
	Amount                 decimal.Decimal `json:"amount"`
	IsoCurrencyCode        string          `json:"iso_currency_code"`
	UnofficialCurrencyCode string          `json:"unofficial_currency_code"`
	Date                   string          `json:"date"` // YYYY-MM-DD
	Name                   string          `json:"name"`
	MerchantName           string          `json:"merchant_name"`
	Pending                bool            `json:"pending"`
	PendingTransactionID   string          `json:"pending_transaction_id"`
	Category               []string        `json:"category"`
}

// SignedAmount returns the amount with inflows positive and outflows negative.
func (t Transaction) SignedAmount() decimal.Decimal {
	return t.Amount.Neg()
}

// ToAnalytics converts t into an analytics transaction.
func (t Transaction) ToAnalytics() analytics.Transaction {
	return analytics.Transaction{
		ID:           t.TransactionID,
		Amount:       t.SignedAmount(),
		Date:         t.Date,
		Description:  t.Name,
		MerchantName: t.MerchantName,
		Categories:   t.Category,
		Pending:      t.Pending,
		Currency:     currencyOr(t.IsoCurrencyCode, t.UnofficialCurrencyCode),
	}
}

func currencyOr(iso, unofficial string) string {
	if iso != "" {
		return strings.ToUpper(iso)
	}
	if unofficial != "" {
		return strings.ToUpper(unofficial)
	}
	return "USD"
}

type accountsResponse struct {
	Accounts  []Account `json:"accounts"`
	RequestID string    `json:"request_id"`
}

type transactionsResponse struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	RequestID         string        `json:"request_id"`
}

type errorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

// APIError is a non-200 answer from the provider.
type APIError struct {
	StatusCode int
	ErrorType  string
	ErrorCode  string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bank feed error %d: %s (type=%s, code=%s, request_id=%s)",
		e.StatusCode, e.Message, e.ErrorType, e.ErrorCode, e.RequestID)
}

// Retryable reports whether a later attempt might succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
