// Package analytics computes spending aggregates, recurring payments and
// financial insights over an in-memory batch of bank transactions.
//
// Every function in this package is pure: it reads its input slice, allocates
// its own result and never mutates the transactions it was given, so batches
// for different accounts may be analyzed concurrently without coordination.
package analytics

import (
	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the category used for transactions without categories.
const UncategorizedLabel = "Uncategorized"

// Transaction is a single ledger entry as reported by a banking provider.
type Transaction struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"` // positive = inflow, negative = outflow
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	MerchantName string          `json:"merchant_name,omitempty"`
	Categories   []string        `json:"categories,omitempty"`
	Pending      bool            `json:"pending"`
	Currency     string          `json:"currency,omitempty"`
}

// IsInflow reports whether the transaction credits the account.
func (t Transaction) IsInflow() bool { return t.Amount.IsPositive() }

// IsOutflow reports whether the transaction debits the account.
func (t Transaction) IsOutflow() bool { return t.Amount.IsNegative() }

// sourceName returns the merchant name, falling back to the description.
func (t Transaction) sourceName() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Description
}

// CategorySpend is the outflow attributed to one category.
type CategorySpend struct {
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Percentage       float64         `json:"percentage"`
	TransactionCount int             `json:"transaction_count"`
}

// SourceAmount is the inflow attributed to one income source.
type SourceAmount struct {
	Source     string          `json:"source"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// MonthlyTrend holds income and spend totals for a calendar month.
type MonthlyTrend struct {
	Month  string          `json:"month"` // YYYY-MM
	Income decimal.Decimal `json:"income"`
	Spend  decimal.Decimal `json:"spend"`
	Net    decimal.Decimal `json:"net"`
}

// MerchantSpend is the outflow attributed to one named merchant.
type MerchantSpend struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// AggregateResult is the output of Aggregate.
type AggregateResult struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalSpend       decimal.Decimal `json:"total_spend"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	SpendByCategory  []CategorySpend `json:"spend_by_category"`
	IncomeBySource   []SourceAmount  `json:"income_by_source"`
	MonthlyTrends    []MonthlyTrend  `json:"monthly_trends"`
	TopMerchants     []MerchantSpend `json:"top_merchants"`
	Currency         string          `json:"currency,omitempty"`
	TransactionCount int             `json:"transaction_count"`
}

// Frequency is the estimated cadence of a recurring payment.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// RecurringTransaction is a group of outflows that repeat under the same
// normalized description.
type RecurringTransaction struct {
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"` // mean absolute amount
	Frequency    Frequency       `json:"frequency"`
	NextExpected string          `json:"next_expected"` // date of the most recent occurrence
	Occurrences  int             `json:"occurrences"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Severity ranks how urgently an insight should be surfaced.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// InsightType tags the rule that produced an insight.
type InsightType string

const (
	InsightOverspending          InsightType = "overspending"
	InsightCategoryConcentration InsightType = "category_concentration"
	InsightRecurringPayments     InsightType = "recurring_payments"
	InsightIncomeConcentration   InsightType = "income_concentration"
)

// Insight is a human-readable observation with recommendations.
type Insight struct {
	Type            InsightType `json:"type"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Severity        Severity    `json:"severity"`
	Recommendations []string    `json:"recommendations"`
}

// Report bundles the output of a full analysis run.
type Report struct {
	Aggregate *AggregateResult       `json:"aggregate"`
	Recurring []RecurringTransaction `json:"recurring"`
	Insights  []Insight              `json:"insights"`
}
