package analytics

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// concentrationThreshold is the share of total spend, in percent, above
	// which a single category is flagged.
	concentrationThreshold = 40
	// recurringLoadThreshold is the number of recurring payments above which
	// the recurring load insight fires.
	recurringLoadThreshold = 5
)

var currencySymbols = map[string]string{
	"":    "$",
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// insightRule inspects the aggregate and recurring set and reports whether
// it produced an insight.
type insightRule func(f *formatter, agg *AggregateResult, recurring []RecurringTransaction) (Insight, bool)

// insightRules is evaluated in order; the order is the display priority.
var insightRules = []insightRule{
	overspendRule,
	categoryConcentrationRule,
	recurringLoadRule,
	incomeConcentrationRule,
}

// GenerateInsights evaluates every rule against the aggregate and recurring
// set and returns the insights that fired, in rule order. A nil aggregate
// yields no insights.
func GenerateInsights(agg *AggregateResult, recurring []RecurringTransaction) []Insight {
	insights := make([]Insight, 0, len(insightRules))
	if agg == nil {
		return insights
	}

	f := newFormatter(agg.Currency)
	for _, rule := range insightRules {
		if insight, ok := rule(f, agg, recurring); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func overspendRule(f *formatter, agg *AggregateResult, _ []RecurringTransaction) (Insight, bool) {
	if !agg.NetAmount.IsNegative() {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightOverspending,
		Title:    "Spending Exceeds Income",
		Severity: SeverityHigh,
		Description: f.sprintf("You spent %s more than you earned (%s spent against %s of income).",
			f.money(agg.NetAmount.Abs()), f.money(agg.TotalSpend), f.money(agg.TotalIncome)),
		Recommendations: []string{
			"Review your largest spending categories for possible cuts",
			"Set a monthly budget that keeps spending below income",
			"Pause non-essential purchases until income and spending balance out",
		},
	}, true
}

func categoryConcentrationRule(f *formatter, agg *AggregateResult, _ []RecurringTransaction) (Insight, bool) {
	if len(agg.SpendByCategory) == 0 || !agg.TotalSpend.IsPositive() {
		return Insight{}, false
	}
	top := agg.SpendByCategory[0]
	share := top.Amount.Div(agg.TotalSpend).Mul(hundred)
	if !share.GreaterThan(decimal.NewFromInt(concentrationThreshold)) {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightCategoryConcentration,
		Title:    "High Spending Concentration",
		Severity: SeverityMedium,
		Description: f.sprintf("%s accounts for %.1f%% of your spending (%s).",
			top.Category, share.InexactFloat64(), f.money(top.Amount)),
		Recommendations: []string{
			"Set a spending limit for your top category",
			"Look for cheaper alternatives for your most frequent purchases",
			"Track this category weekly to catch overspending early",
		},
	}, true
}

func recurringLoadRule(f *formatter, _ *AggregateResult, recurring []RecurringTransaction) (Insight, bool) {
	if len(recurring) <= recurringLoadThreshold {
		return Insight{}, false
	}
	total := decimal.Zero
	for _, r := range recurring {
		total = total.Add(r.Amount)
	}
	return Insight{
		Type:     InsightRecurringPayments,
		Title:    "Multiple Recurring Payments",
		Severity: SeverityLow,
		Description: f.sprintf("You have %d recurring payments adding up to about %s per cycle.",
			len(recurring), f.money(total)),
		Recommendations: []string{
			"Review your subscriptions and cancel the ones you no longer use",
			"Negotiate lower rates for bills and services",
			"Consolidate overlapping services into a single plan",
		},
	}, true
}

func incomeConcentrationRule(f *formatter, agg *AggregateResult, _ []RecurringTransaction) (Insight, bool) {
	if len(agg.IncomeBySource) != 1 {
		return Insight{}, false
	}
	source := agg.IncomeBySource[0]
	return Insight{
		Type:     InsightIncomeConcentration,
		Title:    "Single Income Source",
		Severity: SeverityMedium,
		Description: f.sprintf("All of your income (%s) came from a single source: %s.",
			f.money(source.Amount), source.Source),
		Recommendations: []string{
			"Build an emergency fund covering three to six months of expenses",
			"Explore additional income streams to reduce dependency on one payer",
		},
	}, true
}

// formatter renders numbers with English digit grouping.
type formatter struct {
	printer *message.Printer
	symbol  string
}

func newFormatter(currency string) *formatter {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	return &formatter{printer: message.NewPrinter(language.English), symbol: symbol}
}

func (f *formatter) money(d decimal.Decimal) string {
	return f.symbol + f.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (f *formatter) sprintf(format string, args ...any) string {
	return f.printer.Sprintf(format, args...)
}
