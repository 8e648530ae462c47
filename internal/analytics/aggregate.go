package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// topMerchantLimit caps the merchant ranking.
const topMerchantLimit = 20

var hundred = decimal.NewFromInt(100)

// Options controls how a batch is aggregated.
type Options struct {
	// IncludePending counts pending transactions in the raw totals.
	// Recurrence detection ignores pending transactions regardless.
	IncludePending bool
}

// DefaultOptions returns the options used by Aggregate.
func DefaultOptions() Options {
	return Options{IncludePending: true}
}

// Aggregate reduces a batch into totals, category and source breakdowns,
// monthly trends and a top merchant ranking using DefaultOptions.
func Aggregate(txns []Transaction) (*AggregateResult, error) {
	return AggregateWithOptions(txns, DefaultOptions())
}

// AggregateWithOptions is Aggregate with caller supplied options. It returns
// a *ValidationError naming the first malformed transaction and no result.
func AggregateWithOptions(txns []Transaction, opts Options) (*AggregateResult, error) {
	months, err := validateBatch(txns)
	if err != nil {
		return nil, err
	}

	result := &AggregateResult{
		TotalIncome: decimal.Zero,
		TotalSpend:  decimal.Zero,
	}

	categories := newLedger()
	sources := newLedger()
	merchants := newLedger()
	trends := make(map[string]*MonthlyTrend)

	for i, tx := range txns {
		if tx.Pending && !opts.IncludePending {
			continue
		}
		result.TransactionCount++
		if result.Currency == "" && tx.Currency != "" {
			result.Currency = tx.Currency
		}

		month := months[i]
		trend, ok := trends[month]
		if !ok {
			trend = &MonthlyTrend{Month: month, Income: decimal.Zero, Spend: decimal.Zero}
			trends[month] = trend
		}

		switch {
		case tx.IsInflow():
			result.TotalIncome = result.TotalIncome.Add(tx.Amount)
			trend.Income = trend.Income.Add(tx.Amount)
			sources.add(tx.sourceName(), tx.Amount)

		case tx.IsOutflow():
			spend := tx.Amount.Abs()
			result.TotalSpend = result.TotalSpend.Add(spend)
			trend.Spend = trend.Spend.Add(spend)

			// Every listed category receives the full amount.
			if len(tx.Categories) == 0 {
				categories.add(UncategorizedLabel, spend)
			}
			for _, category := range tx.Categories {
				categories.add(category, spend)
			}

			if tx.MerchantName != "" {
				merchants.add(tx.MerchantName, spend)
			}
		}
	}

	result.NetAmount = result.TotalIncome.Sub(result.TotalSpend)

	result.SpendByCategory = make([]CategorySpend, 0, len(categories.buckets))
	for _, b := range categories.sorted() {
		result.SpendByCategory = append(result.SpendByCategory, CategorySpend{
			Category:         b.key,
			Amount:           b.amount,
			Percentage:       percentage(b.amount, result.TotalSpend),
			TransactionCount: b.count,
		})
	}

	result.IncomeBySource = make([]SourceAmount, 0, len(sources.buckets))
	for _, b := range sources.sorted() {
		result.IncomeBySource = append(result.IncomeBySource, SourceAmount{
			Source:     b.key,
			Amount:     b.amount,
			Percentage: percentage(b.amount, result.TotalIncome),
		})
	}

	result.MonthlyTrends = make([]MonthlyTrend, 0, len(trends))
	for _, trend := range trends {
		trend.Net = trend.Income.Sub(trend.Spend)
		result.MonthlyTrends = append(result.MonthlyTrends, *trend)
	}
	sort.Slice(result.MonthlyTrends, func(i, j int) bool {
		return result.MonthlyTrends[i].Month < result.MonthlyTrends[j].Month
	})

	ranked := merchants.sorted()
	if len(ranked) > topMerchantLimit {
		ranked = ranked[:topMerchantLimit]
	}
	result.TopMerchants = make([]MerchantSpend, 0, len(ranked))
	for _, b := range ranked {
		result.TopMerchants = append(result.TopMerchants, MerchantSpend{
			Merchant: b.key,
			Amount:   b.amount,
			Count:    b.count,
		})
	}

	return result, nil
}

// validateBatch checks ids and dates and returns the month key of every
// transaction, index aligned with txns.
func validateBatch(txns []Transaction) ([]string, error) {
	months := make([]string, len(txns))
	seen := make(map[string]struct{}, len(txns))
	for i, tx := range txns {
		if tx.ID == "" {
			return nil, invalid("", "id", "is required")
		}
		if _, dup := seen[tx.ID]; dup {
			return nil, invalid(tx.ID, "id", "is duplicated in the batch")
		}
		seen[tx.ID] = struct{}{}

		at, err := ValidateDate(tx.ID, tx.Date)
		if err != nil {
			return nil, err
		}
		months[i] = MonthKey(at)
	}
	return months, nil
}

// percentage returns part as a share of whole, in percent with two decimals.
func percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}

type bucket struct {
	key    string
	amount decimal.Decimal
	count  int
}

// ledger sums amounts per key and remembers first-appearance order.
type ledger struct {
	index   map[string]int
	buckets []bucket
}

func newLedger() *ledger {
	return &ledger{index: make(map[string]int)}
}

func (l *ledger) add(key string, amount decimal.Decimal) {
	i, ok := l.index[key]
	if !ok {
		i = len(l.buckets)
		l.index[key] = i
		l.buckets = append(l.buckets, bucket{key: key, amount: decimal.Zero})
	}
	l.buckets[i].amount = l.buckets[i].amount.Add(amount)
	l.buckets[i].count++
}

// sorted returns the buckets by amount descending, ties kept in
// first-appearance order.
func (l *ledger) sorted() []bucket {
	out := make([]bucket, len(l.buckets))
	copy(out, l.buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].amount.GreaterThan(out[j].amount)
	})
	return out
}
