package analytics

import "context"

// TransactionSource supplies materialized transaction batches for an account.
// Implementations own fetching, pagination and authentication; the analytics
// functions only ever see the returned slice.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, accountID string, window DateRange) ([]Transaction, error)
}

// Analyze runs the aggregator, the recurrence detector and the insight
// generator over one batch. The reported aggregate follows opts; insights are
// always derived from settled transactions only.
func Analyze(txns []Transaction, opts Options) (*Report, error) {
	agg, err := AggregateWithOptions(txns, opts)
	if err != nil {
		return nil, err
	}

	settled := agg
	if opts.IncludePending {
		settled, err = AggregateWithOptions(txns, Options{IncludePending: false})
		if err != nil {
			return nil, err
		}
	}

	recurring := DetectRecurring(txns)
	return &Report{
		Aggregate: agg,
		Recurring: recurring,
		Insights:  GenerateInsights(settled, recurring),
	}, nil
}

// AnalyzeSource fetches one account's batch from src and analyzes it.
func AnalyzeSource(ctx context.Context, src TransactionSource, accountID string, window DateRange, opts Options) (*Report, error) {
	txns, err := src.FetchTransactions(ctx, accountID, window)
	if err != nil {
		return nil, err
	}
	return Analyze(txns, opts)
}
