package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/analytics"
	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
)

// analyticsService runs the analytics engine over stored transactions.
type analyticsService struct {
	accountService     AccountServicer
	transactionService TransactionServicer
	defaults           analytics.Options
	maxParallel        int
}

// NewAnalyticsService creates a new AnalyticsServicer. maxParallel bounds the
// number of accounts analyzed concurrently by AnalyzeAccounts.
func NewAnalyticsService(accountService AccountServicer, transactionService TransactionServicer, defaults analytics.Options, maxParallel int) AnalyticsServicer {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &analyticsService{
		accountService:     accountService,
		transactionService: transactionService,
		defaults:           defaults,
		maxParallel:        maxParallel,
	}
}

func (s *analyticsService) options(includePending *bool) analytics.Options {
	opts := s.defaults
	if includePending != nil {
		opts.IncludePending = *includePending
	}
	return opts
}

// AnalyzeAccount analyzes one account of the user over the query window.
func (s *analyticsService) AnalyzeAccount(ctx context.Context, userID, accountID string, q AnalyticsQuery) (*analytics.Report, error) {
	if !q.Window.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := analytics.AnalyzeSource(ctx, s.transactionService, accountID, q.Window, s.options(q.IncludePending))
	if err != nil {
		return nil, apperrors.FromValidation(err)
	}

	logger.Get().Infow("account analyzed",
		"user_id", userID,
		"account_id", accountID,
		"transactions", report.Aggregate.TransactionCount,
		"insights", len(report.Insights),
		"duration", time.Since(start),
	)
	return report, nil
}

// AnalyzeUser analyzes the combined transactions of every account of the user.
func (s *analyticsService) AnalyzeUser(ctx context.Context, userID string, q AnalyticsQuery) (*analytics.Report, error) {
	if !q.Window.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}

	txns, err := s.transactionService.FetchUserTransactions(ctx, userID, q.Window)
	if err != nil {
		return nil, err
	}
	report, err := analytics.Analyze(txns, s.options(q.IncludePending))
	if err != nil {
		return nil, apperrors.FromValidation(err)
	}

	logger.Get().Infow("user analyzed",
		"user_id", userID,
		"transactions", report.Aggregate.TransactionCount,
		"insights", len(report.Insights),
	)
	return report, nil
}

// AnalyzeAccounts analyzes each active account of the user separately.
// Reports are returned in account order; the first failure cancels the rest.
func (s *analyticsService) AnalyzeAccounts(ctx context.Context, userID string, q AnalyticsQuery) ([]AccountReport, error) {
	if !q.Window.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}

	accounts, err := s.accountService.ListActiveAccounts(userID)
	if err != nil {
		return nil, err
	}

	opts := s.options(q.IncludePending)
	reports := make([]AccountReport, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range accounts {
		account := accounts[i]
		g.Go(func() error {
			report, err := analytics.AnalyzeSource(gctx, s.transactionService, account.ID, q.Window, opts)
			if err != nil {
				return apperrors.FromValidation(err)
			}
			reports[i] = AccountReport{AccountID: account.ID, AccountName: account.Name, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Get().Infow("accounts analyzed", "user_id", userID, "accounts", len(accounts))
	return reports, nil
}

// AnalyzeBatch analyzes a caller supplied batch without touching storage.
func (s *analyticsService) AnalyzeBatch(txns []analytics.Transaction, includePending *bool) (*analytics.Report, error) {
	report, err := analytics.Analyze(txns, s.options(includePending))
	if err != nil {
		return nil, apperrors.FromValidation(err)
	}
	return report, nil
}
