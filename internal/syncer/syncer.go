// Package syncer pulls accounts and transactions from the bank feed and
// pushes them into the finsight pipeline API.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finsight/internal/bankfeed"
	"finsight/internal/pipelineclient"
)

// importChunk matches the largest batch the pipeline endpoint accepts.
const importChunk = 5000

// pendingGrace re-reads this far before the last sync so pending entries
// that posted since then are picked up.
const pendingGrace = 14 * 24 * time.Hour

// ErrAccountMissing is recorded when a linked account is absent from the feed.
var ErrAccountMissing = errors.New("account not returned by bank feed")

// Pipeline defines the finsight API operations needed by the syncer.
type Pipeline interface {
	ListAccounts(ctx context.Context) ([]pipelineclient.LinkedAccount, error)
	UpsertAccounts(ctx context.Context, accounts []pipelineclient.AccountEntry) (int, error)
	ImportTransactions(ctx context.Context, accountID string, txns []pipelineclient.TransactionEntry) (*pipelineclient.ImportResult, error)
}

// Feed defines the bank feed operations needed by the syncer.
type Feed interface {
	GetAccounts(ctx context.Context) ([]bankfeed.Account, error)
	GetTransactions(ctx context.Context, accountID string, start, end time.Time) ([]bankfeed.Transaction, error)
}

// Config tunes a sync run.
type Config struct {
	LookbackDays int
	Parallelism  int
	Institution  string
}

// AccountError is a failed sync of one account.
type AccountError struct {
	AccountID         string
	ProviderAccountID string
	Err               error
}

// Error implements the error interface.
func (e *AccountError) Error() string {
	return fmt.Sprintf("sync of account %s (provider %s) failed: %v", e.AccountID, e.ProviderAccountID, e.Err)
}

// Unwrap returns the underlying failure.
func (e *AccountError) Unwrap() error { return e.Err }

// RunResult contains the outcome of a sync run.
type RunResult struct {
	AccountsLinked       int
	AccountsCreated      int
	AccountsSynced       int
	TransactionsImported int
	PendingResolved      int
	Errors               []AccountError
	Duration             time.Duration
}

// Syncer copies bank feed data into finsight.
type Syncer struct {
	pipeline Pipeline
	feed     Feed
	config   Config
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New creates a new Syncer.
func New(pipeline Pipeline, feed Feed, cfg Config, logger *zap.SugaredLogger) *Syncer {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Syncer{
		pipeline: pipeline,
		feed:     feed,
		config:   cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes a single sync cycle: list linked accounts, refresh their
// metadata from the feed, then fetch and import each account's transactions
// concurrently. Per-account failures are collected in the result; only
// failures that stop the whole run are returned as an error.
func (s *Syncer) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	// 1. Fetch linked accounts from finsight.
	linked, err := s.pipeline.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	result.AccountsLinked = len(linked)

	if len(linked) == 0 {
		s.logger.Info("no linked accounts, nothing to do")
		result.Duration = time.Since(start)
		return result, nil
	}

	// 2. Fetch accounts from the bank feed.
	feedAccounts, err := s.feed.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	byProvider := make(map[string]pipelineclient.LinkedAccount, len(linked))
	for _, a := range linked {
		byProvider[a.ProviderAccountID] = a
	}

	// 3. Refresh metadata of linked accounts.
	var entries []pipelineclient.AccountEntry
	inFeed := make(map[string]bool, len(feedAccounts))
	for _, fa := range feedAccounts {
		owner, ok := byProvider[fa.AccountID]
		if !ok {
			s.logger.Warnw("skipping unlinked feed account", "provider_account_id", fa.AccountID)
			continue
		}
		inFeed[fa.AccountID] = true

		accountType, supported := fa.AccountType()
		if !supported {
			s.logger.Warnw("unsupported account type, metadata not refreshed",
				"provider_account_id", fa.AccountID, "type", fa.Type, "subtype", fa.Subtype)
			continue
		}
		entries = append(entries, s.accountEntry(owner, fa, string(accountType)))
	}

	if len(entries) > 0 {
		created, err := s.pipeline.UpsertAccounts(ctx, entries)
		if err != nil {
			return nil, err
		}
		result.AccountsCreated = created
	}

	// 4. Fetch and import transactions per account.
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.config.Parallelism)

	for _, account := range linked {
		if !inFeed[account.ProviderAccountID] {
			s.logger.Warnw("linked account missing from bank feed",
				"account_id", account.ID, "provider_account_id", account.ProviderAccountID)
			mu.Lock()
			result.Errors = append(result.Errors, AccountError{
				AccountID:         account.ID,
				ProviderAccountID: account.ProviderAccountID,
				Err:               ErrAccountMissing,
			})
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			imported, resolved, err := s.syncAccount(ctx, account)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warnw("account sync failed",
					"account_id", account.ID, "provider_account_id", account.ProviderAccountID, "error", err)
				result.Errors = append(result.Errors, AccountError{
					AccountID:         account.ID,
					ProviderAccountID: account.ProviderAccountID,
					Err:               err,
				})
				return nil
			}
			result.AccountsSynced++
			result.TransactionsImported += imported
			result.PendingResolved += resolved
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].ProviderAccountID < result.Errors[j].ProviderAccountID
	})
	result.Duration = time.Since(start)
	return result, nil
}

func (s *Syncer) accountEntry(owner pipelineclient.LinkedAccount, fa bankfeed.Account, accountType string) pipelineclient.AccountEntry {
	name := fa.Name
	if name == "" {
		name = fa.OfficialName
	}
	mask := fa.Mask
	if len(mask) > 4 {
		mask = mask[len(mask)-4:]
	}
	return pipelineclient.AccountEntry{
		UserID:            owner.UserID,
		ProviderAccountID: fa.AccountID,
		Name:              name,
		Institution:       s.config.Institution,
		Type:              accountType,
		Currency:          fa.Currency(),
		Mask:              mask,
	}
}

// window returns the date range to fetch for account.
func (s *Syncer) window(account pipelineclient.LinkedAccount) (time.Time, time.Time) {
	end := s.now()
	start := end.AddDate(0, 0, -s.config.LookbackDays)
	if account.LastSyncedAt != nil {
		if since := account.LastSyncedAt.Add(-pendingGrace); since.After(start) {
			start = since
		}
	}
	return start, end
}

func (s *Syncer) syncAccount(ctx context.Context, account pipelineclient.LinkedAccount) (int, int, error) {
	start, end := s.window(account)
	txns, err := s.feed.GetTransactions(ctx, account.ProviderAccountID, start, end)
	if err != nil {
		return 0, 0, err
	}
	if len(txns) == 0 {
		s.logger.Debugw("no transactions", "account_id", account.ID)
		return 0, 0, nil
	}

	entries := make([]pipelineclient.TransactionEntry, len(txns))
	for i, t := range txns {
		entries[i] = transactionEntry(t)
	}

	imported, resolved := 0, 0
	for i := 0; i < len(entries); i += importChunk {
		chunk := entries[i:min(i+importChunk, len(entries))]
		res, err := s.pipeline.ImportTransactions(ctx, account.ID, chunk)
		if err != nil {
			return imported, resolved, err
		}
		imported += res.Upserted
		resolved += res.PendingResolved
	}

	s.logger.Infow("account synced",
		"account_id", account.ID,
		"transactions", imported,
		"pending_resolved", resolved,
	)
	return imported, resolved, nil
}

func transactionEntry(t bankfeed.Transaction) pipelineclient.TransactionEntry {
	categories := t.Category
	if categories == nil {
		categories = []string{}
	}
	at := t.ToAnalytics()
	return pipelineclient.TransactionEntry{
		ID:                   t.TransactionID,
		PendingTransactionID: t.PendingTransactionID,
		Amount:               at.Amount.String(),
		Date:                 t.Date,
		Description:          at.Description,
		MerchantName:         at.MerchantName,
		Categories:           categories,
		Pending:              t.Pending,
		Currency:             at.Currency,
	}
}
