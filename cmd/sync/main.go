package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"finsight/internal/bankfeed"
	"finsight/internal/config"
	"finsight/internal/logger"
	"finsight/internal/pipelineclient"
	"finsight/internal/syncer"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()
	log := logger.Named("sync")

	cfg, err := config.LoadSync()
	if err != nil {
		log.Errorw("configuration error", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	pipeline := pipelineclient.NewClient(cfg.APIURL, cfg.PipelineAPIKey, httpClient)

	feed, err := bankfeed.NewClient(bankfeed.Config{
		BaseURL:  cfg.BankAPIURL,
		ClientID: cfg.BankClientID,
		Secret:   cfg.BankSecret,
		Timeout:  cfg.RequestTimeout,
		Logger:   logger.Named("bankfeed"),
	})
	if err != nil {
		log.Errorw("bank feed configuration error", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	s := syncer.New(pipeline, feed, syncer.Config{
		LookbackDays: cfg.LookbackDays,
		Parallelism:  cfg.Parallelism,
		Institution:  cfg.Institution,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := s.Run(ctx)
	if err != nil {
		log.Errorw("sync run failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	log.Infow("sync run completed",
		"accounts_linked", result.AccountsLinked,
		"accounts_created", result.AccountsCreated,
		"accounts_synced", result.AccountsSynced,
		"transactions_imported", result.TransactionsImported,
		"pending_resolved", result.PendingResolved,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)

	for _, syncErr := range result.Errors {
		log.Warnw("account sync failed",
			"account_id", syncErr.AccountID,
			"provider_account_id", syncErr.ProviderAccountID,
			"error", syncErr.Err.Error(),
		)
	}

	if len(result.Errors) > 0 {
		logger.Sync()
		os.Exit(2)
	}
}
