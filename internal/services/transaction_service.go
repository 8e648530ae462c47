package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finsight/internal/analytics"
	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

// importBatchSize bounds the rows sent in a single upsert statement.
const importBatchSize = 200

// transactionService handles stored bank transactions.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND account_id = ?", userID, accountID)
	return s.listTransactions(base, page, filter)
}

// GetUserTransactions retrieves a paginated, filtered list of transactions across all accounts of a user.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	return s.listTransactions(base, page, filter)
}

func (s *transactionService) listTransactions(base *gorm.DB, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("booked_on DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("booked_on >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("booked_on <= ?", *f.ToDate)
	}
	if f.Pending != nil {
		q = q.Where("pending = ?", *f.Pending)
	}
	if f.Category != nil {
		// categories is a JSON array of strings on every dialect
		q = q.Where("CAST(categories AS TEXT) LIKE ?", `%"`+*f.Category+`"%`)
	}
	if f.Merchant != nil {
		pattern := "%" + strings.ToLower(*f.Merchant) + "%"
		q = q.Where("LOWER(merchant_name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ImportTransactions upserts a provider batch into an account, keyed by the
// provider transaction id. A posted entry that names the pending transaction
// it replaces removes that pending row. The batch is rejected as a whole when
// any entry is malformed.
func (s *transactionService) ImportTransactions(accountID string, entries []ImportTransaction) (*ImportResult, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND is_active = ?", accountID, true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows, replaced, err := buildImportRows(&account, entries)
	if err != nil {
		return nil, apperrors.FromValidation(err)
	}

	result := &ImportResult{AccountID: account.ID, UserID: account.UserID, Received: len(entries)}
	if len(rows) == 0 {
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "provider_transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"amount", "date", "booked_on", "description", "merchant_name",
				"categories", "pending", "currency", "updated_at",
			}),
		})
		if err := upsert.CreateInBatches(rows, importBatchSize).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.Upserted = len(rows)

		if len(replaced) == 0 {
			return nil
		}
		res := tx.Unscoped().
			Where("account_id = ? AND pending = ? AND provider_transaction_id IN ?", account.ID, true, replaced).
			Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.PendingResolved = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.accountService.MarkSynced(account.ID, time.Now().UTC()); err != nil {
		logger.Get().Warnw("failed to record sync time", "account_id", account.ID, "error", err)
	}

	logger.Get().Infow("transactions imported",
		"account_id", account.ID,
		"received", result.Received,
		"upserted", result.Upserted,
		"pending_resolved", result.PendingResolved,
	)
	return result, nil
}

// buildImportRows validates entries and converts them to rows. It also
// returns the provider ids of pending transactions superseded by posted ones.
func buildImportRows(account *models.Account, entries []ImportTransaction) ([]models.Transaction, []string, error) {
	rows := make([]models.Transaction, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	var replaced []string

	for i := range entries {
		e := &entries[i]
		id := strings.TrimSpace(e.ProviderTransactionID)
		if id == "" {
			return nil, nil, &analytics.ValidationError{Field: "id", Reason: "is required"}
		}
		if _, dup := seen[id]; dup {
			return nil, nil, &analytics.ValidationError{TransactionID: id, Field: "id", Reason: "is duplicated in the batch"}
		}
		seen[id] = struct{}{}

		amount, err := analytics.ParseAmount(id, e.Amount)
		if err != nil {
			return nil, nil, err
		}
		bookedOn, err := analytics.ValidateDate(id, e.Date)
		if err != nil {
			return nil, nil, err
		}

		currency := e.Currency
		if currency == "" {
			currency = account.Currency
		}
		categories := models.StringList(e.Categories)
		if categories == nil {
			categories = models.StringList{}
		}

		rows = append(rows, models.Transaction{
			UserID:                account.UserID,
			AccountID:             account.ID,
			ProviderTransactionID: id,
			Amount:                amount,
			Date:                  strings.TrimSpace(e.Date),
			BookedOn:              bookedOn,
			Description:           e.Description,
			MerchantName:          e.MerchantName,
			Categories:            categories,
			Pending:               e.Pending,
			Currency:              currency,
		})

		if !e.Pending && e.PendingTransactionID != "" && e.PendingTransactionID != id {
			replaced = append(replaced, e.PendingTransactionID)
		}
	}
	return rows, replaced, nil
}

// FetchTransactions returns the stored batch of an account within window,
// oldest first. It satisfies analytics.TransactionSource.
func (s *transactionService) FetchTransactions(ctx context.Context, accountID string, window analytics.DateRange) ([]analytics.Transaction, error) {
	q := s.db.WithContext(ctx).Where("account_id = ?", accountID)
	return fetchWindow(q, window)
}

// FetchUserTransactions returns the stored transactions of every account of
// a user within window, oldest first.
func (s *transactionService) FetchUserTransactions(ctx context.Context, userID string, window analytics.DateRange) ([]analytics.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	return fetchWindow(q, window)
}

func fetchWindow(q *gorm.DB, window analytics.DateRange) ([]analytics.Transaction, error) {
	if !window.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}
	if !window.From.IsZero() {
		q = q.Where("booked_on >= ?", window.From)
	}
	if !window.To.IsZero() {
		q = q.Where("booked_on <= ?", window.To)
	}

	var rows []models.Transaction
	if err := q.Order("booked_on ASC").Order("id ASC").Find(&rows).Error; err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return models.ToAnalyticsBatch(rows), nil
}
