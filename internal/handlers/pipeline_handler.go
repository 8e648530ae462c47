package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/services"
)

// PipelineHandler serves the machine-to-machine endpoints used by the sync worker.
type PipelineHandler struct {
	accountService     services.AccountServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(accountService services.AccountServicer, transactionService services.TransactionServicer, auditService services.AuditServicer) *PipelineHandler {
	return &PipelineHandler{
		accountService:     accountService,
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// LinkedAccount is the sync worker's view of a linked account.
type LinkedAccount struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ProviderAccountID string     `json:"provider_account_id"`
	Currency          string     `json:"currency"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
}

// PipelineAccountEntry is one provider account pushed by the sync worker.
type PipelineAccountEntry struct {
	UserID            string             `json:"user_id" binding:"required,uuid"`
	ProviderAccountID string             `json:"provider_account_id" binding:"required,max=100"`
	Name              string             `json:"name" binding:"required,max=100"`
	Institution       string             `json:"institution" binding:"max=100"`
	Type              models.AccountType `json:"type" binding:"omitempty,account_type"`
	Currency          string             `json:"currency" binding:"omitempty,iso4217"`
	Mask              string             `json:"mask" binding:"omitempty,max=4"`
}

// UpsertAccountsRequest is the payload of POST /pipeline/accounts.
type UpsertAccountsRequest struct {
	Accounts []PipelineAccountEntry `json:"accounts" binding:"required,max=500,dive"`
}

// PipelineTransactionEntry is one provider transaction pushed by the sync worker.
type PipelineTransactionEntry struct {
	ID                   string   `json:"id"`
	PendingTransactionID string   `json:"pending_transaction_id"`
	Amount               string   `json:"amount" example:"-12.50"`
	Date                 string   `json:"date" example:"2024-01-31"`
	Description          string   `json:"description"`
	MerchantName         string   `json:"merchant_name"`
	Categories           []string `json:"categories"`
	Pending              bool     `json:"pending"`
	Currency             string   `json:"currency"`
}

// ImportTransactionsRequest is the payload of POST /pipeline/transactions.
type ImportTransactionsRequest struct {
	AccountID    string                     `json:"account_id" binding:"required,uuid"`
	Transactions []PipelineTransactionEntry `json:"transactions" binding:"required,max=5000"`
}

// ListLinkedAccounts returns every active linked account.
// @Summary     List linked accounts (pipeline)
// @Description Get all active linked accounts across users (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string][]LinkedAccount "Linked accounts"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/accounts [get]
func (h *PipelineHandler) ListLinkedAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListLinkedAccounts()
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]LinkedAccount, len(accounts))
	for i, a := range accounts {
		out[i] = LinkedAccount{
			ID:                a.ID,
			UserID:            a.UserID,
			ProviderAccountID: a.ProviderAccountID,
			Currency:          a.Currency,
			LastSyncedAt:      a.LastSyncedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

// UpsertAccounts refreshes provider account metadata.
// @Summary     Upsert provider accounts (pipeline)
// @Description Create or refresh accounts by provider account id (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body UpsertAccountsRequest true "Provider accounts"
// @Success     200 {object} map[string]interface{} "Upserted accounts and created count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Account linked to another user"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/accounts [post]
func (h *PipelineHandler) UpsertAccounts(c *gin.Context) {
	var req UpsertAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	accounts := make([]*models.Account, 0, len(req.Accounts))
	created := 0
	for _, e := range req.Accounts {
		account, isNew, err := h.accountService.UpsertProviderAccount(services.AccountInput{
			UserID:            e.UserID,
			ProviderAccountID: e.ProviderAccountID,
			Name:              e.Name,
			Institution:       e.Institution,
			Type:              e.Type,
			Currency:          e.Currency,
			Mask:              e.Mask,
		})
		if err != nil {
			respondWithError(c, err)
			return
		}
		if isNew {
			created++
			h.auditService.Log(account.UserID, services.AuditUpsertAccount, "account", account.ID, c.ClientIP(),
				map[string]interface{}{"provider_account_id": account.ProviderAccountID})
		}
		accounts = append(accounts, account)
	}

	logger.Get().Infow("provider accounts upserted", "received", len(req.Accounts), "created", created)
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "created": created})
}

// ImportTransactions stores a provider transaction batch for an account.
// @Summary     Import transactions (pipeline)
// @Description Upsert provider transactions into an account. A malformed transaction rejects the whole batch.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ImportTransactionsRequest true "Transaction batch"
// @Success     200 {object} services.ImportResult "Import summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     422 {object} ErrorResponse "Malformed transaction"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/transactions [post]
func (h *PipelineHandler) ImportTransactions(c *gin.Context) {
	var req ImportTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entries := make([]services.ImportTransaction, len(req.Transactions))
	for i, t := range req.Transactions {
		entries[i] = services.ImportTransaction{
			ProviderTransactionID: t.ID,
			PendingTransactionID:  t.PendingTransactionID,
			Amount:                t.Amount,
			Date:                  t.Date,
			Description:           t.Description,
			MerchantName:          t.MerchantName,
			Categories:            t.Categories,
			Pending:               t.Pending,
			Currency:              t.Currency,
		}
	}

	result, err := h.transactionService.ImportTransactions(req.AccountID, entries)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(result.UserID, services.AuditImportTxns, "account", result.AccountID, c.ClientIP(),
		map[string]interface{}{"received": result.Received, "pending_resolved": result.PendingResolved})

	c.JSON(http.StatusOK, result)
}
