package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finsight/internal/analytics"
	apperrors "finsight/internal/errors"
	"finsight/internal/services"
)

// AnalyticsHandler serves spending aggregates, recurring payments and insights.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	auditService     services.AuditServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer, auditService services.AuditServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, auditService: auditService}
}

// BatchTransaction is one caller supplied transaction. Amount may be sent as a
// JSON number or string.
type BatchTransaction struct {
	ID           string          `json:"id"`
	Amount       json.RawMessage `json:"amount" swaggertype:"string" example:"-12.50"`
	Date         string          `json:"date" example:"2024-01-31"`
	Description  string          `json:"description"`
	MerchantName string          `json:"merchant_name"`
	Categories   []string        `json:"categories"`
	Pending      bool            `json:"pending"`
	Currency     string          `json:"currency"`
}

// AnalyzeBatchRequest is the payload of the batch endpoint.
type AnalyzeBatchRequest struct {
	Transactions   []BatchTransaction `json:"transactions" binding:"required,max=10000"`
	IncludePending *bool              `json:"include_pending"`
}

// AccountReportsResponse wraps per-account analyses.
type AccountReportsResponse struct {
	Accounts []services.AccountReport `json:"accounts"`
}

func parseAnalyticsQuery(c *gin.Context) (services.AnalyticsQuery, error) {
	var q services.AnalyticsQuery

	from, err := parseQueryDate(c, "from")
	if err != nil {
		return q, err
	}
	to, err := parseQueryDate(c, "to")
	if err != nil {
		return q, err
	}
	if from != nil {
		q.Window.From = *from
	}
	if to != nil {
		q.Window.To = *to
	}

	if q.IncludePending, err = parseQueryBool(c, "include_pending"); err != nil {
		return q, err
	}
	return q, nil
}

// GetUserAnalytics analyzes all of the user's accounts as one batch
// @Summary     Analyze all accounts
// @Description Aggregates, recurring payments and insights over the combined transactions of every account
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from            query string false "Earliest booking date (YYYY-MM-DD, YYYY-Www, YYYY-Qn)"
// @Param       to              query string false "Latest booking date"
// @Param       include_pending query bool   false "Count pending transactions in totals"
// @Success     200 {object} map[string]analytics.Report "Analysis report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Malformed stored transaction"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics [get]
func (h *AnalyticsHandler) GetUserAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	q, err := parseAnalyticsQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.analyticsService.AnalyzeUser(c.Request.Context(), userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetAccountAnalytics analyzes a single account
// @Summary     Analyze an account
// @Description Aggregates, recurring payments and insights for one account
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       id              path  string true  "Account ID"
// @Param       from            query string false "Earliest booking date"
// @Param       to              query string false "Latest booking date"
// @Param       include_pending query bool   false "Count pending transactions in totals"
// @Success     200 {object} map[string]analytics.Report "Analysis report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     422 {object} ErrorResponse "Malformed stored transaction"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/analytics [get]
func (h *AnalyticsHandler) GetAccountAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	q, err := parseAnalyticsQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.analyticsService.AnalyzeAccount(c.Request.Context(), userID, accountID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditRunAnalytics, "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetPerAccountAnalytics analyzes each account separately
// @Summary     Analyze accounts separately
// @Description One analysis report per active account, computed concurrently
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from            query string false "Earliest booking date"
// @Param       to              query string false "Latest booking date"
// @Param       include_pending query bool   false "Count pending transactions in totals"
// @Success     200 {object} AccountReportsResponse "Per-account reports"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Malformed stored transaction"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/accounts [get]
func (h *AnalyticsHandler) GetPerAccountAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	q, err := parseAnalyticsQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reports, err := h.analyticsService.AnalyzeAccounts(c.Request.Context(), userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if reports == nil {
		reports = []services.AccountReport{}
	}

	c.JSON(http.StatusOK, AccountReportsResponse{Accounts: reports})
}

// AnalyzeBatch analyzes a caller supplied batch without storing it
// @Summary     Analyze a transaction batch
// @Description Run the analytics engine over the posted transactions. A malformed transaction rejects the whole batch.
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AnalyzeBatchRequest true "Transactions to analyze"
// @Success     200 {object} map[string]analytics.Report "Analysis report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Malformed transaction"
// @Router      /analytics/batch [post]
func (h *AnalyticsHandler) AnalyzeBatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AnalyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txns, err := toAnalyticsBatch(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.analyticsService.AnalyzeBatch(txns, req.IncludePending)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditAnalyzeBatch, "batch", "", c.ClientIP(),
		map[string]interface{}{"transactions": len(txns)})

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func toAnalyticsBatch(in []BatchTransaction) ([]analytics.Transaction, error) {
	out := make([]analytics.Transaction, len(in))
	for i, bt := range in {
		raw := strings.Trim(strings.TrimSpace(string(bt.Amount)), `"`)
		if raw == "null" {
			raw = ""
		}
		amount, err := analytics.ParseAmount(bt.ID, raw)
		if err != nil {
			return nil, err
		}
		out[i] = analytics.Transaction{
			ID:           bt.ID,
			Amount:       amount,
			Date:         bt.Date,
			Description:  bt.Description,
			MerchantName: bt.MerchantName,
			Categories:   bt.Categories,
			Pending:      bt.Pending,
			Currency:     bt.Currency,
		}
	}
	return out, nil
}
