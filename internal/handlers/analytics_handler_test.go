package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	apperrors "finsight/internal/errors"
	"finsight/internal/services"
)

// --- mock analytics service ---

type mockAnalyticsService struct {
	analyzeAccountFn  func(ctx context.Context, userID, accountID string, q services.AnalyticsQuery) (*analytics.Report, error)
	analyzeUserFn     func(ctx context.Context, userID string, q services.AnalyticsQuery) (*analytics.Report, error)
	analyzeAccountsFn func(ctx context.Context, userID string, q services.AnalyticsQuery) ([]services.AccountReport, error)
	analyzeBatchFn    func(txns []analytics.Transaction, includePending *bool) (*analytics.Report, error)
}

func (m *mockAnalyticsService) AnalyzeAccount(ctx context.Context, userID, accountID string, q services.AnalyticsQuery) (*analytics.Report, error) {
	if m.analyzeAccountFn != nil {
		return m.analyzeAccountFn(ctx, userID, accountID, q)
	}
	return &analytics.Report{}, nil
}

func (m *mockAnalyticsService) AnalyzeUser(ctx context.Context, userID string, q services.AnalyticsQuery) (*analytics.Report, error) {
	if m.analyzeUserFn != nil {
		return m.analyzeUserFn(ctx, userID, q)
	}
	return &analytics.Report{}, nil
}

func (m *mockAnalyticsService) AnalyzeAccounts(ctx context.Context, userID string, q services.AnalyticsQuery) ([]services.AccountReport, error) {
	if m.analyzeAccountsFn != nil {
		return m.analyzeAccountsFn(ctx, userID, q)
	}
	return nil, nil
}

func (m *mockAnalyticsService) AnalyzeBatch(txns []analytics.Transaction, includePending *bool) (*analytics.Report, error) {
	if m.analyzeBatchFn != nil {
		return m.analyzeBatchFn(txns, includePending)
	}
	return analytics.Analyze(txns, analytics.DefaultOptions())
}

var _ services.AnalyticsServicer = (*mockAnalyticsService)(nil)

func setupAnalyticsRouter(handler *AnalyticsHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/analytics", handler.GetUserAnalytics)
	auth.GET("/analytics/accounts", handler.GetPerAccountAnalytics)
	auth.POST("/analytics/batch", handler.AnalyzeBatch)
	auth.GET("/accounts/:id/analytics", handler.GetAccountAnalytics)
	return r
}

func TestAnalyticsHandler_GetUserAnalytics(t *testing.T) {
	t.Run("returns 200 and parses the window", func(t *testing.T) {
		var got services.AnalyticsQuery
		svc := &mockAnalyticsService{
			analyzeUserFn: func(_ context.Context, userID string, q services.AnalyticsQuery) (*analytics.Report, error) {
				got = q
				return &analytics.Report{Aggregate: &analytics.AggregateResult{TotalSpend: decimal.RequireFromString("3600")}}, nil
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/analytics?from=2024-01-01&to=2024-W13&include_pending=false", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Window.From.Format("2006-01-02") != "2024-01-01" || got.Window.To.Format("2006-01-02") != "2024-03-25" {
			t.Errorf("unexpected window: %v - %v", got.Window.From, got.Window.To)
		}
		if got.IncludePending == nil || *got.IncludePending {
			t.Errorf("expected include_pending=false, got %v", got.IncludePending)
		}
		report := parseJSON(t, rec)["report"].(map[string]interface{})
		agg := report["aggregate"].(map[string]interface{})
		if agg["total_spend"] != "3600" {
			t.Errorf("expected total_spend 3600, got %v", agg["total_spend"])
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewAnalyticsHandler(&mockAnalyticsService{}, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/analytics?from=last-week", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("maps invalid date range", func(t *testing.T) {
		svc := &mockAnalyticsService{
			analyzeUserFn: func(_ context.Context, _ string, _ services.AnalyticsQuery) (*analytics.Report, error) {
				return nil, apperrors.ErrInvalidDateRange
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/analytics?from=2024-03-01&to=2024-01-01", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_DATE_RANGE")
	})
}

func TestAnalyticsHandler_GetAccountAnalytics(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		var gotAccount string
		svc := &mockAnalyticsService{
			analyzeAccountFn: func(_ context.Context, _, accountID string, _ services.AnalyticsQuery) (*analytics.Report, error) {
				gotAccount = accountID
				return &analytics.Report{}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewAnalyticsHandler(svc, audit)
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID+"/analytics", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotAccount != testAccountID {
			t.Errorf("expected account %s, got %s", testAccountID, gotAccount)
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testAccountID {
			t.Errorf("expected audit entry for account, got %+v", audit.entries)
		}
	})

	t.Run("returns 404 for foreign account", func(t *testing.T) {
		svc := &mockAnalyticsService{
			analyzeAccountFn: func(_ context.Context, _, _ string, _ services.AnalyticsQuery) (*analytics.Report, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID+"/analytics", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 422 on malformed stored transaction", func(t *testing.T) {
		svc := &mockAnalyticsService{
			analyzeAccountFn: func(_ context.Context, _, _ string, _ services.AnalyticsQuery) (*analytics.Report, error) {
				return nil, &analytics.ValidationError{TransactionID: "tx-9", Field: "date", Reason: "is not a date"}
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID+"/analytics", "")

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSACTION")
	})
}

func TestAnalyticsHandler_GetPerAccountAnalytics(t *testing.T) {
	t.Run("returns reports", func(t *testing.T) {
		svc := &mockAnalyticsService{
			analyzeAccountsFn: func(_ context.Context, _ string, _ services.AnalyticsQuery) ([]services.AccountReport, error) {
				return []services.AccountReport{
					{AccountID: testAccountID, AccountName: "Checking", Report: &analytics.Report{}},
				}, nil
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/analytics/accounts", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		accounts := parseJSON(t, rec)["accounts"].([]interface{})
		if len(accounts) != 1 {
			t.Errorf("expected 1 report, got %d", len(accounts))
		}
	})

	t.Run("empty list is an array", func(t *testing.T) {
		handler := NewAnalyticsHandler(&mockAnalyticsService{}, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "GET", "/analytics/accounts", "")

		if !strings.Contains(rec.Body.String(), `"accounts":[]`) {
			t.Errorf("expected empty accounts array, got %s", rec.Body.String())
		}
	})
}

func TestAnalyticsHandler_AnalyzeBatch(t *testing.T) {
	t.Run("analyzes the rent scenario", func(t *testing.T) {
		handler := NewAnalyticsHandler(&mockAnalyticsService{}, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		body := `{"transactions":[
			{"id":"1","amount":-1200,"date":"2024-01-01","description":"Rent","categories":["Home"]},
			{"id":"2","amount":"-1200.00","date":"2024-02-01","description":"Rent","categories":["Home"]},
			{"id":"3","amount":"-1200","date":"2024-03-01","description":"Rent","categories":["Home"]},
			{"id":"4","amount":3000,"date":"2024-01-15","description":"Payroll","categories":["Income"]}
		]}`
		rec := doRequest(r, "POST", "/analytics/batch", body)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		report := parseJSON(t, rec)["report"].(map[string]interface{})
		agg := report["aggregate"].(map[string]interface{})
		if agg["net_amount"] != "-600" {
			t.Errorf("expected net -600, got %v", agg["net_amount"])
		}
		recurring := report["recurring"].([]interface{})
		if len(recurring) != 1 {
			t.Fatalf("expected 1 recurring payment, got %d", len(recurring))
		}
		if recurring[0].(map[string]interface{})["frequency"] != "monthly" {
			t.Errorf("expected monthly rent, got %v", recurring[0])
		}
	})

	t.Run("forwards include_pending", func(t *testing.T) {
		var got *bool
		svc := &mockAnalyticsService{
			analyzeBatchFn: func(_ []analytics.Transaction, includePending *bool) (*analytics.Report, error) {
				got = includePending
				return &analytics.Report{}, nil
			},
		}
		handler := NewAnalyticsHandler(svc, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "POST", "/analytics/batch", `{"transactions":[],"include_pending":false}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || *got {
			t.Errorf("expected include_pending=false to be forwarded, got %v", got)
		}
	})

	t.Run("returns 422 naming the bad transaction", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"bad_amount", `{"transactions":[{"id":"t-1","amount":"twelve","date":"2024-01-01"}]}`},
			{"bad_date", `{"transactions":[{"id":"t-1","amount":"-1","date":"2024/01/01"}]}`},
			{"duplicate_id", `{"transactions":[{"id":"t-1","amount":"-1","date":"2024-01-01"},{"id":"t-1","amount":"-2","date":"2024-01-02"}]}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler := NewAnalyticsHandler(&mockAnalyticsService{
					analyzeBatchFn: func(txns []analytics.Transaction, _ *bool) (*analytics.Report, error) {
						report, err := analytics.Analyze(txns, analytics.DefaultOptions())
						return report, apperrors.FromValidation(err)
					},
				}, &mockAuditService{})
				r := setupAnalyticsRouter(handler)

				rec := doRequest(r, "POST", "/analytics/batch", tt.body)

				if rec.Code != http.StatusUnprocessableEntity {
					t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
				}
				result := parseJSON(t, rec)
				assertErrorCode(t, result, "INVALID_TRANSACTION")
				msg := result["error"].(map[string]interface{})["message"].(string)
				if !strings.Contains(msg, "t-1") {
					t.Errorf("expected message to name t-1, got %q", msg)
				}
			})
		}
	})

	t.Run("returns 400 without transactions", func(t *testing.T) {
		handler := NewAnalyticsHandler(&mockAnalyticsService{}, &mockAuditService{})
		r := setupAnalyticsRouter(handler)

		rec := doRequest(r, "POST", "/analytics/batch", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
