package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupPipelineRouter mounts a pipeline group guarded by apiKey and counts
// how often its handlers run.
func setupPipelineRouter(apiKey string, reached *int) *gin.Engine {
	r := gin.New()
	pipeline := r.Group("/pipeline")
	pipeline.Use(PipelineAuthMiddleware(apiKey))
	handler := func(c *gin.Context) {
		*reached++
		c.JSON(http.StatusOK, gin.H{"accounts": []string{}})
	}
	pipeline.GET("/accounts", handler)
	pipeline.POST("/transactions", handler)
	return r
}

func doPipelineRequest(r *gin.Engine, method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return body.Error.Code
}

func TestPipelineAuthMiddleware(t *testing.T) {
	const key = "pipeline-key-0190a6f1"

	tests := []struct {
		name          string
		configuredKey string
		method        string
		path          string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{"list_with_valid_key", key, http.MethodGet, "/pipeline/accounts", key, http.StatusOK, ""},
		{"import_with_valid_key", key, http.MethodPost, "/pipeline/transactions", key, http.StatusOK, ""},
		{"wrong_key", key, http.MethodGet, "/pipeline/accounts", "sync-worker", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"missing_key", key, http.MethodPost, "/pipeline/transactions", "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"prefix_of_key", key, http.MethodGet, "/pipeline/accounts", key[:8], http.StatusUnauthorized, "INVALID_API_KEY"},
		{"key_with_suffix", key, http.MethodGet, "/pipeline/accounts", key + "x", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"not_configured", "", http.MethodGet, "/pipeline/accounts", key, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
		{"not_configured_no_key", "", http.MethodPost, "/pipeline/transactions", "", http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := 0
			router := setupPipelineRouter(tt.configuredKey, &reached)
			rec := doPipelineRequest(router, tt.method, tt.path, tt.requestKey)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantErrorCode == "" {
				if reached != 1 {
					t.Errorf("expected handler to run once, ran %d times", reached)
				}
				return
			}
			if reached != 0 {
				t.Error("handler must not run when the request is rejected")
			}
			if code := errorCode(t, rec); code != tt.wantErrorCode {
				t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
			}
		})
	}
}
