// Package pipelineclient provides an HTTP client for the finsight pipeline API.
package pipelineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LinkedAccount is an account finsight already tracks.
type LinkedAccount struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ProviderAccountID string     `json:"provider_account_id"`
	Currency          string     `json:"currency"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
}

// AccountEntry is provider account metadata pushed to finsight.
type AccountEntry struct {
	UserID            string `json:"user_id"`
	ProviderAccountID string `json:"provider_account_id"`
	Name              string `json:"name"`
	Institution       string `json:"institution,omitempty"`
	Type              string `json:"type,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Mask              string `json:"mask,omitempty"`
}

// TransactionEntry is one provider transaction pushed to finsight. Amount is
// a decimal string with inflows positive.
type TransactionEntry struct {
	ID                   string   `json:"id"`
	PendingTransactionID string   `json:"pending_transaction_id,omitempty"`
	Amount               string   `json:"amount"`
	Date                 string   `json:"date"`
	Description          string   `json:"description"`
	MerchantName         string   `json:"merchant_name,omitempty"`
	Categories           []string `json:"categories"`
	Pending              bool     `json:"pending"`
	Currency             string   `json:"currency,omitempty"`
}

// ImportResult summarizes an import call.
type ImportResult struct {
	AccountID       string `json:"account_id"`
	Received        int    `json:"received"`
	Upserted        int    `json:"upserted"`
	PendingResolved int    `json:"pending_resolved"`
}

// Client communicates with the finsight pipeline API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new pipeline API client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ListAccounts fetches every linked account.
func (c *Client) ListAccounts(ctx context.Context) ([]LinkedAccount, error) {
	var result struct {
		Accounts []LinkedAccount `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/pipeline/accounts", nil, &result, "listing accounts"); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// UpsertAccounts refreshes account metadata and returns how many were created.
func (c *Client) UpsertAccounts(ctx context.Context, accounts []AccountEntry) (int, error) {
	body := struct {
		Accounts []AccountEntry `json:"accounts"`
	}{Accounts: accounts}

	var result struct {
		Created int `json:"created"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/accounts", body, &result, "upserting accounts"); err != nil {
		return 0, err
	}
	return result.Created, nil
}

// ImportTransactions submits a transaction batch for one account.
func (c *Client) ImportTransactions(ctx context.Context, accountID string, txns []TransactionEntry) (*ImportResult, error) {
	body := struct {
		AccountID    string             `json:"account_id"`
		Transactions []TransactionEntry `json:"transactions"`
	}{AccountID: accountID, Transactions: txns}

	var result ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/transactions", body, &result, "importing transactions"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, action string) error {
	var reader io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", action, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Action: action, StatusCode: resp.StatusCode, Code: errorCode(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", action, err)
	}
	return nil
}

// StatusError is a non-200 answer from the pipeline API.
type StatusError struct {
	Action     string
	StatusCode int
	Code       string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: unexpected status %d (%s)", e.Action, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Action, e.StatusCode)
}

func errorCode(body io.Reader) string {
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error.Code
}
