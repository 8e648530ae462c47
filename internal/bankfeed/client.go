// Package bankfeed is a read-only client for a Plaid-style bank data
// aggregator. It lists the accounts visible to the configured credentials
// and pages through their transactions.
package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"finsight/internal/analytics"
	apperrors "finsight/internal/errors"
)

const (
	// DefaultPageSize is the provider maximum for /transactions/get.
	DefaultPageSize = 500

	// maxHistory is how far back an open-ended window reaches.
	maxHistory = 730 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	ClientID string
	// Secret is never logged.
	Secret string

	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	PageSize     int

	Logger *zap.SugaredLogger
}

// Client talks to the aggregator over HTTP with retries on transient failures.
type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	clientID string
	secret   string
	pageSize int
	log      *zap.SugaredLogger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ClientID == "" || cfg.Secret == "" {
		return nil, errors.New("bankfeed: base URL, client id and secret are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = leveledLogger{cfg.Logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.RetryMax > 0 {
		rc.RetryMax = cfg.RetryMax
	}
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}

	return &Client{
		http:     rc,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		pageSize: cfg.PageSize,
		log:      cfg.Logger,
	}, nil
}

// GetAccounts returns every account visible to the client credentials.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var resp accountsResponse
	if err := c.post(ctx, "/accounts/get", map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// GetTransactions pages through the transactions of one account booked
// between start and end inclusive.
func (c *Client) GetTransactions(ctx context.Context, accountID string, start, end time.Time) ([]Transaction, error) {
	var all []Transaction
	offset := 0
	for {
		body := map[string]interface{}{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"options": map[string]interface{}{
				"account_ids": []string{accountID},
				"count":       c.pageSize,
				"offset":      offset,
			},
		}

		var page transactionsResponse
		if err := c.post(ctx, "/transactions/get", body, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Transactions...)
		offset += len(page.Transactions)

		if len(page.Transactions) == 0 || offset >= page.TotalTransactions {
			break
		}
	}

	c.log.Debugw("fetched transactions", "account_id", accountID, "count", len(all))
	return all, nil
}

// FetchTransactions returns one account's transactions in window as an
// analytics batch, so the provider can be analyzed without storing anything.
// An open To means today and an open From reaches back two years.
func (c *Client) FetchTransactions(ctx context.Context, accountID string, window analytics.DateRange) ([]analytics.Transaction, error) {
	if !window.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}
	end := window.To
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := window.From
	if start.IsZero() {
		start = end.Add(-maxHistory)
	}

	txns, err := c.GetTransactions(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.Transaction, len(txns))
	for i := range txns {
		out[i] = txns[i].ToAnalytics()
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", path, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Once retries are exhausted the last response is returned alongside the
	// retry policy error.
	resp, err := c.http.Do(req)
	if resp == nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.Wrap(apperrors.ErrProviderUnavailable, fmt.Errorf("%s: %w", path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrap(apperrors.ErrProviderUnavailable, parseError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrProviderUnavailable, fmt.Errorf("decoding %s response: %w", path, err))
	}
	return nil
}

func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.ErrorType != "" {
		apiErr.ErrorType = body.ErrorType
		apiErr.ErrorCode = body.ErrorCode
		apiErr.Message = body.ErrorMessage
		apiErr.RequestID = body.RequestID
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// leveledLogger routes retryablehttp logs through zap.
type leveledLogger struct {
	l *zap.SugaredLogger
}

func (z leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	z.l.Errorw(msg, keysAndValues...)
}

func (z leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Infow(msg, keysAndValues...)
}

func (z leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.l.Debugw(msg, keysAndValues...)
}

func (z leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.l.Warnw(msg, keysAndValues...)
}
