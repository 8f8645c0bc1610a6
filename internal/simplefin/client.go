// Package simplefin fetches transactions from a SimpleFIN Bridge access URL.
package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

const (
	dateLayout     = "2006-01-02"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// Client implements service.TransactionFetcher for SimpleFIN.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	flows      *classification.FlowDetector
	retryOpts  service.RetryOptions
	accessURL  string
}

// NewClient loads the saved access URL from store, claiming token on first
// use.
func NewClient(ctx context.Context, store *AuthStore, token string) (*Client, error) {
	auth, err := store.LoadOrClaim(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load or claim auth: %w", err)
	}
	return NewClientWithAccessURL(auth.AccessURL, nil)
}

// NewClientWithAccessURL creates a client for an already claimed access URL.
func NewClientWithAccessURL(accessURL string, httpClient *http.Client) (*Client, error) {
	if !isHTTPURL(accessURL) {
		return nil, fmt.Errorf("%w: simplefin access URL must be http(s)", common.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		accessURL:  strings.TrimRight(accessURL, "/"),
		httpClient: httpClient,
		logger:     slog.Default().With("component", "simplefin"),
		flows:      classification.NewDefaultFlowDetector(),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchBatch fetches posted transactions in [start, end] from every account.
// Negative amounts are expenses and positive amounts income.
func (c *Client) FetchBatch(ctx context.Context, start, end time.Time) (service.Batch, error) {
	if start.After(end) {
		return service.Batch{}, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidInput)
	}

	c.logger.Info("Fetching transactions from SimpleFIN",
		"start_date", start.Format(dateLayout),
		"end_date", end.Format(dateLayout))

	var set accountSet
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		set, fetchErr = c.fetchAccounts(ctx, start, end)
		return fetchErr
	}, c.retryOpts)
	if err != nil {
		return service.Batch{}, err
	}

	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFIN reported an error", "message", msg)
	}

	batch, err := c.convert(set, start, end)
	if err != nil {
		return service.Batch{}, err
	}

	c.logger.Info("Fetched all transactions",
		"accounts", len(set.Accounts),
		"expenses", len(batch.Expenses),
		"income", len(batch.Income),
		"transfers", batch.Transfers)

	return batch, nil
}

func (c *Client) fetchAccounts(ctx context.Context, start, end time.Time) (accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return accountSet{}, common.Terminal(fmt.Errorf("failed to parse URL: %w", err))
	}

	q := u.Query()
	q.Set("start-date", strconv.FormatInt(start.Unix(), 10))
	// end-date is exclusive.
	q.Set("end-date", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return accountSet{}, common.Terminal(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return accountSet{}, common.Terminal(ctx.Err())
		}
		return accountSet{}, fmt.Errorf("%w: %w", common.ErrSimpleFINConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return accountSet{}, statusError(resp)
	}

	var set accountSet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&set); err != nil {
		return accountSet{}, common.Terminal(fmt.Errorf("failed to decode response: %w", err))
	}
	return set, nil
}

// statusError retries throttling and server errors only.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrRateLimit, msg)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return common.Terminal(fmt.Errorf("%w: access revoked or invalid (%d)", common.ErrSimpleFINAuth, resp.StatusCode))
	case resp.StatusCode >= http.StatusInternalServerError:
		return common.Transient(fmt.Errorf("%w: %d - %s", common.ErrSimpleFINConnection, resp.StatusCode, msg))
	default:
		return common.Terminal(fmt.Errorf("%w: %d - %s", common.ErrSimpleFINConnection, resp.StatusCode, msg))
	}
}

func (c *Client) convert(set accountSet, start, end time.Time) (service.Batch, error) {
	var batch service.Batch
	first := startOfDay(start)
	last := startOfDay(end).AddDate(0, 0, 1)

	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			posted := time.Unix(tx.Posted, 0).In(start.Location())
			if posted.Before(first) || !posted.Before(last) {
				continue
			}

			amount, err := parseAmount(tx.Amount)
			if err != nil {
				return service.Batch{}, fmt.Errorf("failed to parse amount %q of %s: %w", tx.Amount, tx.ID, err)
			}
			if amount.IsZero() {
				continue
			}
			if c.flows.IsTransfer(tx.Description) || c.flows.IsTransfer(tx.Payee) {
				batch.Transfers++
				continue
			}

			name := normalizeMerchant(tx.Payee)
			if name == "" {
				name = normalizeMerchant(tx.Description)
			}
			date := posted.Format(dateLayout)
			value := amount.Abs().InexactFloat64()

			if amount.IsPositive() {
				batch.Income = append(batch.Income, model.IncomeRecord{
					ID:     acct.ID + ":" + tx.ID,
					Source: name,
					Amount: value,
					Date:   date,
					Month:  model.MonthFromTime(posted),
					Year:   posted.Year(),
				})
				continue
			}

			batch.Expenses = append(batch.Expenses, model.Transaction{
				ID:          acct.ID + ":" + tx.ID,
				Description: name,
				Amount:      value,
				Date:        date,
				Month:       model.MonthFromTime(posted),
				Year:        posted.Year(),
				Source:      "simplefin:" + acct.ID,
			})
		}
	}

	return batch, nil
}

// parseAmount reads a SimpleFIN decimal string such as "-45.20".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}

var merchantSuffixes = []string{" LLC", " INC", " CORP", " LTD", " LDA", " SA", " UNIPESSOAL"}

// normalizeMerchant trims legal suffixes and title-cases the name.
func normalizeMerchant(raw string) string {
	merchant := strings.Join(strings.Fields(raw), " ")
	for _, suffix := range merchantSuffixes {
		n := len(merchant) - len(suffix)
		if n > 0 && strings.EqualFold(merchant[n:], suffix) {
			merchant = merchant[:n]
		}
	}
	return cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(merchant)))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var _ service.TransactionFetcher = (*Client)(nil)
