// Package plaid provides a client for interacting with the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

const (
	dateLayout = "2006-01-02"
	// Plaid's max page size.
	pageSize = int32(500)
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	case c.AccessToken == "":
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	case c.Environment == "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}

	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}

	return nil
}

// record is the subset of a Plaid transaction the importer needs.
type record struct {
	ID           string
	AccountID    string
	Name         string
	MerchantName string
	Date         string
	Amount       float64
}

type pageFunc func(ctx context.Context, start, end time.Time, offset int32) ([]record, int32, error)

// Client implements service.TransactionFetcher.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	flows       *classification.FlowDetector
	fetchPage   pageFunc
	retryOpts   service.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	c := &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		flows:       classification.NewDefaultFlowDetector(),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
	c.fetchPage = c.plaidPage

	return c, nil
}

// FetchBatch fetches all transactions in [start, end] and splits them into
// expenses and income. Internal transfers are counted and skipped.
func (c *Client) FetchBatch(ctx context.Context, start, end time.Time) (service.Batch, error) {
	if ctx == nil {
		return service.Batch{}, errors.New("context cannot be nil")
	}
	if start.After(end) {
		return service.Batch{}, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidInput)
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", start.Format(dateLayout),
		"end_date", end.Format(dateLayout))

	var all []record
	offset := int32(0)

	for {
		var page []record
		var total int32

		err := common.WithRetry(ctx, func() error {
			var pageErr error
			page, total, pageErr = c.fetchPage(ctx, start, end, offset)
			return pageErr
		}, c.retryOpts)
		if err != nil {
			return service.Batch{}, err
		}

		all = append(all, page...)

		c.logger.Debug("Fetched transaction page",
			"count", len(page),
			"offset", offset,
			"total", total)

		offset += int32(len(page))
		if len(page) < int(pageSize) || offset >= total {
			break
		}
	}

	batch := splitRecords(all, c.flows, c.logger)

	c.logger.Info("Fetched all transactions",
		"expenses", len(batch.Expenses),
		"income", len(batch.Income),
		"transfers", batch.Transfers)

	return batch, nil
}

// plaidPage fetches one page from the Plaid API.
func (c *Client) plaidPage(ctx context.Context, start, end time.Time, offset int32) ([]record, int32, error) {
	request := plaid.NewTransactionsGetRequest(c.accessToken, start.Format(dateLayout), end.Format(dateLayout))
	request.SetOptions(plaid.TransactionsGetRequestOptions{
		Count:  plaid.PtrInt32(pageSize),
		Offset: plaid.PtrInt32(offset),
	})

	resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, 0, c.classifyError(err)
	}

	txns := resp.GetTransactions()
	records := make([]record, 0, len(txns))
	for _, pt := range txns {
		records = append(records, record{
			ID:           pt.GetTransactionId(),
			AccountID:    pt.GetAccountId(),
			Name:         pt.GetName(),
			MerchantName: pt.GetMerchantName(),
			Date:         pt.GetDate(),
			Amount:       pt.GetAmount(),
		})
	}

	return records, resp.GetTotalTransactions(), nil
}

// classifyError maps a Plaid API error to a retryable or terminal error.
func (c *Client) classifyError(err error) error {
	if plaidError := extractPlaidError(err); plaidError != nil {
		if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
			c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
			return common.Transient(fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidError.ErrorMessage))
		}
		return common.Terminal(fmt.Errorf("%w: %s - %s", common.ErrPlaidConnection, plaidError.ErrorCode, plaidError.ErrorMessage))
	}
	return fmt.Errorf("failed to fetch transactions: %w", err)
}

// splitRecords converts Plaid records into a batch. Plaid reports money
// leaving the account as positive amounts.
func splitRecords(records []record, flows *classification.FlowDetector, logger *slog.Logger) service.Batch {
	var batch service.Batch

	for _, r := range records {
		if flows.IsTransfer(r.Name) {
			batch.Transfers++
			continue
		}
		if r.Amount == 0 {
			continue
		}

		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			logger.Warn("Skipping transaction with invalid date", "id", r.ID, "date", r.Date)
			continue
		}

		name := r.MerchantName
		if name == "" {
			name = r.Name
		}
		name = cleanMerchantName(name)

		if r.Amount < 0 {
			batch.Income = append(batch.Income, model.IncomeRecord{
				ID:     r.ID,
				Source: name,
				Amount: -r.Amount,
				Date:   r.Date,
				Month:  model.MonthFromTime(date),
				Year:   date.Year(),
			})
			continue
		}

		batch.Expenses = append(batch.Expenses, model.Transaction{
			ID:          r.ID,
			Description: name,
			Amount:      r.Amount,
			Date:        r.Date,
			Month:       model.MonthFromTime(date),
			Year:        date.Year(),
			Source:      "plaid:" + r.AccountID,
		})
	}

	return batch
}

// cleanMerchantName standardizes merchant names by removing common suffixes and normalizing format.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !unicode.IsLetter(runes[j-1]) {
				runes[j] = unicode.ToUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// A trailing long number is usually a transaction reference.
	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}

	name = strings.Join(words, " ")

	suffixes := []string{
		" Llc",
		" Inc",
		" Corp",
		" Ltd",
		" Lda",
		" Sa",
		" Unipessoal",
	}

	// Keep removing suffixes until none are found.
	changed := true
	for changed {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

// isAllDigits checks if a string contains only digits.
func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

// Ensure Client implements TransactionFetcher interface.
var _ service.TransactionFetcher = (*Client)(nil)
