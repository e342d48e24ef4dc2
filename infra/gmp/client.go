// Package gmp fetches hourly meter data from the Green Mountain Power usage
// API.
package gmp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sunledger/sunledger/core/model"
	"github.com/sunledger/sunledger/infra/logger"
)

const defaultBaseURL = "https://api.greenmountainpower.com/api/v2/usage"

// maxWindow is the largest date range the API answers reliably for hourly
// data; longer requests are chunked.
const maxWindow = 31 * 24 * time.Hour

// Config holds API credentials and endpoint settings.
type Config struct {
	BaseURL        string `json:"base_url"`
	Account        string `json:"account"`
	KeyID          string `json:"key_id"`
	KeySecret      string `json:"key_secret"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies endpoint defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks that credentials are present.
func (c Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("gmp account is required")
	}
	if c.KeyID == "" || c.KeySecret == "" {
		return fmt.Errorf("gmp api key id and secret are required")
	}
	return nil
}

// Client queries the usage API with basic-auth credentials and retries
// transient failures with exponential backoff.
type Client struct {
	cfg    Config
	auth   string
	client *http.Client
	log    logger.Logger
}

// New builds a client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := base64.StdEncoding.EncodeToString([]byte(cfg.KeyID + ":" + cfg.KeySecret))
	return &Client{
		cfg:    cfg,
		auth:   "Basic " + key,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    logger.New("gmp-client"),
	}, nil
}

// usageResponse is the versioned shape of the API's hourly usage answer.
// Optional readings are pointers: the meter omits values for hours it could
// not record.
type usageResponse struct {
	AccountNumber string `json:"accountNumber"`
	Intervals     []struct {
		Values []usageValue `json:"values"`
	} `json:"intervals"`
}

type usageValue struct {
	Date        time.Time `json:"date"`
	Generation  *float64  `json:"generation"`
	Consumed    *float64  `json:"consumed"`
	ReturnedKWh *float64  `json:"returnedKwh"`
}

// Fetch retrieves hourly observations for [from, to], chunking the range to
// stay inside the API's window limit. Timestamps are normalized to UTC.
func (c *Client) Fetch(ctx context.Context, from, to time.Time) ([]model.Observation, error) {
	if !from.Before(to) {
		return nil, &model.InputDataError{Reason: fmt.Sprintf("fetch range inverted: %s .. %s", from, to)}
	}
	var all []model.Observation
	for start := from; start.Before(to); start = start.Add(maxWindow) {
		end := start.Add(maxWindow)
		if end.After(to) {
			end = to
		}
		obs, err := c.fetchWindow(ctx, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, obs...)
	}
	c.log.Infof("fetched %d hourly readings for %s .. %s", len(all),
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	return all, nil
}

func (c *Client) fetchWindow(ctx context.Context, from, to time.Time) ([]model.Observation, error) {
	u := fmt.Sprintf("%s/%s/hourly?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.Account),
		url.Values{
			"startDate": {from.UTC().Format(time.RFC3339)},
			"endDate":   {to.UTC().Format(time.RFC3339)},
		}.Encode())

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", c.auth)
		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch usage: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch usage: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch usage: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	var data usageResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &model.InputDataError{Reason: fmt.Sprintf("unmarshal usage response: %v", err)}
	}
	return c.convert(data)
}

func (c *Client) convert(data usageResponse) ([]model.Observation, error) {
	if data.AccountNumber == "" {
		return nil, &model.InputDataError{Reason: "usage response missing accountNumber"}
	}
	if len(data.Intervals) == 0 {
		return nil, &model.NoDataError{What: "usage intervals for account " + c.cfg.Account}
	}
	var obs []model.Observation
	for _, iv := range data.Intervals {
		for _, v := range iv.Values {
			if v.Date.IsZero() {
				return nil, &model.InputDataError{Reason: "usage value without date"}
			}
			obs = append(obs, model.Observation{
				Timestamp:      v.Date.UTC(),
				GenerationKWh:  v.Generation,
				ConsumptionKWh: v.Consumed,
			})
		}
	}
	return obs, nil
}
