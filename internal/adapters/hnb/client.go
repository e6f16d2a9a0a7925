// Package hnb fetches daily exchange rate lists from the Croatian National Bank API.
package hnb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
)

const (
	// DefaultBaseURL is the euro rate list endpoint.
	DefaultBaseURL = "https://api.hnb.hr/tecajn-eur/v3"
	// DefaultTimeout bounds every upstream request.
	DefaultTimeout = 15 * time.Second

	paramDate     = "datum-primjene"
	paramDateFrom = "datum-primjene-od"
	paramDateTo   = "datum-primjene-do"
)

// wireRate is one element of the upstream JSON array.
type wireRate struct {
	BatchNumber    string `json:"broj_tecajnice"`
	ApplicableDate string `json:"datum_primjene"`
	Country        string `json:"drzava"`
	CountryISO     string `json:"drzava_iso"`
	BuyRate        string `json:"kupovni_tecaj"`
	SellRate       string `json:"prodajni_tecaj"`
	CurrencyCode   string `json:"sifra_valute"`
	MiddleRate     string `json:"srednji_tecaj"`
	CurrencyName   string `json:"valuta"`
}

func (w wireRate) toDomain() domain.UpstreamRate {
	return domain.UpstreamRate{
		BatchNumber:    w.BatchNumber,
		ApplicableDate: w.ApplicableDate,
		Country:        w.Country,
		CountryISO:     w.CountryISO,
		BuyRate:        w.BuyRate,
		SellRate:       w.SellRate,
		CurrencyCode:   w.CurrencyCode,
		MiddleRate:     w.MiddleRate,
		CurrencyName:   w.CurrencyName,
	}
}

// StatusError is returned for non-2xx upstream responses. It matches apperrors.ErrNetwork.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hnb api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return apperrors.ErrNetwork
}

// Client provides access to the rate list API. It performs no retries; the next
// scheduled cycle is the retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new rate list client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client. A client without a timeout gets DefaultTimeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		bounded := *hc
		if bounded.Timeout <= 0 {
			bounded.Timeout = DefaultTimeout
		}
		c.httpClient = &bounded
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// FetchDay returns the rate list applicable on day.
func (c *Client) FetchDay(ctx context.Context, day civil.Date) ([]domain.UpstreamRate, error) {
	query := url.Values{}
	query.Set(paramDate, normalize.FormatDate(day, normalize.UpstreamDateLayout))
	return c.fetch(ctx, query)
}

// FetchRange returns every rate list applicable between from and to, inclusive, in one request.
func (c *Client) FetchRange(ctx context.Context, from, to civil.Date) ([]domain.UpstreamRate, error) {
	query := url.Values{}
	query.Set(paramDateFrom, normalize.FormatDate(from, normalize.UpstreamDateLayout))
	query.Set(paramDateTo, normalize.FormatDate(to, normalize.UpstreamDateLayout))
	return c.fetch(ctx, query)
}

func (c *Client) fetch(ctx context.Context, query url.Values) ([]domain.UpstreamRate, error) {
	body, err := c.doRequest(ctx, query)
	if err != nil {
		return nil, err
	}

	var wire []wireRate
	if err := json.Unmarshal(bytes.TrimSpace(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDecode, err)
	}

	rates := make([]domain.UpstreamRate, len(wire))
	for i, w := range wire {
		rates[i] = w.toDomain()
	}

	c.logger.Debug("Fetched rate list", slog.String("query", query.Encode()), slog.Int("records", len(rates)))
	return rates, nil
}

func (c *Client) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	fullURL := c.baseURL
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", apperrors.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
