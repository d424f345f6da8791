package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwygoda/shopsearch/internal/domain"
)

const maxErrorBody = 64 << 10

// Client implements domain.SearchBackend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// New creates a backend client for baseURL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log.With().Str("component", "backend").Logger(),
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type startRequest struct {
	Query      string          `json:"query"`
	MaxResults int             `json:"max_results,omitempty"`
	Filters    *domain.Filters `json:"filters,omitempty"`
}

type startResponse struct {
	QueryID string `json:"query_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusResponse struct {
	QueryID           string          `json:"query_id"`
	Status            string          `json:"status"`
	CurrentStage      string          `json:"current_stage"`
	Progress          json.RawMessage `json:"progress"`
	EstimatedTime     json.RawMessage `json:"estimated_time"`
	ErrorMessage      string          `json:"error_message"`
	ScrapingSessionID string          `json:"scraping_session_id"`
}

// intField decodes an optional integer field. Anything else, including
// fractions and numeric strings, reads as absent.
func intField(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

type legacyRequest struct {
	Prompt      string `json:"prompt"`
	NumProducts int    `json:"num_products"`
}

type legacyProduct struct {
	ProductName       string         `json:"product_name"`
	CurrentPrice      string         `json:"current_price"`
	ImageURL          string         `json:"image_url"`
	ProductURL        string         `json:"product_url"`
	KeySpecifications map[string]any `json:"key_specifications"`
}

type legacyResponse struct {
	Results []legacyProduct `json:"results"`
}

// StartSearch submits a search and returns the backend job handle.
func (c *Client) StartSearch(ctx context.Context, req domain.SearchRequest, creds domain.Credentials) (domain.JobHandle, error) {
	body := startRequest{Query: req.Query, MaxResults: req.MaxResults}
	if !req.Filters.IsZero() {
		body.Filters = req.Filters
	}

	var resp startResponse
	if err := c.do(ctx, http.MethodPost, "/api/search", body, creds, &resp, nil); err != nil {
		return domain.JobHandle{}, err
	}
	if resp.QueryID == "" {
		return domain.JobHandle{}, fmt.Errorf("start search: response has no query_id")
	}

	c.log.Info().Str("job_id", resp.QueryID).Str("query", req.Query).Msg("search initiated")
	return domain.JobHandle{ID: resp.QueryID}, nil
}

// Status fetches the current status of a job.
func (c *Client) Status(ctx context.Context, jobID string, creds domain.Credentials) (domain.StatusReport, error) {
	var resp statusResponse
	path := "/api/search/" + url.PathEscape(jobID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, nil, creds, &resp, nil); err != nil {
		return domain.StatusReport{}, err
	}

	return domain.StatusReport{
		Status:            domain.ParseStatus(resp.Status),
		Stage:             resp.CurrentStage,
		Progress:          intField(resp.Progress),
		ErrorMessage:      resp.ErrorMessage,
		EstimatedTime:     intField(resp.EstimatedTime),
		ScrapingSessionID: resp.ScrapingSessionID,
	}, nil
}

// Results fetches the result payload of a completed job.
func (c *Client) Results(ctx context.Context, jobID string, creds domain.Credentials) (*domain.ResultSet, error) {
	var rs domain.ResultSet
	var raw []byte
	path := "/api/search/" + url.PathEscape(jobID) + "/results"
	if err := c.do(ctx, http.MethodGet, path, nil, creds, &rs, &raw); err != nil {
		return nil, err
	}
	rs.Raw = raw
	if rs.QueryID == "" {
		rs.QueryID = jobID
	}
	return &rs, nil
}

// LegacySearch runs a synchronous search against the legacy endpoint
// and converts its products into the current result format.
func (c *Client) LegacySearch(ctx context.Context, prompt string, numProducts int, creds domain.Credentials) (*domain.ResultSet, error) {
	var resp legacyResponse
	var raw []byte
	body := legacyRequest{Prompt: prompt, NumProducts: numProducts}
	if err := c.do(ctx, http.MethodPost, "/api/search/legacy", body, creds, &resp, &raw); err != nil {
		return nil, err
	}

	rs := &domain.ResultSet{
		QueryID:         "legacy",
		Results:         make([]domain.Product, 0, len(resp.Results)),
		SearchTimestamp: time.Now().UTC().Format(time.RFC3339),
		Raw:             raw,
	}
	for _, p := range resp.Results {
		rs.Results = append(rs.Results, domain.Product{
			Name:           p.ProductName,
			Price:          p.CurrentPrice,
			ImageURL:       p.ImageURL,
			SourceURL:      p.ProductURL,
			Specifications: p.KeySpecifications,
		})
	}
	rs.TotalFound = len(rs.Results)
	return rs, nil
}

// do performs one request and decodes a 2xx JSON body into out.
// Non-2xx answers become *domain.ResponseError. If raw is non-nil it receives the body.
func (c *Client) do(ctx context.Context, method, path string, in any, creds domain.Credentials, out any, raw *[]byte) error {
	start := time.Now()
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	c.log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Bool("demo", creds.Demo).
		Msg("executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", endpoint).Dur("duration", time.Since(start)).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Debug().
			Int("status", resp.StatusCode).
			Str("url", endpoint).
			Dur("duration", time.Since(start)).
			Msg("backend returned error status")
		return &domain.ResponseError{StatusCode: resp.StatusCode, Detail: errorDetail(b)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if raw != nil {
		*raw = b
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("url", endpoint).
		Int("bytes", len(b)).
		Dur("duration", time.Since(start)).
		Msg("request completed")
	return nil
}

// errorDetail extracts the "detail" message of an error body.
// The detail may be a string or a list of validation objects with a "msg" field.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
