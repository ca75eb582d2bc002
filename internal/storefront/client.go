package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Resource paths relative to the API prefix.
const (
	PathDashboardMetrics = "dashboard/metrics"
	PathPendingOrders    = "orders/pending"
	PathDiscoverProducts = "products/discover"
	PathAddProduct       = "products/add"
	PathCampaigns        = "ads/campaigns"
	PathCreateCampaign   = "ads/create"
	PathMessages         = "customer/messages"
)

// Fetcher is the read/write boundary used by the stores and the dispatcher.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values, dest any) error
	Mutate(ctx context.Context, path string, payload any) (Ack, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the storefront HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
}

const (
	defaultAPIURL         = "127.0.0.1:8000"
	defaultUserAgent      = "shopdeck/0.1"
	defaultRequestTimeout = 10 * time.Second
	apiPrefix             = "/api/v1/"
	maxErrorBody          = 4096
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the API at apiURL (host:port or full URL).
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		timeout:   defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Fetch issues a GET for path and decodes the JSON body into dest.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values, dest any) error {
	if c == nil {
		return &Error{Kind: KindNetwork, Op: "fetch", Path: path, Err: errors.New("client is nil")}
	}
	rel, err := relativeURL("fetch", path)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		rel.RawQuery = params.Encode()
	}
	_, err = c.do(ctx, "fetch", http.MethodGet, rel, nil, dest)
	return err
}

// Mutate POSTs payload as JSON to path and returns the acknowledgment.
func (c *Client) Mutate(ctx context.Context, path string, payload any) (Ack, error) {
	if c == nil {
		return Ack{}, &Error{Kind: KindNetwork, Op: "mutate", Path: path, Err: errors.New("client is nil")}
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Ack{}, &Error{Kind: KindRejected, Op: "mutate", Path: path, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}
	rel, err := relativeURL("mutate", path)
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	raw, err := c.do(ctx, "mutate", http.MethodPost, rel, body, &ack)
	if err != nil {
		return Ack{}, err
	}
	ack.Body = raw
	return ack, nil
}

// FetchDashboard retrieves aggregated sales, profit and ad metrics.
func (c *Client) FetchDashboard(ctx context.Context) (DashboardMetrics, error) {
	var payload DashboardMetrics
	if err := c.Fetch(ctx, PathDashboardMetrics, nil, &payload); err != nil {
		return DashboardMetrics{}, err
	}
	return payload, nil
}

// FetchPendingOrders retrieves orders awaiting fulfillment.
func (c *Client) FetchPendingOrders(ctx context.Context) ([]Order, error) {
	var payload []Order
	if err := c.Fetch(ctx, PathPendingOrders, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DiscoverProducts retrieves up to limit candidate products.
func (c *Client) DiscoverProducts(ctx context.Context, limit int) ([]Product, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	var payload []Product
	if err := c.Fetch(ctx, PathDiscoverProducts, params, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchCampaigns retrieves all ad campaigns.
func (c *Client) FetchCampaigns(ctx context.Context) ([]Campaign, error) {
	var payload []Campaign
	if err := c.Fetch(ctx, PathCampaigns, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchMessages retrieves customer messages filtered by answered state.
func (c *Client) FetchMessages(ctx context.Context, answered bool) ([]CustomerMessage, error) {
	params := url.Values{"answered": []string{strconv.FormatBool(answered)}}
	var payload []CustomerMessage
	if err := c.Fetch(ctx, PathMessages, params, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FulfillOrderPath returns the mutate path that fulfills order id.
func FulfillOrderPath(id string) string {
	return "orders/" + url.PathEscape(id) + "/fulfill"
}

// RespondPath returns the mutate path that auto-responds to message id.
func RespondPath(id string) string {
	return PathMessages + "/" + url.PathEscape(id) + "/respond"
}

func relativeURL(op, path string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &Error{Kind: KindRejected, Op: op, Path: path, Err: fmt.Errorf("parse path: %w", err)}
	}
	return rel, nil
}

func (c *Client) do(ctx context.Context, op, method string, rel *url.URL, body io.Reader, dest any) (json.RawMessage, error) {
	path := rel.EscapedPath()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Path: path, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(op, path, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Kind:   statusKind(resp.StatusCode),
			Op:     op,
			Path:   path,
			Status: resp.StatusCode,
			Detail: errorDetail(snippet),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(op, path, fmt.Errorf("read response: %w", err))
	}
	if dest == nil || (len(bytes.TrimSpace(raw)) == 0 && method != http.MethodGet) {
		return raw, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return raw, nil
}

// errorDetail extracts the FastAPI-style {"detail": "..."} message when present.
func errorDetail(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		encoded, _ := json.Marshal(payload.Detail)
		return string(encoded)
	}
	text := strings.TrimSpace(string(trimmed))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = apiPrefix
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
