// Package api is the HTTP client for the finance REST API. Every call goes
// through Client.Do, which attaches the persisted bearer token and recovers
// once from a 401 by refreshing the token pair.
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/metrics"
	"github.com/jrsteele09/go-finance-client/token"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL          string
	httpClient       *http.Client
	tokens           *token.Manager
	onSessionExpired func(error)
	coalesceRefresh  bool
	refreshGroup     singleflight.Group
	metrics          *metrics.Client

	Auth         *AuthService
	Transactions *TransactionsService
	Dashboard    *DashboardService
	Upload       *UploadService
	Reports      *ReportsService
	Users        *UsersService
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHandler sets the login boundary: fn runs after a
// refresh was rejected by the server and the persisted tokens were cleared.
func WithSessionExpiredHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// WithRefreshCoalescing makes concurrent 401s share one refresh call
// instead of each issuing their own.
func WithRefreshCoalescing(enabled bool) ClientOption {
	return func(c *Client) {
		c.coalesceRefresh = enabled
	}
}

func WithMetrics(m *metrics.Client) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api". Tokens are read from and written to tokens.
func New(baseURL string, tokens *token.Manager, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[api New] invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[api New] base URL must be http or https, got %q", baseURL)
	}
	if tokens == nil {
		return nil, fmt.Errorf("[api New] token manager is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		tokens:  tokens,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	c.Auth = &AuthService{client: c}
	c.Transactions = &TransactionsService{client: c}
	c.Dashboard = &DashboardService{client: c}
	c.Upload = &UploadService{client: c}
	c.Reports = &ReportsService{client: c}
	c.Users = &UsersService{client: c}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

func (c *Client) Metrics() *metrics.Client {
	return c.metrics
}
