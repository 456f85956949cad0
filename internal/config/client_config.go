package config

import (
	"strings"
	"time"
)

const (
	baseURLVar         = "FINANCE_API_URL"
	httpTimeoutVar     = "FINCTL_HTTP_TIMEOUT"
	coalesceRefreshVar = "FINCTL_COALESCE_REFRESH"
)

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseURL returns the API root including the /api prefix,
// e.g. "http://localhost:8000/api". Trailing slashes are removed.
func (Client) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:8000/api"), "/")
}

func (Client) GetHTTPTimeout() time.Duration {
	return GetDurationEnv(httpTimeoutVar, 30*time.Second)
}

// GetCoalesceRefresh enables sharing one in-flight token refresh between
// concurrent requests that hit a 401. Off by default.
func (Client) GetCoalesceRefresh() bool {
	return GetBoolEnv(coalesceRefreshVar, false)
}
