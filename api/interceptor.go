package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/metrics"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxReplays bounds how often one call is re-sent after a refresh.
const maxReplays = 1

// Do sends req and returns the 2xx response; the caller closes its body.
// Any other outcome is an error: *ferrors.ConnectivityError when no
// response arrived, *ferrors.APIError for a non-2xx status, or an error
// wrapping ferrors.ErrSessionExpired when a 401 could not be recovered
// because the server rejected the refresh token.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	logger := log.With().
		Str("request_id", uuid.NewString()).
		Str("method", req.Method).
		Str("path", req.Path).
		Logger()
	ctx = logger.WithContext(ctx)
	return c.do(ctx, req, 0, c.bearerFor(req))
}

func (c *Client) bearerFor(req *Request) string {
	if req.Anonymous {
		return ""
	}
	if req.BearerToken != "" {
		return req.BearerToken
	}
	return c.tokens.AccessToken()
}

// do runs one attempt of req. attempt counts the replays already made.
func (c *Client) do(ctx context.Context, req *Request, attempt int, bearer string) (*http.Response, error) {
	logger := zerolog.Ctx(ctx)

	httpReq, err := c.newHTTPRequest(ctx, req, bearer)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.Requests.WithLabelValues(req.Method, metrics.OutcomeConnectivity).Inc()
		logger.Debug().Err(err).Int("attempt", attempt).Msg("No response from API")
		return nil, &ferrors.ConnectivityError{Method: req.Method, Path: req.Path, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.metrics.Requests.WithLabelValues(req.Method, metrics.OutcomeOK).Inc()
		logger.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("API call succeeded")
		return resp, nil
	}

	apiErr := readAPIError(req, resp)
	c.metrics.Requests.WithLabelValues(req.Method, outcomeFor(apiErr)).Inc()
	logger.Debug().Int("status", apiErr.StatusCode).Int("attempt", attempt).Str("detail", apiErr.Detail).Msg("API call failed")

	if apiErr.StatusCode != http.StatusUnauthorized || req.NoRecover || req.Anonymous || attempt >= maxReplays {
		return nil, apiErr
	}

	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshSkipped).Inc()
		return nil, apiErr
	}

	pair, err := c.refresh(ctx, refreshToken)
	if err != nil {
		if !ferrors.HasResponse(err) {
			// Server unreachable: tokens may still be good, keep them.
			c.metrics.Refreshes.WithLabelValues(metrics.RefreshUnreachable).Inc()
			logger.Warn().Err(err).Msg("Token refresh got no response")
			return nil, err
		}
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshRejected).Inc()
		logger.Warn().Err(err).Msg("Token refresh rejected, clearing session")
		if clearErr := c.tokens.Clear(); clearErr != nil {
			log.Err(clearErr).Msg("Failed to clear tokens after rejected refresh")
		}
		if c.onSessionExpired != nil {
			c.onSessionExpired(err)
		}
		return nil, fmt.Errorf("%w: %w", ferrors.ErrSessionExpired, err)
	}

	c.metrics.Refreshes.WithLabelValues(metrics.RefreshSuccess).Inc()
	c.metrics.Replays.Inc()
	logger.Debug().Msg("Replaying request with refreshed token")
	return c.do(ctx, req, attempt+1, pair.AccessToken)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	if !c.coalesceRefresh {
		return c.exchangeAndSave(ctx, refreshToken)
	}

	v, err, shared := c.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		return c.exchangeAndSave(ctx, refreshToken)
	})
	if err != nil {
		return token.Pair{}, err
	}
	if shared {
		zerolog.Ctx(ctx).Debug().Msg("Joined in-flight token refresh")
	}
	return v.(token.Pair), nil
}

func (c *Client) exchangeAndSave(ctx context.Context, refreshToken string) (token.Pair, error) {
	pair, err := c.Auth.Refresh(ctx, refreshToken)
	if err != nil {
		return token.Pair{}, err
	}
	if err := c.tokens.Save(pair); err != nil {
		return token.Pair{}, fmt.Errorf("save refreshed tokens: %w", err)
	}
	return pair, nil
}

func outcomeFor(apiErr *ferrors.APIError) string {
	switch apiErr.Kind() {
	case ferrors.KindAuthRejected:
		return metrics.OutcomeAuthRejected
	case ferrors.KindServer:
		return metrics.OutcomeServer
	default:
		return metrics.OutcomeValidation
	}
}
