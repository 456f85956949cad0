package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jrsteele09/go-finance-client/api"
	"github.com/jrsteele09/go-finance-client/internal/apitest"
	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/metrics"
	"github.com/jrsteele09/go-finance-client/token"
	tokenfakerepo "github.com/jrsteele09/go-finance-client/token/repofake"
	"github.com/jrsteele09/go-finance-client/transactions"
	"github.com/jrsteele09/go-finance-client/users"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testPassword = "Sup3rS3cret!!Pw"

type fixture struct {
	srv    *apitest.Server
	repo   *tokenfakerepo.FakeTokenRepo
	client *api.Client
	user   users.User

	mu      sync.Mutex
	expired []error
}

func newFixture(t *testing.T, opts ...api.ClientOption) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	f := &fixture{srv: srv}
	f.user = srv.AddUser("ana", "ana@example.com", testPassword, users.RoleUser)
	access, refresh := srv.IssueTokens(f.user.ID)
	f.repo = tokenfakerepo.NewFakeTokenRepoWith(token.Pair{AccessToken: access, RefreshToken: refresh})

	opts = append([]api.ClientOption{
		api.WithSessionExpiredHandler(func(err error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.expired = append(f.expired, err)
		}),
	}, opts...)
	client, err := api.New(srv.APIURL(), token.NewManager(f.repo), opts...)
	require.NoError(t, err)
	f.client = client
	return f
}

func (f *fixture) expiredCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.expired)
}

// failPathTransport drops every request whose path ends in path.
type failPathTransport struct {
	path string
}

func (ft failPathTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if strings.HasSuffix(r.URL.Path, ft.path) {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	m := token.NewManager(tokenfakerepo.NewFakeTokenRepo())

	_, err := api.New("localhost:8000", m)
	require.Error(t, err)

	_, err = api.New("http://localhost:8000/api", nil)
	require.Error(t, err)

	c, err := api.New("http://localhost:8000/api/", m)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/api", c.BaseURL())
}

func TestDo_AttachesPersistedBearer(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer " + f.repo.Value(token.AccessTokenKey)}, f.srv.AuthHeaders(apitest.RouteTransactions))
	require.Zero(t, f.srv.Calls(apitest.RouteAuthRefresh))
}

func TestDo_ExpiredAccessTokenRefreshesAndReplaysOnce(t *testing.T) {
	f := newFixture(t)
	oldAccess := f.repo.Value(token.AccessTokenKey)
	oldRefresh := f.repo.Value(token.RefreshTokenKey)
	f.srv.ExpireAccessTokens()

	list, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.NoError(t, err)
	require.Empty(t, list)

	require.Equal(t, 1, f.srv.Calls(apitest.RouteAuthRefresh))
	headers := f.srv.AuthHeaders(apitest.RouteTransactions)
	require.Len(t, headers, 2)
	require.Equal(t, "Bearer "+oldAccess, headers[0])

	newAccess := f.repo.Value(token.AccessTokenKey)
	require.NotEqual(t, oldAccess, newAccess)
	require.Equal(t, "Bearer "+newAccess, headers[1])
	require.NotEqual(t, oldRefresh, f.repo.Value(token.RefreshTokenKey))

	// The refresh call itself carries no bearer.
	require.Equal(t, []string{""}, f.srv.AuthHeaders(apitest.RouteAuthRefresh))

	m := f.client.Metrics()
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues(metrics.RefreshSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Replays))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, metrics.OutcomeAuthRejected)))
	require.Zero(t, f.expiredCalls())
}

func TestDo_ReplayIsNotRecoveredAgain(t *testing.T) {
	f := newFixture(t)
	f.srv.FailPath(apitest.RouteTransactions, http.StatusUnauthorized)

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.ErrorIs(t, err, ferrors.ErrAuthRejected)
	require.NotErrorIs(t, err, ferrors.ErrSessionExpired)

	require.Equal(t, 1, f.srv.Calls(apitest.RouteAuthRefresh))
	require.Equal(t, 2, f.srv.Calls(apitest.RouteTransactions))

	// The refreshed pair is kept.
	require.NotEmpty(t, f.repo.Value(token.AccessTokenKey))
	require.Zero(t, f.expiredCalls())
}

func TestDo_RejectedRefreshClearsTokensAndSignalsBoundary(t *testing.T) {
	f := newFixture(t)
	f.srv.ExpireAccessTokens()
	f.srv.RevokeRefreshTokens()

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.ErrorIs(t, err, ferrors.ErrSessionExpired)
	require.ErrorIs(t, err, ferrors.ErrAuthRejected)

	require.Empty(t, f.repo.Value(token.AccessTokenKey))
	require.Empty(t, f.repo.Value(token.RefreshTokenKey))
	require.Equal(t, 1, f.expiredCalls())
	require.Equal(t, 1, f.srv.Calls(apitest.RouteTransactions))
	require.Equal(t, 1.0, testutil.ToFloat64(f.client.Metrics().Refreshes.WithLabelValues(metrics.RefreshRejected)))
}

func TestDo_RefreshServerErrorAlsoEndsSession(t *testing.T) {
	f := newFixture(t)
	f.srv.ExpireAccessTokens()
	f.srv.FailPath(apitest.RouteAuthRefresh, http.StatusInternalServerError)

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.ErrorIs(t, err, ferrors.ErrSessionExpired)
	require.ErrorIs(t, err, ferrors.ErrServer)
	require.Empty(t, f.repo.Value(token.RefreshTokenKey))
	require.Equal(t, 1, f.expiredCalls())
}

func TestDo_NoRefreshTokenReturnsOriginal401(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Delete(token.RefreshTokenKey))
	f.srv.ExpireAccessTokens()

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	var apiErr *ferrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "/transactions/", apiErr.Path)
	require.NotErrorIs(t, err, ferrors.ErrSessionExpired)

	require.Zero(t, f.srv.Calls(apitest.RouteAuthRefresh))
	require.NotEmpty(t, f.repo.Value(token.AccessTokenKey))
	require.Zero(t, f.expiredCalls())
}

func TestDo_UnreachableRefreshKeepsTokens(t *testing.T) {
	f := newFixture(t, api.WithHTTPClient(&http.Client{Transport: failPathTransport{path: "/auth/refresh"}}))
	refresh := f.repo.Value(token.RefreshTokenKey)
	f.srv.ExpireAccessTokens()

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.True(t, ferrors.IsConnectivity(err))
	require.NotErrorIs(t, err, ferrors.ErrSessionExpired)

	require.Equal(t, refresh, f.repo.Value(token.RefreshTokenKey))
	require.NotEmpty(t, f.repo.Value(token.AccessTokenKey))
	require.Zero(t, f.expiredCalls())
	require.Equal(t, 1.0, testutil.ToFloat64(f.client.Metrics().Refreshes.WithLabelValues(metrics.RefreshUnreachable)))
}

func TestDo_ServerDownIsConnectivityNotAuth(t *testing.T) {
	f := newFixture(t)
	f.srv.Close()

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.True(t, ferrors.IsConnectivity(err))
	require.False(t, ferrors.HasResponse(err))
	require.NotErrorIs(t, err, ferrors.ErrAuthRejected)

	require.NotEmpty(t, f.repo.Value(token.AccessTokenKey))
	require.NotEmpty(t, f.repo.Value(token.RefreshTokenKey))
	require.Zero(t, f.expiredCalls())
}

func TestDo_NonAuthErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"server", http.StatusInternalServerError, ferrors.ErrServer},
		{"validation", http.StatusUnprocessableEntity, ferrors.ErrValidation},
		{"forbidden", http.StatusForbidden, ferrors.ErrValidation},
		{"not found", http.StatusNotFound, ferrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.srv.FailPath(apitest.RouteTransactions, tt.status)

			_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
			require.ErrorIs(t, err, tt.target)

			var apiErr *ferrors.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, "injected failure", apiErr.Detail)
			require.Zero(t, f.srv.Calls(apitest.RouteAuthRefresh))
			require.Equal(t, 1, f.srv.Calls(apitest.RouteTransactions))
		})
	}
}

func TestDo_CoalescedRefresh(t *testing.T) {
	f := newFixture(t, api.WithRefreshCoalescing(true))
	f.srv.ExpireAccessTokens()
	f.srv.Delay(apitest.RouteAuthRefresh, 300*time.Millisecond)

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Transactions.List(context.Background(), transactions.Filter{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.srv.Calls(apitest.RouteAuthRefresh))
	require.Equal(t, 2*callers, f.srv.Calls(apitest.RouteTransactions))
	require.Zero(t, f.expiredCalls())
}

func TestDo_ConcurrentUnauthorizedCallsRefreshIndependently(t *testing.T) {
	f := newFixture(t)
	f.srv.SetRefreshRotation(false)
	f.srv.ExpireAccessTokens()
	f.srv.Delay(apitest.RouteAuthRefresh, 300*time.Millisecond)

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Transactions.List(context.Background(), transactions.Filter{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	// One refresh and one replay per call, none shared.
	require.Equal(t, callers, f.srv.Calls(apitest.RouteAuthRefresh))
	require.Equal(t, 2*callers, f.srv.Calls(apitest.RouteTransactions))
	m := f.client.Metrics()
	require.Equal(t, float64(callers), testutil.ToFloat64(m.Refreshes.WithLabelValues(metrics.RefreshSuccess)))
	require.Equal(t, float64(callers), testutil.ToFloat64(m.Replays))
	require.NotEmpty(t, f.repo.Value(token.RefreshTokenKey))
	require.Zero(t, f.expiredCalls())
}

func TestDo_ConcurrentRefreshWithRotationLosersEndSession(t *testing.T) {
	f := newFixture(t)
	f.srv.ExpireAccessTokens()
	f.srv.Delay(apitest.RouteAuthRefresh, 300*time.Millisecond)

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Transactions.List(context.Background(), transactions.Filter{})
		}(i)
	}
	wg.Wait()

	// The first refresh consumes the shared refresh token; the rest are
	// rejected and each one ends the session.
	var ok, expired int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ferrors.ErrSessionExpired):
			expired++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, callers-1, expired)
	require.Equal(t, callers, f.srv.Calls(apitest.RouteAuthRefresh))
	require.Equal(t, callers-1, f.expiredCalls())
	require.Equal(t, float64(callers-1), testutil.ToFloat64(f.client.Metrics().Refreshes.WithLabelValues(metrics.RefreshRejected)))
}

func TestDo_UnusableRefreshResponseEndsSession(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>maintenance</html>"},
		{"no access token", `{"token_type":"bearer"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.srv.ExpireAccessTokens()
			f.srv.Respond(apitest.RouteAuthRefresh, http.StatusOK, "application/json", tt.body)

			_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
			require.ErrorIs(t, err, ferrors.ErrSessionExpired)
			require.True(t, ferrors.HasResponse(err))
			require.False(t, ferrors.IsConnectivity(err))

			var badErr *ferrors.MalformedResponseError
			require.ErrorAs(t, err, &badErr)
			require.Equal(t, http.StatusOK, badErr.StatusCode)

			require.Empty(t, f.repo.Value(token.AccessTokenKey))
			require.Empty(t, f.repo.Value(token.RefreshTokenKey))
			require.Equal(t, 1, f.expiredCalls())
		})
	}
}

func TestDo_PlainTextErrorDetailIsTruncatedOnRuneBoundary(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(apitest.RouteTransactions, http.StatusBadGateway, "text/plain; charset=utf-8", strings.Repeat("ação ", 60))

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	var apiErr *ferrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.True(t, utf8.ValidString(apiErr.Detail))
	require.Equal(t, 200, utf8.RuneCountInString(apiErr.Detail))
	require.True(t, strings.HasPrefix(apiErr.Detail, "ação ação"))
}

func TestDo_ExplicitBearerIsRecoveredToo(t *testing.T) {
	f := newFixture(t)
	stale := f.repo.Value(token.AccessTokenKey)
	f.srv.ExpireAccessTokens()

	profile, err := f.client.Auth.Me(context.Background(), stale)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, profile.ID)

	headers := f.srv.AuthHeaders(apitest.RouteAuthMe)
	require.Len(t, headers, 2)
	require.Equal(t, "Bearer "+stale, headers[0])
	require.Equal(t, "Bearer "+f.repo.Value(token.AccessTokenKey), headers[1])
}

func TestMetrics_WriteText(t *testing.T) {
	f := newFixture(t)
	f.srv.ExpireAccessTokens()

	_, err := f.client.Transactions.List(context.Background(), transactions.Filter{})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, f.client.Metrics().WriteText(&sb))
	out := sb.String()
	require.Contains(t, out, `finclient_token_refreshes_total{result="success"} 1`)
	require.Contains(t, out, `finclient_request_replays_total 1`)
	require.Contains(t, out, `finclient_requests_total{method="GET",outcome="ok"} 1`)
	require.Contains(t, out, `finclient_requests_total{method="POST",outcome="ok"} 1`)
}
