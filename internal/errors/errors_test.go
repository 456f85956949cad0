package errors_test

import (
	"fmt"
	"net"
	"net/http"
	"testing"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Kind(t *testing.T) {
	tests := []struct {
		status int
		kind   ferrors.Kind
		target error
	}{
		{http.StatusUnauthorized, ferrors.KindAuthRejected, ferrors.ErrAuthRejected},
		{http.StatusForbidden, ferrors.KindValidation, ferrors.ErrValidation},
		{http.StatusUnprocessableEntity, ferrors.KindValidation, ferrors.ErrValidation},
		{http.StatusInternalServerError, ferrors.KindServer, ferrors.ErrServer},
		{http.StatusBadGateway, ferrors.KindServer, ferrors.ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &ferrors.APIError{StatusCode: tt.status, Method: "GET", Path: "/x"})
			var apiErr *ferrors.APIError
			require.True(t, ferrors.As(err, &apiErr))
			require.Equal(t, tt.kind, apiErr.Kind())
			require.ErrorIs(t, err, tt.target)
			require.True(t, ferrors.HasResponse(err))
			require.False(t, ferrors.IsConnectivity(err))
			require.Equal(t, tt.status, ferrors.StatusCode(err))
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &ferrors.APIError{StatusCode: 400, Detail: "Amount must be positive", Method: "POST", Path: "/transactions/"}
	require.Equal(t, "POST /transactions/: 400 Amount must be positive", err.Error())

	err = &ferrors.APIError{StatusCode: 404, Method: "GET", Path: "/users/9"}
	require.Equal(t, "GET /users/9: 404 Not Found", err.Error())
}

func TestConnectivityError(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}
	err := ferrors.Wrapf(&ferrors.ConnectivityError{Method: "GET", Path: "/auth/me", Err: opErr}, "fetch profile")

	require.True(t, ferrors.IsConnectivity(err))
	require.False(t, ferrors.HasResponse(err))
	require.Zero(t, ferrors.StatusCode(err))
	require.NotErrorIs(t, err, ferrors.ErrAuthRejected)

	var target *net.OpError
	require.ErrorAs(t, err, &target)
}

func TestMalformedResponseError(t *testing.T) {
	err := ferrors.Wrapf(&ferrors.MalformedResponseError{
		StatusCode: http.StatusOK,
		Method:     "POST",
		Path:       "/auth/refresh",
		Err:        fmt.Errorf("unexpected EOF"),
	}, "refresh")

	require.True(t, ferrors.HasResponse(err))
	require.False(t, ferrors.IsConnectivity(err))
	require.Zero(t, ferrors.StatusCode(err))
	require.Contains(t, err.Error(), "POST /auth/refresh: 200 response unusable")
}

func TestWrapf_Nil(t *testing.T) {
	require.NoError(t, ferrors.Wrapf(nil, "context %d", 1))
}
