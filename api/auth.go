package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/users"
	"golang.org/x/oauth2"
)

const (
	authLoginPath    = "/auth/login"
	authRegisterPath = "/auth/register"
	authRefreshPath  = "/auth/refresh"
	authLogoutPath   = "/auth/logout"
	authMePath       = "/auth/me"
)

type AuthService struct {
	client *Client
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. The API expects an
// OAuth2 password-grant style form body.
func (s *AuthService) Login(ctx context.Context, username, password string) (token.Pair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := NewFormRequest(http.MethodPost, authLoginPath, form)
	req.Anonymous = true
	req.NoRecover = true

	pair, err := s.client.doTokenRequest(ctx, req)
	if err != nil {
		return token.Pair{}, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. When the response
// carries no refresh token the one sent is kept.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	req, err := NewJSONRequest(http.MethodPost, authRefreshPath, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return token.Pair{}, err
	}
	req.Anonymous = true
	req.NoRecover = true

	pair, err := s.client.doTokenRequest(ctx, req)
	if err != nil {
		return token.Pair{}, err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

// Logout asks the server to revoke refreshToken.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	req, err := NewJSONRequest(http.MethodPost, authLogoutPath, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	req.NoRecover = true
	return s.client.doJSON(ctx, req, nil)
}

// Me fetches the profile of the caller. An empty accessToken means the
// persisted one.
func (s *AuthService) Me(ctx context.Context, accessToken string) (*users.Profile, error) {
	req := NewRequest(http.MethodGet, authMePath)
	req.BearerToken = accessToken

	var profile users.Profile
	if err := s.client.doJSON(ctx, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AuthService) Register(ctx context.Context, reg users.Registration) (*users.User, error) {
	req, err := NewJSONRequest(http.MethodPost, authRegisterPath, reg)
	if err != nil {
		return nil, err
	}
	req.Anonymous = true
	req.NoRecover = true

	var user users.User
	if err := s.client.doJSON(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) doTokenRequest(ctx context.Context, req *Request) (token.Pair, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return token.Pair{}, err
	}
	defer resp.Body.Close()

	malformed := func(err error) error {
		return &ferrors.MalformedResponseError{StatusCode: resp.StatusCode, Method: req.Method, Path: req.Path, Err: err}
	}

	var tok oauth2.Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return token.Pair{}, malformed(fmt.Errorf("decode token response: %w", err))
	}
	pair := token.FromOAuth2(&tok)
	if !pair.HasAccess() {
		return token.Pair{}, malformed(errors.New("no access token in response"))
	}
	return pair, nil
}
