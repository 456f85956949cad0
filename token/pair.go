package token

import (
	"strings"

	"golang.org/x/oauth2"
)

// Keys under which the pair is persisted.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Pair is the access/refresh token pair issued by the API. Both values are
// opaque to the client.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

func (p Pair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

func (p Pair) HasAccess() bool {
	return p.AccessToken != ""
}

func (p Pair) HasRefresh() bool {
	return p.RefreshToken != ""
}

// FromOAuth2 takes the pair out of a decoded token endpoint response. The
// API answers login and refresh with the standard
// {access_token, refresh_token, token_type, expires_in} body.
func FromOAuth2(t *oauth2.Token) Pair {
	if t == nil {
		return Pair{}
	}
	return Pair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

// OAuth2 returns the pair as an oauth2.Token with a bearer type.
func (p Pair) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
}

// BearerHeader is the Authorization header value for the access token.
func BearerHeader(accessToken string) string {
	return "Bearer " + accessToken
}

// Redact shortens a token for display.
func Redact(tok string) string {
	if tok == "" {
		return "<none>"
	}
	if len(tok) <= 12 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:8] + "…" + tok[len(tok)-4:]
}
