// Package apitest runs an in-memory finance API for tests. It issues real
// signed access tokens, rotates refresh tokens, and lets a test expire or
// revoke them, fail or stall any route, and inspect what the client sent.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-finance-client/users"
)

const accessTokenTTL = 30 * time.Minute

type Server struct {
	*httptest.Server

	signingKey []byte
	users      *userStore
	ledger     *ledger

	mu            sync.Mutex
	access        map[string]int64 // access token -> user ID
	refresh       map[string]int64 // refresh token -> user ID
	rotateRefresh bool
	failures      map[string]int
	canned        map[string]cannedResponse
	delays        map[string]time.Duration
	calls         map[string]int
	authHeaders   map[string][]string
}

// NewServer starts the fake API. Close it when done.
func NewServer() *Server {
	s := &Server{
		signingKey:    []byte(uuid.NewString()),
		users:         newUserStore(),
		ledger:        newLedger(),
		access:        make(map[string]int64),
		refresh:       make(map[string]int64),
		rotateRefresh: true,
		failures:      make(map[string]int),
		canned:        make(map[string]cannedResponse),
		delays:        make(map[string]time.Duration),
		calls:         make(map[string]int),
		authHeaders:   make(map[string][]string),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// APIURL is the base URL to hand to the client.
func (s *Server) APIURL() string {
	return s.Server.URL + APIPrefix
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	public := s.publicMiddleware()
	authed := s.authMiddleware()
	admin := s.authMiddleware(s.RequireAdmin)

	mux.HandleFunc("POST "+RouteAuthLogin, ChainMiddleware(s.handleLogin, public...))
	mux.HandleFunc("POST "+RouteAuthRegister, ChainMiddleware(s.handleRegister, public...))
	mux.HandleFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.handleRefresh, public...))
	mux.HandleFunc("POST "+RouteAuthLogout, ChainMiddleware(s.handleLogout, authed...))
	mux.HandleFunc("GET "+RouteAuthMe, ChainMiddleware(s.handleMe, authed...))

	mux.HandleFunc("GET "+RouteTransactions+"{$}", ChainMiddleware(s.handleListTransactions, authed...))
	mux.HandleFunc("POST "+RouteTransactions+"{$}", ChainMiddleware(s.handleCreateTransaction, authed...))
	mux.HandleFunc("GET "+RouteTransactions+"{id}", ChainMiddleware(s.handleGetTransaction, authed...))
	mux.HandleFunc("PUT "+RouteTransactions+"{id}", ChainMiddleware(s.handleUpdateTransaction, authed...))
	mux.HandleFunc("DELETE "+RouteTransactions+"{id}", ChainMiddleware(s.handleDeleteTransaction, authed...))

	mux.HandleFunc("GET "+RouteDashboardStats, ChainMiddleware(s.handleStats, authed...))
	mux.HandleFunc("POST "+RouteDashboardHourly, ChainMiddleware(s.handleHourly, authed...))
	mux.HandleFunc("POST "+RouteUploadExcel, ChainMiddleware(s.handleUploadExcel, authed...))
	mux.HandleFunc("GET "+RouteReportPDF, ChainMiddleware(s.handleReport("application/pdf", "relatorio_financeiro.pdf"), authed...))
	mux.HandleFunc("GET "+RouteReportExcel, ChainMiddleware(s.handleReport("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "relatorio_financeiro.xlsx"), authed...))

	mux.HandleFunc("GET "+RouteUsers+"{$}", ChainMiddleware(s.handleListUsers, admin...))
	mux.HandleFunc("POST "+RouteUsers+"{$}", ChainMiddleware(s.handleCreateUser, admin...))
	mux.HandleFunc("GET "+RouteUsers+"{id}", ChainMiddleware(s.handleGetUser, admin...))
	mux.HandleFunc("PUT "+RouteUsers+"{id}", ChainMiddleware(s.handleUpdateUser, admin...))
	mux.HandleFunc("DELETE "+RouteUsers+"{id}", ChainMiddleware(s.handleDeleteUser, admin...))

	mux.HandleFunc("GET "+RouteHealth, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}, public...))
	return mux
}

// AddUser creates an active account and returns it.
func (s *Server) AddUser(username, email, password string, role users.RoleType) users.User {
	u, err := s.users.Create(email, username, password, nil, role)
	if err != nil {
		panic(err)
	}
	return u
}

// IssueTokens logs userID in without going through /auth/login.
func (s *Server) IssueTokens(userID int64) (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]int64)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]int64)
}

// SetRefreshRotation controls whether /auth/refresh issues a new refresh
// token. When off, the response carries only an access token.
func (s *Server) SetRefreshRotation(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateRefresh = enabled
}

// FailPath makes every call to path answer status. Zero clears it.
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

type cannedResponse struct {
	status      int
	contentType string
	body        string
}

// Respond makes every call to path answer with the given raw response.
// Zero status clears it.
func (s *Server) Respond(path string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.canned, path)
		return
	}
	s.canned[path] = cannedResponse{status: status, contentType: contentType, body: body}
}

// Delay stalls calls to path for d, or until the client gives up.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Calls is the number of requests that reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// AuthHeaders lists the Authorization header of each call to path, in order.
func (s *Server) AuthHeaders(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders[path]...)
}

// RefreshTokenValid reports whether tok would be accepted by /auth/refresh.
func (s *Server) RefreshTokenValid(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refresh[tok]
	return ok
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Server) issueLocked(userID int64) (string, string) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
		"jti":  uuid.NewString(),
		"type": "access",
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic(err)
	}
	refreshToken := uuid.NewString()
	s.access[accessToken] = userID
	s.refresh[refreshToken] = userID
	return accessToken, refreshToken
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
