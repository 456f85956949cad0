package apitest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-finance-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) publicMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecordMiddleware,
		s.FaultMiddleware,
	}
}

func (s *Server) authMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	return append(s.publicMiddleware(), append([]func(http.HandlerFunc) http.HandlerFunc{s.RequireAuth}, mw...)...)
}

// RecordMiddleware counts calls per path and keeps the Authorization
// header each call carried.
func (s *Server) RecordMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.authHeaders[r.URL.Path] = append(s.authHeaders[r.URL.Path], r.Header.Get("Authorization"))
		s.mu.Unlock()
		next(w, r)
	}
}

// FaultMiddleware applies the delays, forced statuses and raw responses
// set with Delay, FailPath and Respond.
func (s *Server) FaultMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		delay := s.delays[r.URL.Path]
		status := s.failures[r.URL.Path]
		canned, hasCanned := s.canned[r.URL.Path]
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeDetail(w, status, "injected failure")
			return
		}
		if hasCanned {
			w.Header().Set("Content-Type", canned.contentType)
			w.WriteHeader(canned.status)
			_, _ = io.WriteString(w, canned.body)
			return
		}
		next(w, r)
	}
}

// RequireAuth validates the Bearer access token against the tokens the
// server issued and puts the owner's ID in the request context.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		userID, ok := s.access[parts[1]]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		u, err := s.users.GetByID(userID)
		if err != nil || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must be chained after RequireAuth.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.users.GetByID(currentUserID(r))
		if err != nil || u.Role != users.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next(w, r)
	}
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(ContextKeyUserID).(int64)
	return id
}
