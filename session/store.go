// Package session holds who is logged in. The profile lives in memory;
// the tokens live in the token.Manager, which the API client reads too.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/users"
	"github.com/rs/zerolog/log"
)

const DefaultStartupTimeout = 5 * time.Second

type State int

const (
	StateUnauthenticated State = iota
	StateValidating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthAPI is the slice of the API the store talks to. *api.AuthService
// implements it.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*users.Profile, error)
	Register(ctx context.Context, reg users.Registration) (*users.User, error)
}

// Snapshot is a consistent read of the store.
type Snapshot struct {
	User    *users.Profile
	State   State
	Loading bool
}

type Option func(*Store)

// WithStartupTimeout bounds how long ValidateOnStartup keeps Loading true.
func WithStartupTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.startupTimeout = d
		}
	}
}

// Store is safe for concurrent use. The token manager is never called
// while mu is held.
type Store struct {
	auth           AuthAPI
	tokens         *token.Manager
	startupTimeout time.Duration

	mu       sync.RWMutex
	clears   uint64 // bumped whenever the access token is removed
	user     *users.Profile
	state    State
	loading  bool
	done     chan struct{}
	doneOnce sync.Once

	unsubscribe func()
}

func New(auth AuthAPI, tokens *token.Manager, options ...Option) *Store {
	s := &Store{
		auth:           auth,
		tokens:         tokens,
		startupTimeout: DefaultStartupTimeout,
		loading:        true,
		done:           make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	s.unsubscribe = tokens.Subscribe(s.onTokens)
	return s
}

// Close detaches the store from the token manager.
func (s *Store) Close() {
	s.unsubscribe()
}

// Login authenticates, persists the pair and loads the profile with the
// access token just issued. If the profile cannot be loaded the session
// is cleared.
func (s *Store) Login(ctx context.Context, username, password string) error {
	defer s.finishLoading()

	pair, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return ferrors.Wrapf(err, "login")
	}
	if err := s.tokens.Save(pair); err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "login")
	}

	profile, err := s.auth.Me(ctx, pair.AccessToken)
	if err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "load profile after login")
	}
	if err := s.setUser(profile); err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "login")
	}
	log.Info().Str("username", profile.Username).Msg("Logged in")
	return nil
}

// Register creates the account and logs into it.
func (s *Store) Register(ctx context.Context, reg users.Registration) error {
	if _, err := s.auth.Register(ctx, reg); err != nil {
		return ferrors.Wrapf(err, "register")
	}
	return s.Login(ctx, reg.Username, reg.Password)
}

// ValidateOnStartup checks a persisted session. A rejected access token
// gets one refresh attempt; if that fails too the session is cleared.
// Loading ends when validation finishes or after the startup timeout,
// whichever comes first. The timeout does not cancel the request.
func (s *Store) ValidateOnStartup(ctx context.Context) error {
	defer s.finishLoading()

	if s.tokens.AccessToken() == "" {
		s.setState(StateUnauthenticated)
		return nil
	}

	s.setState(StateValidating)
	watchdog := time.AfterFunc(s.startupTimeout, func() {
		log.Warn().Dur("timeout", s.startupTimeout).Msg("Session validation is slow, no longer waiting for it")
		s.finishLoading()
	})
	defer watchdog.Stop()

	profile, err := s.auth.Me(ctx, "")
	if err == nil {
		if err := s.setUser(profile); err != nil {
			s.ClearAuth()
			return ferrors.Wrapf(err, "validate session")
		}
		return nil
	}

	if s.tokens.RefreshToken() == "" {
		s.ClearAuth()
		return ferrors.Wrapf(err, "validate session")
	}

	log.Debug().Err(err).Msg("Persisted session rejected, trying refresh")
	if refreshErr := s.RefreshAccessToken(ctx); refreshErr != nil {
		return ferrors.Wrapf(refreshErr, "validate session")
	}
	return nil
}

// RefreshAccessToken exchanges the persisted refresh token for a new pair
// and reloads the profile. Without a refresh token it returns
// ErrNoRefreshToken and touches nothing. Any other failure clears the
// session.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	refreshToken := s.tokens.RefreshToken()
	if refreshToken == "" {
		return ferrors.ErrNoRefreshToken
	}

	pair, err := s.auth.Refresh(ctx, refreshToken)
	if err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "refresh access token")
	}
	if err := s.tokens.Save(pair); err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "refresh access token")
	}

	profile, err := s.auth.Me(ctx, pair.AccessToken)
	if err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "load profile after refresh")
	}
	if err := s.setUser(profile); err != nil {
		s.ClearAuth()
		return ferrors.Wrapf(err, "refresh access token")
	}
	return nil
}

// Logout revokes the refresh token on the server if it can and always
// clears the local session.
func (s *Store) Logout(ctx context.Context) {
	if refreshToken := s.tokens.RefreshToken(); refreshToken != "" {
		if err := s.auth.Logout(ctx, refreshToken); err != nil {
			log.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
		}
	}
	s.ClearAuth()
}

// ClearAuth drops the profile and the persisted tokens. Safe to call
// repeatedly.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear persisted tokens")
	}
	s.finishLoading()
}

// User returns a copy of the current profile, or nil.
func (s *Store) User() *users.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated is true only while both a profile and an access token
// are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	hasUser := s.user != nil
	s.mu.RUnlock()
	return hasUser && s.tokens.AccessToken() != ""
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Done is closed once loading has ended.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// setUser commits the profile unless the access token was removed while
// it was being fetched or committed.
func (s *Store) setUser(profile *users.Profile) error {
	s.mu.RLock()
	clears := s.clears
	s.mu.RUnlock()

	hasToken := s.tokens.AccessToken() != ""

	s.mu.Lock()
	defer s.mu.Unlock()
	if !hasToken || clears != s.clears {
		s.user = nil
		s.state = StateUnauthenticated
		return fmt.Errorf("%w: session was cleared while loading the profile", ferrors.ErrNotAuthenticated)
	}
	s.user = profile
	s.state = StateAuthenticated
	return nil
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Store) finishLoading() {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.done)
	})
}

// onTokens keeps the profile in step with the persisted pair: once the
// access token is gone, so is the user.
func (s *Store) onTokens(p token.Pair) {
	if p.HasAccess() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.user = nil
	s.state = StateUnauthenticated
}
