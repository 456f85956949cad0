package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-finance-client/api"
	"github.com/jrsteele09/go-finance-client/internal/config"
	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/metrics"
	"github.com/jrsteele09/go-finance-client/session"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/token/filestore"
	"github.com/jrsteele09/go-finance-client/token/sqlitestore"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL      string
	showMetrics bool
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg       config.Config
	storePath string
	tokens    *token.Manager
	client    *api.Client
	session   *session.Store
	metrics   *metrics.Client
	closeRepo func() error
}

func newApp(cfg config.Config, opts *rootOptions) (*app, error) {
	repo, closeRepo, err := openTokenRepo(cfg)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.GetBaseURL()
	if opts.apiURL != "" {
		baseURL = opts.apiURL
	}

	tokens := token.NewManager(repo)
	m := metrics.New()
	client, err := api.New(baseURL, tokens,
		api.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		api.WithRefreshCoalescing(cfg.GetCoalesceRefresh()),
		api.WithMetrics(m),
		api.WithSessionExpiredHandler(func(err error) {
			log.Warn().Err(err).Msg("Refresh token rejected, signed out")
		}),
	)
	if err != nil {
		_ = closeRepo()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		storePath: cfg.GetTokenStorePath(),
		tokens:    tokens,
		client:    client,
		session:   session.New(client.Auth, tokens, session.WithStartupTimeout(cfg.GetStartupTimeout())),
		metrics:   m,
		closeRepo: closeRepo,
	}, nil
}

func openTokenRepo(cfg config.Config) (token.Repo, func() error, error) {
	path := cfg.GetTokenStorePath()
	switch cfg.GetTokenStoreType() {
	case config.TokenStoreSQLite:
		store, err := sqlitestore.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open token database %s: %w", path, err)
		}
		return store, store.Close, nil
	default:
		store, err := filestore.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open token file %s: %w", path, err)
		}
		return store, func() error { return nil }, nil
	}
}

func (a *app) Close() {
	a.session.Close()
	if err := a.closeRepo(); err != nil {
		log.Err(err).Msg("Failed to close token store")
	}
}

// requireLogin fails fast when no session was ever persisted. Expired
// tokens are left to the client's refresh handling.
func (a *app) requireLogin() error {
	if a.tokens.AccessToken() == "" {
		return ferrors.ErrNotAuthenticated
	}
	return nil
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error

// withApp builds the app for one command run and tears it down after.
func withApp(cfg config.Config, opts *rootOptions, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		err = fn(cmd.Context(), cmd, args, a)
		if opts.showMetrics {
			if mErr := a.metrics.WriteText(cmd.ErrOrStderr()); mErr != nil {
				log.Err(mErr).Msg("Failed to write metrics")
			}
		}
		return err
	}
}

// authed is withApp for commands that need a logged in user.
func authed(cfg config.Config, opts *rootOptions, fn runFunc) func(*cobra.Command, []string) error {
	return withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		return fn(ctx, cmd, args, a)
	})
}
