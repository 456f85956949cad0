package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-finance-client/internal/config"
	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// Exit codes
const (
	exitOK             = 0
	exitError          = 1
	exitPanic          = 2
	exitSessionExpired = 3 // Run `finctl login` again
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			exitCode = exitPanic
		}
	}()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: loading .env: %v\n", err)
		return exitError
	}
	cfg := config.New()
	setupLogging(cfg.GetLogLevel(), cfg.GetEnv(), stderr)

	cmd := rootCmd(cfg)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		return reportError(stderr, err)
	}
	return exitOK
}

func reportError(stderr io.Writer, err error) int {
	switch {
	case errors.Is(err, ferrors.ErrSessionExpired):
		fmt.Fprintln(stderr, "Session expired. Run `finctl login` to sign in again.")
		return exitSessionExpired
	case errors.Is(err, ferrors.ErrNotAuthenticated), errors.Is(err, ferrors.ErrNoRefreshToken):
		fmt.Fprintln(stderr, "Not logged in. Run `finctl login` first.")
		return exitSessionExpired
	case ferrors.StatusCode(err) == http.StatusForbidden:
		fmt.Fprintf(stderr, "Error: %v\nThis command needs an admin account.\n", err)
		return exitError
	case ferrors.IsConnectivity(err):
		fmt.Fprintf(stderr, "Error: cannot reach the finance API: %v\n", err)
		return exitError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

// setupLogging writes human-readable logs in DEV and JSON lines elsewhere.
func setupLogging(level, env string, w io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if env != "DEV" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
