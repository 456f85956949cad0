package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-finance-client/internal/apitest"
	"github.com/jrsteele09/go-finance-client/users"
	"github.com/stretchr/testify/require"
)

const testPassword = "Sup3rS3cret!!Pw"

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func newCLIServer(t *testing.T, storeType string) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("ana", "ana@example.com", testPassword, users.RoleUser)

	t.Setenv("FINANCE_API_URL", srv.APIURL())
	t.Setenv("FINCTL_DATA_DIR", t.TempDir())
	t.Setenv("FINCTL_TOKEN_STORE", storeType)
	t.Setenv("FINCTL_LOG_LEVEL", "error")
	t.Setenv("FINCTL_PASSWORD", "")
	return srv
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	newCLIServer(t, "file")

	res := runCLI(t, "", "login", "-u", "ana", "-p", testPassword)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Logged in as ana (user)")

	res = runCLI(t, "", "whoami")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "ana@example.com")

	res = runCLI(t, "", "token", "status")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "tokens.json")
	require.Contains(t, res.stdout, "(valid)")

	res = runCLI(t, "", "logout")
	require.Equal(t, exitOK, res.code, res.stderr)

	res = runCLI(t, "", "whoami")
	require.Equal(t, exitSessionExpired, res.code)
	require.Contains(t, res.stderr, "Not logged in")
}

func TestCLI_LoginPrompts(t *testing.T) {
	newCLIServer(t, "file")

	res := runCLI(t, "ana\n"+testPassword+"\n", "login")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stderr, "Username: ")
	require.Contains(t, res.stderr, "Password: ")
}

func TestCLI_BadCredentials(t *testing.T) {
	newCLIServer(t, "file")

	res := runCLI(t, "", "login", "-u", "ana", "-p", "wrong")
	require.Equal(t, exitError, res.code)
	require.Contains(t, res.stderr, "Incorrect username or password")
}

func TestCLI_Transactions(t *testing.T) {
	newCLIServer(t, "sqlite")
	require.Equal(t, exitOK, runCLI(t, "", "login", "-u", "ana", "-p", testPassword).code)

	res := runCLI(t, "", "transactions", "create",
		"--type", "expense", "--description", "Internet", "--amount", "99,90", "--date", "2025-06-01")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "R$ 99,90")
	require.Contains(t, res.stdout, "Other")

	res = runCLI(t, "", "tx", "update", "1", "--category", "Utilities")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Utilities")

	res = runCLI(t, "", "transactions", "list", "--type", "expense")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Internet")

	res = runCLI(t, "", "dashboard", "stats")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Utilities")

	res = runCLI(t, "", "transactions", "delete", "1")
	require.Equal(t, exitOK, res.code, res.stderr)

	res = runCLI(t, "", "transactions", "get", "1")
	require.Equal(t, exitError, res.code)
	require.Contains(t, res.stderr, "Transaction not found")

	res = runCLI(t, "", "token", "status")
	require.Contains(t, res.stdout, "tokens.db")
}

func TestCLI_UploadAndReport(t *testing.T) {
	newCLIServer(t, "file")
	require.Equal(t, exitOK, runCLI(t, "", "login", "-u", "ana", "-p", testPassword).code)
	dir := t.TempDir()

	sheet := filepath.Join(dir, "extrato.xlsx")
	require.NoError(t, os.WriteFile(sheet, []byte("Aluguel\nLuz\n"), 0o600))
	res := runCLI(t, "", "upload", "excel", sheet)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Successfully imported 2 transactions")

	out := filepath.Join(dir, "report.pdf")
	res = runCLI(t, "", "report", "pdf", "-o", out)
	require.Equal(t, exitOK, res.code, res.stderr)
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(body), "Aluguel")
}

func TestCLI_SessionExpiredExitCode(t *testing.T) {
	srv := newCLIServer(t, "file")
	require.Equal(t, exitOK, runCLI(t, "", "login", "-u", "ana", "-p", testPassword).code)

	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()

	res := runCLI(t, "", "transactions", "list")
	require.Equal(t, exitSessionExpired, res.code)
	require.Contains(t, res.stderr, "Session expired")

	// The tokens are gone, so the next command does not even try.
	res = runCLI(t, "", "transactions", "list")
	require.Equal(t, exitSessionExpired, res.code)
	require.Contains(t, res.stderr, "Not logged in")
}

func TestCLI_SilentRefreshWithMetrics(t *testing.T) {
	srv := newCLIServer(t, "file")
	require.Equal(t, exitOK, runCLI(t, "", "login", "-u", "ana", "-p", testPassword).code)
	srv.ExpireAccessTokens()

	res := runCLI(t, "", "--metrics", "transactions", "list")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stderr, `finclient_token_refreshes_total{result="success"} 1`)
}

func TestCLI_UsersForbiddenForNonAdmin(t *testing.T) {
	newCLIServer(t, "file")
	require.Equal(t, exitOK, runCLI(t, "", "login", "-u", "ana", "-p", testPassword).code)

	res := runCLI(t, "", "users", "list")
	require.Equal(t, exitError, res.code)
	require.Contains(t, res.stderr, "Not enough permissions")
	require.Contains(t, res.stderr, "admin account")
}

func TestCLI_Version(t *testing.T) {
	t.Setenv("APP_NAME", "finctl")
	res := runCLI(t, "", "version", "--banner=false")
	require.Equal(t, exitOK, res.code)
	require.Equal(t, "finctl version "+Version+"\n", res.stdout)
}
