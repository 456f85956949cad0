package filestore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/token/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	s, err := filestore.New(path)
	require.NoError(t, err)

	_, err = s.Get(token.AccessTokenKey)
	require.ErrorIs(t, err, ferrors.ErrNotFound)

	require.NoError(t, s.Set(token.AccessTokenKey, "access-1"))
	require.NoError(t, s.Set(token.RefreshTokenKey, "refresh-1"))

	reopened, err := filestore.New(path)
	require.NoError(t, err)
	v, err := reopened.Get(token.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "access-1", v)

	mgr := token.NewManager(reopened)
	pair, err := mgr.Load()
	require.NoError(t, err)
	require.Equal(t, token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}, pair)

	require.NoError(t, mgr.Clear())
	_, err = s.Get(token.RefreshTokenKey)
	require.ErrorIs(t, err, ferrors.ErrNotFound)
}

func TestStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := filestore.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(token.AccessTokenKey, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := filestore.New(path)
	require.NoError(t, err)
	_, err = s.Get(token.AccessTokenKey)
	require.Error(t, err)
	require.NotErrorIs(t, err, ferrors.ErrNotFound)
}

func TestStore_DeleteMissing(t *testing.T) {
	s, err := filestore.New(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, err)
	require.ErrorIs(t, s.Delete(token.AccessTokenKey), ferrors.ErrNotFound)
}
