package sqlitestore_test

import (
	"path/filepath"
	"testing"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/token/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUD(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")

	s, err := sqlitestore.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Get(token.AccessTokenKey)
	require.ErrorIs(t, err, ferrors.ErrNotFound)

	require.NoError(t, s.Set(token.AccessTokenKey, "a1"))
	require.NoError(t, s.Set(token.AccessTokenKey, "a2"))

	v, err := s.Get(token.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "a2", v)

	require.NoError(t, s.Delete(token.AccessTokenKey))
	require.ErrorIs(t, s.Delete(token.AccessTokenKey), ferrors.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")

	s, err := sqlitestore.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, token.NewManager(s).Save(token.Pair{AccessToken: "acc", RefreshToken: "ref"}))
	require.NoError(t, s.Close())

	reopened, err := sqlitestore.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	pair, err := token.NewManager(reopened).Load()
	require.NoError(t, err)
	require.Equal(t, token.Pair{AccessToken: "acc", RefreshToken: "ref"}, pair)
}
