package tokenfakerepo

import (
	"sync"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token.Repo. SetErr, GetErr and DeleteErr
// inject storage failures.
type FakeTokenRepo struct {
	values map[string]string
	writes int
	lock   sync.RWMutex

	SetErr    error
	GetErr    error
	DeleteErr error
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

// NewFakeTokenRepoWith returns a repo pre-seeded with a persisted pair, as
// if left behind by an earlier process.
func NewFakeTokenRepoWith(p token.Pair) *FakeTokenRepo {
	r := NewFakeTokenRepo()
	if p.AccessToken != "" {
		r.values[token.AccessTokenKey] = p.AccessToken
	}
	if p.RefreshToken != "" {
		r.values[token.RefreshTokenKey] = p.RefreshToken
	}
	return r
}

func (r *FakeTokenRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.GetErr != nil {
		return "", r.GetErr
	}
	v, ok := r.values[key]
	if !ok {
		return "", ferrors.ErrNotFound
	}
	return v, nil
}

func (r *FakeTokenRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.SetErr != nil {
		return r.SetErr
	}
	r.values[key] = value
	r.writes++
	return nil
}

func (r *FakeTokenRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.values[key]; !ok {
		return ferrors.ErrNotFound
	}
	delete(r.values, key)
	r.writes++
	return nil
}

// Value returns the raw stored value, "" when absent.
func (r *FakeTokenRepo) Value(key string) string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.values[key]
}

// Writes counts successful Set and Delete calls.
func (r *FakeTokenRepo) Writes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.writes
}
