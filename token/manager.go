package token

import (
	"fmt"
	"sync"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Manager is the single owner of the persisted token pair. The request
// interceptor and the session store both read and write through it, and
// every write is announced to subscribers so cached session state can be
// dropped.
type Manager struct {
	repo Repo
	lock sync.Mutex // serialises writes

	subLock     sync.RWMutex
	subscribers map[int]func(Pair)
	nextSubID   int
}

// NewManager creates a token manager over the given storage
func NewManager(repo Repo) *Manager {
	return &Manager{
		repo:        repo,
		subscribers: make(map[int]func(Pair)),
	}
}

// Load reads the persisted pair. Missing entries yield empty fields.
func (m *Manager) Load() (Pair, error) {
	access, err := m.get(AccessTokenKey)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.get(RefreshTokenKey)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// AccessToken returns the persisted access token, or "" when there is none
// or storage cannot be read.
func (m *Manager) AccessToken() string {
	v, err := m.get(AccessTokenKey)
	if err != nil {
		log.Err(err).Msg("Failed to read access token")
		return ""
	}
	return v
}

// RefreshToken returns the persisted refresh token, or "".
func (m *Manager) RefreshToken() string {
	v, err := m.get(RefreshTokenKey)
	if err != nil {
		log.Err(err).Msg("Failed to read refresh token")
		return ""
	}
	return v
}

// Save replaces the whole pair. If either write fails both entries are
// removed so a half-written pair is never left behind.
func (m *Manager) Save(p Pair) error {
	if !p.HasAccess() {
		return fmt.Errorf("%w: access token is required", ferrors.ErrInvalidArgument)
	}

	m.lock.Lock()
	err := m.repo.Set(AccessTokenKey, p.AccessToken)
	if err == nil {
		if p.HasRefresh() {
			err = m.repo.Set(RefreshTokenKey, p.RefreshToken)
		} else {
			err = m.deleteKey(RefreshTokenKey)
		}
	}
	if err != nil {
		if clearErr := m.clearLocked(); clearErr != nil {
			log.Err(clearErr).Msg("Failed to roll back partial token write")
		}
	}
	m.lock.Unlock()

	if err != nil {
		m.notify(Pair{})
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	m.notify(p)
	return nil
}

// Clear removes both entries. Clearing an empty store is not an error.
func (m *Manager) Clear() error {
	m.lock.Lock()
	err := m.clearLocked()
	m.lock.Unlock()

	m.notify(Pair{})
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// Subscribe registers fn to be called after every Save or Clear with the
// pair now persisted. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Pair)) func() {
	m.subLock.Lock()
	defer m.subLock.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	return func() {
		m.subLock.Lock()
		defer m.subLock.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *Manager) notify(p Pair) {
	m.subLock.RLock()
	subs := make([]func(Pair), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.subLock.RUnlock()

	for _, fn := range subs {
		fn(p)
	}
}

func (m *Manager) clearLocked() error {
	accessErr := m.deleteKey(AccessTokenKey)
	refreshErr := m.deleteKey(RefreshTokenKey)
	if accessErr != nil {
		return accessErr
	}
	return refreshErr
}

func (m *Manager) deleteKey(key string) error {
	if err := m.repo.Delete(key); err != nil && !ferrors.Is(err, ferrors.ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) get(key string) (string, error) {
	v, err := m.repo.Get(key)
	if ferrors.Is(err, ferrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}
