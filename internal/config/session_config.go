package config

import (
	"path/filepath"
	"time"
)

const (
	startupTimeoutVar = "FINCTL_STARTUP_TIMEOUT"
	tokenStoreVar     = "FINCTL_TOKEN_STORE"
)

// Token store backends
const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
)

// DefaultStartupTimeout bounds how long startup validation may keep the
// session in the loading state.
const DefaultStartupTimeout = 5 * time.Second

type SessionConfig interface {
	GetStartupTimeout() time.Duration
	GetTokenStoreType() string
	GetTokenStorePath() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetStartupTimeout() time.Duration {
	return GetDurationEnv(startupTimeoutVar, DefaultStartupTimeout)
}

func (Session) GetTokenStoreType() string {
	switch t := GetEnv(tokenStoreVar, TokenStoreFile); t {
	case TokenStoreSQLite:
		return t
	default:
		return TokenStoreFile
	}
}

func (s Session) GetTokenStorePath() string {
	folder := EnvVars{}.GetDataFolder()
	if s.GetTokenStoreType() == TokenStoreSQLite {
		return filepath.Join(folder, "tokens.db")
	}
	return filepath.Join(folder, "tokens.json")
}
