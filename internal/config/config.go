package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type ClientConfig interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetCoalesceRefresh() bool
}

type mainConfig struct {
	EnvVars
	Client
	Session
}

func New() Config {
	return mainConfig{}
}

// LoadDotEnv loads variables from .env style files into the process
// environment without overriding what is already set. Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
