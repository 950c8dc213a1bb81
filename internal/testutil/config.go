package testutil

import (
	"testing"

	"github.com/lepinkainen/coverfetch/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	YouTubeAPIKey        string
	GoogleBooksAPIKey    string
	ResponseCacheEnabled bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		YouTubeAPIKey:        config.YouTubeAPIKey,
		GoogleBooksAPIKey:    config.GoogleBooksAPIKey,
		ResponseCacheEnabled: config.ResponseCacheEnabled,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.YouTubeAPIKey = state.YouTubeAPIKey
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.ResponseCacheEnabled = state.ResponseCacheEnabled
}

// SetTestConfigOption is a functional option for configuring test config.
type SetTestConfigOption func(*ConfigState)

// WithYouTubeAPIKey sets the YouTube API key.
func WithYouTubeAPIKey(key string) SetTestConfigOption {
	return func(s *ConfigState) {
		s.YouTubeAPIKey = key
	}
}

// WithResponseCache enables or disables the SQLite response cache.
func WithResponseCache(enabled bool) SetTestConfigOption {
	return func(s *ConfigState) {
		s.ResponseCacheEnabled = enabled
	}
}

// SetTestConfig resets viper, applies test defaults (no API keys, response
// cache disabled) plus any options, and restores everything on cleanup.
func SetTestConfig(t *testing.T, opts ...SetTestConfigOption) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.SetDefaults()

	options := ConfigState{}
	for _, opt := range opts {
		opt(&options)
	}
	RestoreConfigState(options)

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetupTestCache points the response cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	dbPath := env.Path("cache", "test-cache.db")
	viper.Set("cache.dbfile", dbPath)
	viper.Set("cache.ttl", "24h")
	return dbPath
}
