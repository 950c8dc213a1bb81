package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetResponseCacheEnabled(t *testing.T) {
	originalValue := ResponseCacheEnabled
	t.Cleanup(func() { ResponseCacheEnabled = originalValue })

	testCases := []struct {
		name     string
		input    bool
		expected bool
	}{
		{name: "set to true", input: true, expected: true},
		{name: "set to false", input: false, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetResponseCacheEnabled(tc.input)
			assert.Equal(t, tc.expected, ResponseCacheEnabled)
		})
	}
}

func TestInitConfigReadsKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("YouTubeAPIKey", "yt-key")
	viper.Set("cache.enabled", false)
	InitConfig()

	assert.Equal(t, "yt-key", YouTubeAPIKey)
	assert.Empty(t, GoogleBooksAPIKey)
	assert.False(t, ResponseCacheEnabled)
}

func TestDelay(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	assert.Equal(t, 200*time.Millisecond, Delay("artworks"))
	assert.Equal(t, 150*time.Millisecond, Delay("books"))

	viper.Set("books.delay", "1s")
	assert.Equal(t, time.Second, Delay("books"))

	viper.Set("books.delay", "nonsense")
	assert.Equal(t, 150*time.Millisecond, Delay("books"))
}

func TestCacheTTL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.Equal(t, 720*time.Hour, CacheTTL())

	viper.Set("cache.ttl", "24h")
	assert.Equal(t, 24*time.Hour, CacheTTL())
}

func TestCacheMissTTL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	assert.Zero(t, CacheMissTTL(), "misses are not cached by default")

	viper.Set("cache.miss_ttl", "168h")
	assert.Equal(t, 168*time.Hour, CacheMissTTL())

	viper.Set("cache.miss_ttl", "-1h")
	assert.Zero(t, CacheMissTTL())
}
