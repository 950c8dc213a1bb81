package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// YouTubeAPIKey is the API key for the YouTube Data API search endpoint
	YouTubeAPIKey string
	// GoogleBooksAPIKey is the optional API key for Google Books
	GoogleBooksAPIKey string
	// ResponseCacheEnabled controls the SQLite cache of raw catalog responses
	ResponseCacheEnabled bool
)

// Family defaults used when neither flags nor config provide a value.
var familyDefaults = map[string]struct {
	input     string
	cacheFile string
	delay     time.Duration
}{
	"artworks": {"./data/365-artworks-uk.json", "./data/artwork-cache.json", 200 * time.Millisecond},
	"books":    {"./data/books.json", "./data/book-covers-cache.json", 150 * time.Millisecond},
	"videos":   {"./data/videos.json", "./data/youtube-cache.json", 200 * time.Millisecond},
}

// SetDefaults registers default values for every known configuration key.
func SetDefaults() {
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days
	viper.SetDefault("cache.miss_ttl", "0s")

	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./coverfetch.db")

	for family, d := range familyDefaults {
		viper.SetDefault(family+".input", d.input)
		viper.SetDefault(family+".cachefile", d.cacheFile)
		viper.SetDefault(family+".delay", d.delay.String())
	}
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	YouTubeAPIKey = viper.GetString("YouTubeAPIKey")
	GoogleBooksAPIKey = viper.GetString("GoogleBooksAPIKey")
	ResponseCacheEnabled = viper.GetBool("cache.enabled")
}

// Delay returns the configured inter-entity delay for a family.
func Delay(family string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(family + ".delay"))
	if err != nil || d < 0 {
		return familyDefaults[family].delay
	}
	return d
}

// CacheTTL returns the configured response cache TTL, falling back to 30 days.
func CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(viper.GetString("cache.ttl"))
	if err != nil || ttl <= 0 {
		return 720 * time.Hour
	}
	return ttl
}

// CacheMissTTL returns how long lookups that found nothing stay cached.
// 0 (the default) never caches them, which keeps reruns able to upgrade records.
func CacheMissTTL() time.Duration {
	ttl, err := time.ParseDuration(viper.GetString("cache.miss_ttl"))
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

// SetResponseCacheEnabled sets the ResponseCacheEnabled flag
func SetResponseCacheEnabled(enabled bool) {
	ResponseCacheEnabled = enabled
}
