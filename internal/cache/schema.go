package cache

import "fmt"

// Source tables. All cache tables share the same layout and use "cache_key"
// as the primary key column.
const (
	WikimediaTable   = "wikimedia_cache"
	MetTable         = "met_cache"
	AICTable         = "aic_cache"
	OpenLibraryTable = "openlibrary_cache"
	GoogleBooksTable = "googlebooks_cache"
	YouTubeTable     = "youtube_cache"
)

// ValidCacheTableNames is the whitelist of allowed cache table names.
// Table names are interpolated into SQL, so only these are accepted.
var ValidCacheTableNames = map[string]bool{
	WikimediaTable:   true,
	MetTable:         true,
	AICTable:         true,
	OpenLibraryTable: true,
	GoogleBooksTable: true,
	YouTubeTable:     true,
}

// TableSchema returns the CREATE statements for a cache table.
// ttl_seconds of 0 means the entry uses the lookup's default TTL.
func TableSchema(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_cached_at ON %[1]s(cached_at);
`, table)
}

// sourceAliases maps source tags whose cache table is named differently.
var sourceAliases = map[string]string{
	"google": GoogleBooksTable,
}

// TableForSource maps a source tag such as "met" to its cache table.
func TableForSource(source string) (string, error) {
	if table, ok := sourceAliases[source]; ok {
		return table, nil
	}
	table := source + "_cache"
	if !ValidCacheTableNames[table] {
		return "", fmt.Errorf("invalid cache source '%s'", source)
	}
	return table, nil
}
