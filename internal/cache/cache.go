// Package cache stores catalog lookup results in SQLite so repeated runs
// do not hit the same endpoints again.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	// DefaultCacheTTL is the default time-to-live for cached entries (30 days)
	DefaultCacheTTL = 720 * time.Hour
	// NegativeCacheTTL is the TTL for "not found" responses (7 days)
	NegativeCacheTTL = 168 * time.Hour

	hotEntries = 1024
)

// FetchFunc represents a function that fetches data from an external source
type FetchFunc[T any] func() (T, error)

type hotEntry struct {
	data     string
	cachedAt time.Time
	ttl      time.Duration
}

// CacheDB manages the SQLite database connection for caching.
// Recently used entries are also kept in an in-memory LRU.
type CacheDB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	hot  *lru.Cache[string, hotEntry]
	now  func() time.Time
}

var (
	globalCache     *CacheDB
	globalCacheOnce sync.Once
)

// ResetGlobalCache closes the current global cache and resets the singleton
// so the next call to GetGlobalCache will create a new instance.
func ResetGlobalCache() error {
	if globalCache != nil {
		if err := globalCache.Close(); err != nil {
			return err
		}
	}
	globalCache = nil
	globalCacheOnce = sync.Once{}
	return nil
}

// GetGlobalCache returns the singleton cache database configured by cache.dbfile
func GetGlobalCache() (*CacheDB, error) {
	var initErr error
	globalCacheOnce.Do(func() {
		dbPath := viper.GetString("cache.dbfile")
		if dbPath == "" {
			dbPath = "./cache.db"
		}
		globalCache, initErr = NewCacheDB(dbPath)
	})
	if initErr != nil {
		return nil, initErr
	}
	return globalCache, nil
}

// NewCacheDB opens the database at dbPath and creates every source table.
func NewCacheDB(dbPath string) (*CacheDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// A single writer keeps SQLite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	hot, err := lru.New[string, hotEntry](hotEntries)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create in-memory cache: %w", err)
	}

	c := &CacheDB{
		db:   db,
		path: dbPath,
		hot:  hot,
		now:  func() time.Time { return time.Now().UTC() },
	}

	// Create one table per source, in a stable order
	tables := make([]string, 0, len(ValidCacheTableNames))
	for table := range ValidCacheTableNames {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if err := c.CreateTable(TableSchema(table)); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return c, nil
}

// Path returns the database file path.
func (c *CacheDB) Path() string {
	return c.path
}

// CreateTable creates a table using the provided schema
func (c *CacheDB) CreateTable(schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *CacheDB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hot.Purge()
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// validateTableName checks if the table name is in the whitelist
func validateTableName(tableName string) error {
	if !ValidCacheTableNames[tableName] {
		return fmt.Errorf("invalid cache table name: %s", tableName)
	}
	return nil
}

func hotKey(tableName, key string) string {
	return tableName + "\x00" + key
}

// Get retrieves a cached value. defaultTTL applies to entries stored without
// their own TTL. Returns the data and whether a live entry was found.
func (c *CacheDB) Get(tableName, key string, defaultTTL time.Duration) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Check the in-memory layer first, then fall back to SQLite
	entry, ok := c.hot.Get(hotKey(tableName, key))
	if !ok {
		query := fmt.Sprintf(`SELECT data, cached_at, ttl_seconds FROM %s WHERE cache_key = ?`, tableName)

		var cachedAt, ttlSeconds int64
		err := c.db.QueryRow(query, key).Scan(&entry.data, &cachedAt, &ttlSeconds)
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to query cache: %w", err)
		}
		entry.cachedAt = time.Unix(cachedAt, 0).UTC()
		entry.ttl = time.Duration(ttlSeconds) * time.Second
		c.hot.Add(hotKey(tableName, key), entry)
	}

	// Entries stored without their own TTL use the caller's default
	ttl := entry.ttl
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if age := c.now().Sub(entry.cachedAt); age > ttl {
		slog.Debug("Cache expired", "table", tableName, "key", key, "age", age)
		return "", false, nil
	}

	return entry.data, true, nil
}

// Set stores a value in the cache. A ttl of 0 defers to the lookup default.
func (c *CacheDB) Set(tableName, key, data string, ttl time.Duration) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (cache_key, data, cached_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
	`, tableName)

	if _, err := c.db.Exec(query, key, data, now.Unix(), int64(ttl/time.Second)); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	// Keep the in-memory layer in sync with what was written
	c.hot.Add(hotKey(tableName, key), hotEntry{data: data, cachedAt: time.Unix(now.Unix(), 0).UTC(), ttl: ttl})
	return nil
}

// InvalidateSource deletes all entries from the specified cache table and
// returns the number of rows deleted.
func (c *CacheDB) InvalidateSource(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// The hot layer is shared between tables; dropping it all is simplest.
	c.hot.Purge()

	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rowsAffected)
	return rowsAffected, nil
}

// ClearExpired removes entries older than ttl that do not carry their own TTL.
func (c *CacheDB) ClearExpired(tableName string, ttl time.Duration) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().Unix()
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE (ttl_seconds = 0 AND cached_at < ?)
		   OR (ttl_seconds > 0 AND cached_at + ttl_seconds < ?)
	`, tableName)

	result, err := c.db.Exec(query, now-int64(ttl/time.Second), now)
	if err != nil {
		return fmt.Errorf("failed to clear expired cache: %w", err)
	}

	c.hot.Purge()

	if rows, _ := result.RowsAffected(); rows > 0 {
		slog.Info("Cleared expired cache entries", "table", tableName, "count", rows)
	}
	return nil
}

// SelectNegativeCacheTTL returns a TTL selector that caches "not found"
// results for negativeTTL (NegativeCacheTTL when 0) and everything else with
// the default TTL.
func SelectNegativeCacheTTL[T any](negativeTTL time.Duration, isNotFound func(T) bool) func(T) time.Duration {
	if negativeTTL <= 0 {
		negativeTTL = NegativeCacheTTL
	}
	return func(result T) time.Duration {
		if isNotFound(result) {
			return negativeTTL
		}
		return 0
	}
}

// GetOrFetch retrieves data from cache or fetches it using the provided function.
// A nil CacheDB fetches directly. ttlSelector may be nil; a selected TTL of 0
// means defaultTTL. Fetch errors are never cached.
func GetOrFetch[T any](c *CacheDB, tableName, cacheKey string, defaultTTL time.Duration, fetchFunc FetchFunc[T], ttlSelector func(T) time.Duration) (T, bool, error) {
	var zero T

	if c == nil {
		data, err := fetchFunc()
		return data, false, err
	}

	cached, fromCache, err := c.Get(tableName, cacheKey, defaultTTL)
	if err != nil {
		slog.Warn("Cache lookup failed, fetching directly", "table", tableName, "key", cacheKey, "error", err)
	} else if fromCache {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", tableName, "key", cacheKey)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "table", tableName, "key", cacheKey)
	}

	slog.Debug("Cache miss, fetching data", "table", tableName, "key", cacheKey)
	data, err := fetchFunc()
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch data: %w", err)
	}

	var ttl time.Duration
	if ttlSelector != nil {
		ttl = ttlSelector(data)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", cacheKey, "error", err)
		return data, false, nil
	}
	if err := c.Set(tableName, cacheKey, string(jsonData), ttl); err != nil {
		// Caching failure shouldn't stop the process
		slog.Warn("Failed to cache data", "table", tableName, "key", cacheKey, "error", err)
	}

	return data, false, nil
}
