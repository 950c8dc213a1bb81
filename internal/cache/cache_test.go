package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/lepinkainen/coverfetch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupResult struct {
	URL      string `json:"url"`
	NotFound bool   `json:"not_found"`
}

func setupTestCache(t *testing.T) *CacheDB {
	t.Helper()

	env := testutil.NewTestEnv(t)
	c, err := NewCacheDB(env.Path("test_cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func withClock(c *CacheDB, at *time.Time) {
	c.now = func() time.Time { return *at }
}

func TestGetOrFetch_CacheMissThenHit(t *testing.T) {
	c := setupTestCache(t)

	fetches := 0
	fetch := func() (lookupResult, error) {
		fetches++
		return lookupResult{URL: "https://example.test/a.jpg"}, nil
	}

	first, fromCache, err := GetOrFetch(c, MetTable, "van gogh|starry night", time.Hour, fetch, nil)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "https://example.test/a.jpg", first.URL)

	second, fromCache, err := GetOrFetch(c, MetTable, "van gogh|starry night", time.Hour, fetch, nil)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestGetOrFetch_NilCacheFetchesDirectly(t *testing.T) {
	fetches := 0
	for range 2 {
		_, fromCache, err := GetOrFetch(nil, MetTable, "k", time.Hour, func() (int, error) {
			fetches++
			return 42, nil
		}, nil)
		require.NoError(t, err)
		assert.False(t, fromCache)
	}
	assert.Equal(t, 2, fetches)
}

func TestGetOrFetch_FetchErrorIsNotCached(t *testing.T) {
	c := setupTestCache(t)

	_, _, err := GetOrFetch(c, AICTable, "k", time.Hour, func() (lookupResult, error) {
		return lookupResult{}, errors.New("boom")
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, found, err := c.Get(AICTable, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetOrFetch_NegativeEntriesExpireSooner(t *testing.T) {
	c := setupTestCache(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(c, &now)

	selector := SelectNegativeCacheTTL(0, func(r lookupResult) bool { return r.NotFound })

	_, _, err := GetOrFetch(c, WikimediaTable, "miss", DefaultCacheTTL, func() (lookupResult, error) {
		return lookupResult{NotFound: true}, nil
	}, selector)
	require.NoError(t, err)
	_, _, err = GetOrFetch(c, WikimediaTable, "hit", DefaultCacheTTL, func() (lookupResult, error) {
		return lookupResult{URL: "https://x"}, nil
	}, selector)
	require.NoError(t, err)

	now = now.Add(NegativeCacheTTL + time.Hour)

	_, found, err := c.Get(WikimediaTable, "miss", DefaultCacheTTL)
	require.NoError(t, err)
	assert.False(t, found, "negative entry should have expired")

	_, found, err = c.Get(WikimediaTable, "hit", DefaultCacheTTL)
	require.NoError(t, err)
	assert.True(t, found, "positive entry should still be live")
}

func TestSelectNegativeCacheTTL_CustomTTL(t *testing.T) {
	selector := SelectNegativeCacheTTL(time.Hour, func(r lookupResult) bool { return r.NotFound })

	assert.Equal(t, time.Hour, selector(lookupResult{NotFound: true}))
	assert.Zero(t, selector(lookupResult{URL: "https://x"}))
}

func TestCacheDB_PersistsAcrossReopen(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("reopen.db")

	c, err := NewCacheDB(path)
	require.NoError(t, err)
	require.NoError(t, c.Set(OpenLibraryTable, "key", `{"url":"u"}`, 0))
	require.NoError(t, c.Close())

	reopened, err := NewCacheDB(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	data, found, err := reopened.Get(OpenLibraryTable, "key", time.Hour)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"url":"u"}`, data)
}

func TestCacheDB_InvalidTableName(t *testing.T) {
	c := setupTestCache(t)

	_, _, err := c.Get("users; DROP TABLE x", "k", time.Hour)
	require.Error(t, err)
	require.Error(t, c.Set("nope_cache", "k", "v", 0))
	_, err = c.InvalidateSource("nope_cache")
	require.Error(t, err)
}

func TestCacheDB_InvalidateSource(t *testing.T) {
	c := setupTestCache(t)

	require.NoError(t, c.Set(YouTubeTable, "a", "1", 0))
	require.NoError(t, c.Set(YouTubeTable, "b", "2", 0))
	require.NoError(t, c.Set(GoogleBooksTable, "a", "3", 0))

	rows, err := c.InvalidateSource(YouTubeTable)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rows)

	_, found, err := c.Get(YouTubeTable, "a", time.Hour)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(GoogleBooksTable, "a", time.Hour)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCacheDB_ClearExpired(t *testing.T) {
	c := setupTestCache(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(c, &now)

	require.NoError(t, c.Set(MetTable, "old", "1", 0))
	now = now.Add(2 * time.Hour)
	require.NoError(t, c.Set(MetTable, "new", "2", 0))

	require.NoError(t, c.ClearExpired(MetTable, time.Hour))

	_, found, err := c.Get(MetTable, "old", 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(MetTable, "new", 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestTableForSource(t *testing.T) {
	table, err := TableForSource("met")
	require.NoError(t, err)
	assert.Equal(t, MetTable, table)

	table, err = TableForSource("google")
	require.NoError(t, err)
	assert.Equal(t, GoogleBooksTable, table)

	_, err = TableForSource("tmdb")
	require.Error(t, err)
}
