package cmdutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsFallsBackToConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/books.json", []byte(`[]`), 0o644))
	viper.Set("books.input", "data/books.json")
	viper.Set("books.cachefile", "data/book-covers-cache.json")

	cfg := &BaseCommandConfig{ConfigKey: "books"}
	require.NoError(t, ResolvePaths(fs, cfg))

	require.Equal(t, "data/books.json", cfg.Input)
	require.Equal(t, "data/book-covers-cache.json", cfg.CacheFile)
}

func TestResolvePathsPrefersFlags(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "mine.json", []byte(`[]`), 0o644))
	viper.Set("artworks.input", "ignored.json")
	viper.Set("artworks.cachefile", "ignored-cache.json")

	cfg := &BaseCommandConfig{ConfigKey: "artworks", Input: "mine.json", CacheFile: "out.json"}
	require.NoError(t, ResolvePaths(fs, cfg))

	require.Equal(t, "mine.json", cfg.Input)
	require.Equal(t, "out.json", cfg.CacheFile)
}

func TestResolvePathsErrors(t *testing.T) {
	t.Cleanup(viper.Reset)
	fs := afero.NewMemMapFs()

	err := ResolvePaths(fs, &BaseCommandConfig{ConfigKey: "videos"})
	require.ErrorContains(t, err, "videos.input")

	err = ResolvePaths(fs, &BaseCommandConfig{ConfigKey: "videos", Input: "missing.json"})
	require.ErrorContains(t, err, "videos.cachefile")

	err = ResolvePaths(fs, &BaseCommandConfig{ConfigKey: "videos", Input: "missing.json", CacheFile: "c.json"})
	require.ErrorContains(t, err, "does not exist")
}
