package cmdutil

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lepinkainen/coverfetch/internal/fileutil"
)

// BaseCommandConfig holds the file locations of a family command
type BaseCommandConfig struct {
	// ConfigKey is the family name and config section ("artworks").
	ConfigKey string
	// Input is the entity list; falls back to <family>.input.
	Input string
	// CacheFile is the JSON cache file; falls back to <family>.cachefile.
	CacheFile string
}

// ResolvePaths fills empty paths from config and checks that the input
// list exists.
func ResolvePaths(fs afero.Fs, cfg *BaseCommandConfig) error {
	if cfg.Input == "" {
		cfg.Input = viper.GetString(cfg.ConfigKey + ".input")
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = viper.GetString(cfg.ConfigKey + ".cachefile")
	}

	if cfg.Input == "" {
		return fmt.Errorf("input file is required (provide via --input flag or %s.input in config)", cfg.ConfigKey)
	}
	if cfg.CacheFile == "" {
		return fmt.Errorf("cache file is required (provide via --output flag or %s.cachefile in config)", cfg.ConfigKey)
	}
	if !fileutil.FileExists(fs, cfg.Input) {
		return fmt.Errorf("input file %s does not exist", cfg.Input)
	}

	return nil
}
