package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/coverfetch/cmd/artworks"
	"github.com/lepinkainen/coverfetch/cmd/books"
	"github.com/lepinkainen/coverfetch/cmd/videos"
	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/cmdutil"
	"github.com/lepinkainen/coverfetch/internal/config"
)

var (
	runArtworks = artworks.Run
	runBooks    = books.Run
	runVideos   = videos.Run
)

// CLI represents the complete command structure for the coverfetch application
type CLI struct {
	// Global flags
	Verbose bool `short:"v" help:"Enable debug logging"`

	// Datasette flags
	Datasette   bool   `help:"Export records to Datasette after the run (overrides datasette.enabled)"`
	DatasetteDB string `help:"Path to the Datasette SQLite database file"`

	// Cache flags
	CacheDBFile     string `help:"Path to the response cache SQLite database file"`
	CacheTTL        string `help:"Response cache time-to-live (e.g. 720h for 30 days)"`
	NoResponseCache bool   `help:"Do not read or write the response cache"`

	Artworks ArtworksCmd `cmd:"" help:"Resolve artwork images (Wikimedia Commons, Met Museum, Art Institute of Chicago)"`
	Books    BooksCmd    `cmd:"" help:"Resolve book covers (Open Library, Google Books)"`
	Videos   VideosCmd   `cmd:"" help:"Resolve video thumbnails (YouTube)"`
	Cache    CacheCmd    `cmd:"" help:"Manage the response cache"`
}

// FamilyFlags are shared by the artworks, books and videos commands
type FamilyFlags struct {
	Input           string        `short:"f" help:"Path to the entity list (JSON, or YAML with .yaml/.yml)"`
	Output          string        `short:"o" help:"Path to the JSON cache file"`
	Delay           time.Duration `help:"Pause after each looked-up entity (0 uses the configured delay)"`
	CheckpointEvery int           `help:"Save the cache file after every N looked-up entities (0 saves only at the end)"`
	MetricsFile     string        `help:"Write Prometheus metrics to this file after the run"`
}

func (f FamilyFlags) params() cmdutil.Params {
	return cmdutil.Params{
		BaseCommandConfig: cmdutil.BaseCommandConfig{
			Input:     f.Input,
			CacheFile: f.Output,
		},
		Delay:           f.Delay,
		CheckpointEvery: f.CheckpointEvery,
		MetricsFile:     f.MetricsFile,
		Out:             os.Stdout,
	}
}

// ArtworksCmd represents the artworks command
type ArtworksCmd struct {
	FamilyFlags `embed:""`
}

// BooksCmd represents the books command
type BooksCmd struct {
	FamilyFlags `embed:""`
}

// VideosCmd represents the videos command
type VideosCmd struct {
	FamilyFlags `embed:""`
}

// CacheCmd groups the response cache subcommands
type CacheCmd struct {
	Invalidate InvalidateCacheCmd `cmd:"" help:"Delete all cached responses of one source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(false)
	initConfig()

	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("coverfetch"),
		kong.Description("Resolve one representative image URL per artwork, book or video."),
		kong.UsageOnError(),
	)

	if cli.Verbose {
		initLogging(true)
	}
	updateGlobalConfig(&cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run()
	if closeErr := cache.ResetGlobalCache(); closeErr != nil {
		slog.Debug("Failed to close response cache", "error", closeErr)
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("YouTubeAPIKey", "YOUTUBE_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
	if err := viper.BindEnv("GoogleBooksAPIKey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("No config file, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

// updateGlobalConfig applies the flags that were given on top of config.
func updateGlobalConfig(cli *CLI) {
	if cli.Datasette {
		viper.Set("datasette.enabled", true)
	}
	if cli.DatasetteDB != "" {
		viper.Set("datasette.dbfile", cli.DatasetteDB)
	}

	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoResponseCache {
		viper.Set("cache.enabled", false)
		config.SetResponseCacheEnabled(false)
	}
}

// Run methods for each command

func (a *ArtworksCmd) Run(ctx context.Context) error {
	return runArtworks(ctx, a.params())
}

func (b *BooksCmd) Run(ctx context.Context) error {
	return runBooks(ctx, b.params())
}

func (v *VideosCmd) Run(ctx context.Context) error {
	if config.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY is not set, every video lookup will come back empty")
	}
	return runVideos(ctx, v.params())
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
