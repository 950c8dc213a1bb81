// Package videos resolves YouTube thumbnails.
package videos

import (
	"context"

	"github.com/spf13/afero"

	"github.com/lepinkainen/coverfetch/internal/cmdutil"
	"github.com/lepinkainen/coverfetch/internal/config"
	"github.com/lepinkainen/coverfetch/internal/entity"
	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/media/sources"
	"github.com/lepinkainen/coverfetch/internal/store"
)

// Family resolves videos through the YouTube search API.
var Family = cmdutil.Family{
	Layout:  store.Videos,
	Key:     entity.TitleCreator,
	Sources: Sources,
	Strict:  true,
}

// Sources returns the YouTube source configured with YOUTUBE_API_KEY.
func Sources(opts ...sources.Option) []media.Source {
	ytOpts := append([]sources.Option{sources.WithAPIKey(config.YouTubeAPIKey)}, opts...)
	return []media.Source{sources.NewYouTube(ytOpts...)}
}

// Run resolves the videos listed in p.Input.
func Run(ctx context.Context, p cmdutil.Params) error {
	return cmdutil.RunFamily(ctx, afero.NewOsFs(), Family, p)
}
