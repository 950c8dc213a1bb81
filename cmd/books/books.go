// Package books resolves book cover images.
package books

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

// Family resolves books through Open Library, then Google Books. Any record
// with a cover is final.
var Family = cmdutil.Family{
	Layout:  store.Books,
	Key:     entity.TitleCreator,
	Sources: Sources,
}

// Sources returns the book sources, most trusted first. Google Books uses
// the configured API key when there is one.
func Sources(opts ...sources.Option) []media.Source {
	googleOpts := append([]sources.Option{sources.WithAPIKey(config.GoogleBooksAPIKey)}, opts...)
	return []media.Source{
		sources.NewOpenLibrary(opts...),
		sources.NewGoogleBooks(googleOpts...),
	}
}

// Run resolves the books listed in p.Input.
func Run(ctx context.Context, p cmdutil.Params) error {
	return cmdutil.RunFamily(ctx, afero.NewOsFs(), Family, p)
}
