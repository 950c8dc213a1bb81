// Package artworks resolves painting images from museum catalogs.
package artworks

import (
	"context"

	"github.com/spf13/afero"

	"github.com/lepinkainen/coverfetch/internal/cmdutil"
	"github.com/lepinkainen/coverfetch/internal/entity"
	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/media/sources"
	"github.com/lepinkainen/coverfetch/internal/store"
)

// Family resolves artworks through Wikimedia Commons, the Met and the Art
// Institute of Chicago. Records from anything but Wikimedia are retried on
// every run.
var Family = cmdutil.Family{
	Layout:  store.Artworks,
	Key:     entity.CreatorTitle,
	Sources: Sources,
	Strict:  true,
}

// Sources returns the artwork sources, most trusted first.
func Sources(opts ...sources.Option) []media.Source {
	return []media.Source{
		sources.NewWikimedia(opts...),
		sources.NewMet(opts...),
		sources.NewAIC(opts...),
	}
}

// Run resolves the artworks listed in p.Input.
func Run(ctx context.Context, p cmdutil.Params) error {
	return cmdutil.RunFamily(ctx, afero.NewOsFs(), Family, p)
}
