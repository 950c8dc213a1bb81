package store

// Layout names the JSON fields a media family uses in its cache file.
// The three families share one record shape under different names.
type Layout struct {
	Family       string
	RecordsField string
	CreatorField string
	URLField     string
	WithField    string
	WithoutField string
}

var (
	// Artworks stores image URLs of paintings keyed "artist-title".
	Artworks = Layout{
		Family:       "artworks",
		RecordsField: "artworks",
		CreatorField: "artist",
		URLField:     "imageUrl",
		WithField:    "withImages",
		WithoutField: "withoutImages",
	}

	// Books stores cover URLs keyed "title-author".
	Books = Layout{
		Family:       "books",
		RecordsField: "books",
		CreatorField: "author",
		URLField:     "coverUrl",
		WithField:    "withCovers",
		WithoutField: "withoutCovers",
	}

	// Videos stores thumbnail URLs keyed "title-channel".
	Videos = Layout{
		Family:       "videos",
		RecordsField: "videos",
		CreatorField: "channel",
		URLField:     "thumbnailUrl",
		WithField:    "withThumbnails",
		WithoutField: "withoutThumbnails",
	}
)

// LayoutFor returns the layout of a family by name.
func LayoutFor(family string) (Layout, bool) {
	for _, l := range []Layout{Artworks, Books, Videos} {
		if l.Family == family {
			return l, true
		}
	}
	return Layout{}, false
}
