// Package entity loads the static entity lists (artworks, books, videos) and
// derives the keys their cache records are stored under.
package entity

import (
	"strings"
	"unicode/utf16"
)

// Entity is one item that needs media. Index is its position in the input
// list and doubles as the "day" of the record.
type Entity struct {
	Title   string
	Creator string
	Index   int
}

// Key joins parts with "-" and lowercases the result, replacing everything
// outside [a-z0-9-] with "-". The replacement counts UTF-16 code units, so a
// character outside the Basic Multilingual Plane (most emoji) becomes "--".
// This keeps keys identical to the ones in existing cache files. Distinct
// inputs can collide.
func Key(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "-"))

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(strings.Repeat("-", utf16.RuneLen(r)))
	}
	return b.String()
}

// KeyFunc derives the record key of an entity.
type KeyFunc func(Entity) string

// CreatorTitle keys entities as "creator-title" (artworks).
func CreatorTitle(e Entity) string {
	return Key(e.Creator, e.Title)
}

// TitleCreator keys entities as "title-creator" (books, videos).
func TitleCreator(e Entity) string {
	return Key(e.Title, e.Creator)
}
