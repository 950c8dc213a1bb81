package media

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// IsAcceptableMatch reports whether a catalog candidate plausibly refers to
// the queried work: the first space-separated word of queriedTitle must occur
// in candidateTitle, ignoring case. The check is intentionally weak and only
// filters out clearly unrelated hits.
func IsAcceptableMatch(candidateTitle, queriedTitle string) bool {
	firstWord, _, _ := strings.Cut(queriedTitle, " ")
	return strings.Contains(folder.String(candidateTitle), folder.String(firstWord))
}
