package media

import "strings"

// SecureURL rewrites a leading "http:" scheme to "https:". Other URLs,
// including relative ones, are returned unchanged.
func SecureURL(u string) string {
	if len(u) >= 5 && strings.EqualFold(u[:5], "http:") {
		return "https:" + u[5:]
	}
	return u
}

// PickLargest returns the first non-empty URL. Callers list the variants
// from largest to smallest, e.g. PickLargest(large, medium, thumbnail).
func PickLargest(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
