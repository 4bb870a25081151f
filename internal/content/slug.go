package content

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a URL-safe slug: lower-case ASCII letters and
// digits in groups separated by single hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
