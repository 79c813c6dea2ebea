package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a group title to a URL-safe slug.
//
// The transformation rules are:
//   - Latin letters are lowercased
//   - Digits, hyphens and underscores are kept as-is
//   - Runs of spaces become a single hyphen
//   - All other characters are removed
//   - Leading and trailing hyphens are trimmed
//   - The result is cut to 100 characters
//
// Example:
//
//	Slugify("Hello World")    // returns "hello-world"
//	Slugify("Go 1.24 news!")  // returns "go-124-news"
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 32)
			lastHyphen = false
		case r == '-' || r == ' ':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

var slugRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// ValidateSlug validates a group slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrSlugRequired
	}
	if utf8.RuneCountInString(slug) > 100 {
		return ErrSlugTooLong
	}
	if !slugRegex.MatchString(slug) {
		return ErrSlugInvalidChars
	}
	return nil
}
