package utils

import (
	"strconv"
	"strings"
	"unicode"

	"troop-fundraiser/models"
)

// Slugify builds a URL-safe slug from a display name.
// "Sam O'Neil Jr." -> "sam-oneil-jr"
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastDash = false
		case r == '\'' || r == '.':
			// dropped without a separator
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug returns base, or base with a numeric suffix, that is not in taken.
func UniqueSlug(base string, taken map[string]bool) string {
	if base == "" {
		base = "scout"
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// ReferralURL builds the shareable storefront link for a scout.
func ReferralURL(baseURL string, scout models.Scout) string {
	return strings.TrimRight(baseURL, "/") + "/?scout=" + scout.Slug
}
