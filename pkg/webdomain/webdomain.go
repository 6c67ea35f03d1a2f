// Package webdomain normalizes web domain keys and derives fallback display
// names from them. The normalized form (trailing slash stripped, lower-cased)
// is the dedup and lookup identity for company records.
package webdomain

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a raw domain key: surrounding whitespace is trimmed,
// a single trailing slash is stripped, and the remainder is lower-cased.
// Empty input stays empty; callers treat "" as an absent key.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "/")
	return strings.ToLower(s)
}

// DeriveNameFromDomain builds a deterministic display name from a normalized
// domain key, used when enrichment is unavailable. The first label is
// capitalized: "acme.com" becomes "Acme". An empty key yields "Unknown".
func DeriveNameFromDomain(domain string) string {
	if domain == "" {
		return "Unknown"
	}

	label := domain
	if dot := strings.IndexByte(domain, '.'); dot > 0 {
		label = domain[:dot]
	}
	// Hostnames may carry a www prefix that adds nothing to a display name.
	if label == "www" {
		rest := strings.TrimPrefix(domain, "www.")
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			label = rest[:dot]
		} else if rest != "" {
			label = rest
		}
	}

	return capitalize(label)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
