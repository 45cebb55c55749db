// Package urlutil resolves, normalizes and classifies URLs discovered while
// crawling.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a reference cannot be turned into an
// absolute URL with both a scheme and a host.
var ErrNotAbsolute = errors.New("URL must have both scheme and host")

// deadSchemes are reference prefixes that can never be fetched.
var deadSchemes = []string{"mailto:", "tel:", "javascript:"}

// Normalize resolves raw against source and strips the fragment.
// Normalization includes:
// - Resolving relative references with RFC 3986 rules when source is set
// - Stripping fragments (#section)
// - Giving an empty path the root path, so http://host and http://host/ match
// - Preserving path, query and trailing slashes as written
//
// The result is always absolute. Normalize is idempotent: feeding its output
// back in (with or without source) returns the same string.
func Normalize(raw string, source string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	if source != "" {
		resolved, err := ResolveReference(source, raw)
		if err != nil {
			return "", fmt.Errorf("normalize URL %q: %w", raw, err)
		}
		raw = resolved
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", raw, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("normalize URL %q: %w", raw, ErrNotAbsolute)
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
		parsed.RawPath = ""
	}

	return parsed.String(), nil
}

// IsSkippable reports whether a raw reference should be dropped before
// normalization: empty values, bare fragments and known-dead schemes.
func IsSkippable(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return true
	}
	lower := strings.ToLower(raw)
	for _, scheme := range deadSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
