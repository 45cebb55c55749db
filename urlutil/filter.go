package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// IsSameDomain checks if targetURL belongs to baseDomain.
// The comparison is exact on the authority component: subdomains and
// differing ports are different domains. Unparseable URLs and URLs without
// a scheme or host never match.
func IsSameDomain(targetURL string, baseDomain string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	return parsed.Host == baseDomain
}

// Host returns the authority component of rawURL, or an empty string when it
// cannot be parsed.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// ResolveReference resolves a possibly-relative ref URL against a base URL.
// If ref is absolute, it is returned as-is. Otherwise it is resolved
// relative to base using net/url.URL.ResolveReference.
func ResolveReference(base string, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse ref URL %q: %w", ref, err)
	}

	resolved := baseURL.ResolveReference(refURL)
	return resolved.String(), nil
}
