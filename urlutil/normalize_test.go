package urlutil

import (
	"errors"
	"net/url"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		source   string
		expected string
		wantErr  bool
	}{
		{
			name:     "fragment stripping",
			input:    "https://example.com/page#section",
			expected: "https://example.com/page",
		},
		{
			name:     "trailing slash preserved",
			input:    "https://example.com/about/",
			expected: "https://example.com/about/",
		},
		{
			name:     "query params preserved",
			input:    "https://example.com/search?q=foo#top",
			expected: "https://example.com/search?q=foo",
		},
		{
			name:     "relative path resolved against source",
			input:    "post1",
			source:   "https://example.com/blog/",
			expected: "https://example.com/blog/post1",
		},
		{
			name:     "root-relative resolved",
			input:    "/about#team",
			source:   "https://example.com/blog/post",
			expected: "https://example.com/about",
		},
		{
			name:     "dot segments resolved",
			input:    "../img/logo.png",
			source:   "http://example.com/a/b/page.html",
			expected: "http://example.com/a/img/logo.png",
		},
		{
			name:     "scheme-relative takes source scheme",
			input:    "//cdn.example.com/app.js",
			source:   "https://example.com/",
			expected: "https://cdn.example.com/app.js",
		},
		{
			name:     "query-only reference",
			input:    "?page=2",
			source:   "http://example.com/list",
			expected: "http://example.com/list?page=2",
		},
		{
			name:     "absolute reference ignores source",
			input:    "https://other.com/x",
			source:   "https://example.com/",
			expected: "https://other.com/x",
		},
		{
			name:     "empty path becomes root",
			input:    "http://example.com",
			expected: "http://example.com/",
		},
		{
			name:     "empty path with query becomes root",
			input:    "http://example.com:8080?x=1#top",
			expected: "http://example.com:8080/?x=1",
		},
		{
			name:     "absolute reference without path against source",
			input:    "https://example.com",
			source:   "https://example.com/blog/post",
			expected: "https://example.com/",
		},
		{
			name:    "empty string returns error",
			input:   "",
			wantErr: true,
		},
		{
			name:    "relative without source returns error",
			input:   "/about",
			wantErr: true,
		},
		{
			name:    "invalid URL returns error",
			input:   "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("Normalize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNormalizeRelativeWithoutSource(t *testing.T) {
	_, err := Normalize("images/a.png", "")
	if !errors.Is(err, ErrNotAbsolute) {
		t.Fatalf("expected ErrNotAbsolute, got %v", err)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []struct {
		raw    string
		source string
	}{
		{"https://example.com/page#section", ""},
		{"HTTP://example.com/a/../b/?x=1#frag", ""},
		{"../up/one", "http://example.com/a/b/c"},
		{"#only-fragment", "http://example.com/doc"},
		{"//cdn.example.com/lib.js?v=3", "https://example.com/"},
		{"http://example.com/a%20b/", ""},
		{"http://example.com:8080/path?", ""},
		{"http://example.com", ""},
		{"https://example.com?q=1", "https://example.com/x"},
	}

	for _, in := range inputs {
		once, err := Normalize(in.raw, in.source)
		if err != nil {
			t.Fatalf("Normalize(%q, %q) error: %v", in.raw, in.source, err)
		}
		twice, err := Normalize(once, "")
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", in.raw, once, twice)
		}
		again, err := Normalize(once, in.source)
		if err != nil {
			t.Fatalf("Normalize(%q, %q) error: %v", once, in.source, err)
		}
		if once != again {
			t.Errorf("not idempotent with source: %q -> %q", once, again)
		}

		parsed, err := url.Parse(once)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", once, err)
		}
		if parsed.Fragment != "" {
			t.Errorf("fragment survived normalization: %q", once)
		}
	}
}

func TestNormalizeMatchesStandardResolution(t *testing.T) {
	base := "http://a/b/c/d;p?q"
	refs := []string{"g", "./g", "g/", "/g", "?y", "g?y", ";x", "..", "../g", "../../g", "g;x?y"}

	baseURL, err := url.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range refs {
		refURL, err := url.Parse(ref)
		if err != nil {
			t.Fatal(err)
		}
		want := baseURL.ResolveReference(refURL).String()

		got, err := Normalize(ref, base)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", ref, err)
		}
		if got != want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", ref, base, got, want)
		}
	}
}

func TestIsSkippable(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"#", true},
		{"#section", true},
		{"mailto:user@example.com", true},
		{"MAILTO:user@example.com", true},
		{"tel:+1234567890", true},
		{"javascript:void(0)", true},
		{" javascript:alert(1)", true},
		{"/about", false},
		{"page#section", false},
		{"https://example.com", false},
		{"data:image/png;base64,AAAA", false},
	}

	for _, tt := range tests {
		if got := IsSkippable(tt.input); got != tt.expected {
			t.Errorf("IsSkippable(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
