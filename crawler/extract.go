package crawler

import (
	"fmt"
	"io"

	"github.com/lukemcguire/linkrot/markup"
	"github.com/lukemcguire/linkrot/result"
	"github.com/lukemcguire/linkrot/urlutil"
)

// Extract parses body with parser and returns one Resource per distinct
// (kind, URL) reference. References are resolved against sourceURL,
// normalized, and dropped when they are fragment-only, use a non-HTTP scheme
// or cannot be resolved. On a parse error the references found so far are
// returned along with the error.
func Extract(parser markup.Parser, body io.Reader, sourceURL string) ([]result.Resource, error) {
	refs, parseErr := parser.Parse(body)

	type key struct {
		kind result.Kind
		url  string
	}
	seen := make(map[key]bool)
	resources := make([]result.Resource, 0, refs.Len())

	add := func(kind result.Kind, raws []string) {
		for _, raw := range raws {
			if urlutil.IsSkippable(raw) {
				continue
			}
			normalized, err := urlutil.Normalize(raw, sourceURL)
			if err != nil || !urlutil.IsHTTPScheme(normalized) {
				continue
			}
			k := key{kind: kind, url: normalized}
			if seen[k] {
				continue
			}
			seen[k] = true
			resources = append(resources, result.Resource{
				URL:        normalized,
				Kind:       kind,
				SourcePage: sourceURL,
			})
		}
	}

	add(result.KindLink, refs.Anchors)
	add(result.KindImage, refs.Images)
	add(result.KindStylesheet, refs.Stylesheets)
	add(result.KindScript, refs.Scripts)

	if parseErr != nil {
		return resources, fmt.Errorf("extract resources from %s: %w", sourceURL, parseErr)
	}
	return resources, nil
}
