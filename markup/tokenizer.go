package markup

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Tokenizer is a streaming Parser built on the x/net/html tokenizer. It never
// holds more than one token in memory, which keeps large pages cheap.
type Tokenizer struct{}

// Parse walks the token stream and collects anchor, image, stylesheet and
// script references. Malformed markup is tolerated; only read errors from
// body are returned, together with whatever was collected before them.
func (Tokenizer) Parse(body io.Reader) (References, error) {
	tokenizer := html.NewTokenizer(body)
	var refs References

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return refs, nil
			}
			return refs, fmt.Errorf("tokenize html: %w", err)
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "a":
				if href, ok := attr(token, "href"); ok {
					refs.Anchors = append(refs.Anchors, href)
				}
			case "img":
				if src, ok := attr(token, "src"); ok {
					refs.Images = append(refs.Images, src)
				}
			case "link":
				rel, _ := attr(token, "rel")
				if !isStylesheetRel(rel) {
					continue
				}
				if href, ok := attr(token, "href"); ok {
					refs.Stylesheets = append(refs.Stylesheets, href)
				}
			case "script":
				if src, ok := attr(token, "src"); ok {
					refs.Scripts = append(refs.Scripts, src)
				}
			}
		}
	}
}

func attr(token html.Token, key string) (string, bool) {
	for _, a := range token.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
