// Package markup pulls resource references out of HTML documents.
//
// Two parsers are provided: Tokenizer streams the document through the
// golang.org/x/net/html tokenizer, Document builds a goquery DOM and selects
// the elements. Both return raw attribute values; resolving and filtering them
// is left to the caller.
package markup

import (
	"fmt"
	"io"
	"strings"
)

// References holds the raw reference strings found in one document, each in
// document order.
type References struct {
	Anchors     []string // <a href>
	Images      []string // <img src>
	Stylesheets []string // <link rel="stylesheet" href>
	Scripts     []string // <script src>
}

// Len returns the total number of references.
func (r References) Len() int {
	return len(r.Anchors) + len(r.Images) + len(r.Stylesheets) + len(r.Scripts)
}

// Parser extracts references from HTML markup.
type Parser interface {
	Parse(body io.Reader) (References, error)
}

// Parser names accepted by New.
const (
	ParserTokenizer = "tokenizer"
	ParserDocument  = "document"
)

// New returns the parser registered under name. An empty name selects the
// tokenizer.
func New(name string) (Parser, error) {
	switch strings.ToLower(name) {
	case "", ParserTokenizer:
		return Tokenizer{}, nil
	case ParserDocument:
		return Document{}, nil
	default:
		return nil, fmt.Errorf("unknown parser %q", name)
	}
}

// isStylesheetRel reports whether a rel attribute value lists the
// "stylesheet" link type. Link types are space-separated and case-insensitive.
func isStylesheetRel(rel string) bool {
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}
