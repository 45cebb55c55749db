package markup

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Document is a Parser that loads the whole page into a goquery DOM.
type Document struct{}

// Parse builds a document from body and selects every referencing element.
func (Document) Parse(body io.Reader) (References, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return References{}, fmt.Errorf("parse html document: %w", err)
	}

	var refs References
	refs.Anchors = collect(doc, "a[href]", "href")
	refs.Images = collect(doc, "img[src]", "src")
	refs.Scripts = collect(doc, "script[src]", "src")

	doc.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		if !isStylesheetRel(s.AttrOr("rel", "")) {
			return
		}
		refs.Stylesheets = append(refs.Stylesheets, s.AttrOr("href", ""))
	})

	return refs, nil
}

func collect(doc *goquery.Document, selector, key string) []string {
	var values []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if val, ok := s.Attr(key); ok {
			values = append(values, val)
		}
	})
	return values
}
