// internal/utils/output/html.go

// Package output renders extracted components into their export formats.
package output

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/law-makers/snip/pkg/models"
)

// CleanComponentHTML strips script, style and metadata tags from component
// markup. Scripts and styles are collected through their own pipelines, so
// copies left in the markup would run twice. Inline event handler attributes
// are rewritten to empty data-snip-on-<event> markers: the handler code is
// removed, but the encapsulated script can still find the element it belongs
// to. Class, id and data attributes stay; scoped CSS depends on them.
func CleanComponentHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link[rel='stylesheet'], meta, noscript, template").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		for i, attr := range node.Attr {
			key := strings.ToLower(attr.Key)
			if strings.HasPrefix(key, "on") && len(key) > 2 {
				node.Attr[i] = html.Attribute{Key: models.HandlerMarkerPrefix + key[2:]}
			}
		}
	})

	// goquery wraps fragments in html/body; unwrap to the original markup.
	rendered, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}

// StripAttributes removes every attribute except those in keep. Used by the
// markdown export, where presentation attributes are noise.
func StripAttributes(htmlContent string, keep map[string]bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			if keep[attr.Key] {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	rendered, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}
