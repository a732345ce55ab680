// internal/extract/strategy.go
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/snip/internal/css"
	"github.com/law-makers/snip/internal/session"
	"github.com/law-makers/snip/internal/utils/output"
	"github.com/law-makers/snip/pkg/models"
)

// Strategy turns one matched element of a live page into a single output
// format. Strategies borrow the session; they never own its lifecycle.
type Strategy interface {
	Name() string
	Extract(s *session.Session, selector string, index int) (string, error)
}

// StrategyFor returns the strategy for format. The JSON strategy needs a
// schema; a nil schema degrades to a single "text" field.
func StrategyFor(format models.ExtractionFormat, schema JSONSchema) (Strategy, error) {
	switch format {
	case models.FormatHTML:
		return &HTMLStrategy{}, nil
	case models.FormatCSS:
		return &CSSStrategy{collector: css.NewCollector()}, nil
	case models.FormatJSON:
		if schema == nil {
			schema = JSONSchema{"text": ""}
		}
		return &JSONStrategy{Schema: schema}, nil
	case models.FormatMarkdown:
		return &MarkdownStrategy{}, nil
	}
	return nil, NewExtractError(ErrCodeValidation, fmt.Sprintf("unknown format %q", format), nil)
}

// HTMLStrategy emits the cleaned markup of the matched element.
type HTMLStrategy struct{}

func (*HTMLStrategy) Name() string { return "html" }

func (*HTMLStrategy) Extract(s *session.Session, selector string, index int) (string, error) {
	raw, err := s.OuterHTML(selector, index)
	if err != nil {
		return "", err
	}
	return output.CleanComponentHTML(raw)
}

// CSSStrategy emits only the collected rules affecting the matched subtree,
// unscoped.
type CSSStrategy struct {
	collector *css.Collector
}

func (*CSSStrategy) Name() string { return "css" }

func (cs *CSSStrategy) Extract(s *session.Session, selector string, index int) (string, error) {
	collected, err := cs.collector.Collect(s, selector, index)
	if err != nil {
		return "", err
	}
	return collected.CSS(), nil
}

// JSONStrategy evaluates a field schema against the matched subtree.
type JSONStrategy struct {
	Schema JSONSchema
}

func (*JSONStrategy) Name() string { return "json" }

func (js *JSONStrategy) Extract(s *session.Session, selector string, index int) (string, error) {
	raw, err := s.OuterHTML(selector, index)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	root := doc.Find("body").Children().First()
	fields := js.Schema.Apply(root)
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarkdownStrategy emits the matched element as GitHub-flavored markdown with
// links resolved against the page URL.
type MarkdownStrategy struct{}

func (*MarkdownStrategy) Name() string { return "markdown" }

func (*MarkdownStrategy) Extract(s *session.Session, selector string, index int) (string, error) {
	raw, err := s.OuterHTML(selector, index)
	if err != nil {
		return "", err
	}
	return output.ToMarkdown(raw, s.URL)
}
