// internal/js/collector.go

// Package js collects the JavaScript attached to a component subtree and
// rewrites it into a self-contained, re-run-safe closure.
package js

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/session"
	"github.com/law-makers/snip/pkg/models"
)

// Collector gathers inline handlers, inline scripts and external script
// references for a selected subtree. Collection is best-effort: what the
// page does not expose (closure-captured listeners, framework bindings) is
// counted where introspectable and otherwise left behind.
type Collector struct{}

// NewCollector creates a JavaScript collector.
func NewCollector() *Collector {
	return &Collector{}
}

// handlerScript walks the subtree of one matched element for on* attribute
// handlers and, where the environment exposes getEventListeners, counts
// programmatic listeners. An attribute handler also surfaces as a listener,
// so one is subtracted per element/event pair to avoid double counting.
const handlerScript = `(() => {
	const root = document.querySelectorAll(%s)[%d];
	if (!root) return null;

	const els = [root, ...root.querySelectorAll('*')];

	const handlers = [];
	let listeners = 0;

	els.forEach(el => {
		const attrEvents = new Set();
		for (const attr of el.attributes) {
			const name = attr.name.toLowerCase();
			if (name.startsWith('on') && name.length > 2 && attr.value.trim()) {
				const event = name.slice(2);
				if (attrEvents.has(event)) continue;
				attrEvents.add(event);
				handlers.push({ tag: el.tagName.toLowerCase(), event: event, attribute: name, code: attr.value });
			}
		}
		if (typeof getEventListeners === 'function') {
			try {
				const map = getEventListeners(el);
				for (const event in map) {
					let n = map[event].length;
					if (attrEvents.has(event)) n--;
					if (n > 0) listeners += n;
				}
			} catch (e) {}
		}
	});

	return { handlers: handlers, listeners: listeners };
})()`

type rawHandlers struct {
	Handlers []struct {
		Tag       string `json:"tag"`
		Event     string `json:"event"`
		Attribute string `json:"attribute"`
		Code      string `json:"code"`
	} `json:"handlers"`
	Listeners int `json:"listeners"`
}

// Collect gathers the JavaScript surface of the index-th element matched by
// selector. Sibling matches never contribute; each component carries only its
// own handlers and scripts.
func (c *Collector) Collect(s *session.Session, selector string, index int) (*models.JavaScriptCollectionResult, error) {
	expr := fmt.Sprintf(handlerScript, strconv.Quote(selector), index)

	var raw *rawHandlers
	if err := s.Evaluate(expr, &raw); err != nil {
		return nil, fmt.Errorf("javascript collection failed: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", session.ErrNoMatch, selector)
	}

	result := &models.JavaScriptCollectionResult{
		ListenerCount: raw.Listeners,
	}
	for _, h := range raw.Handlers {
		result.InlineHandlers = append(result.InlineHandlers, models.InlineHandler{
			Tag:       h.Tag,
			Event:     h.Event,
			Attribute: h.Attribute,
			Code:      h.Code,
		})
	}
	result.HandlerCount = len(result.InlineHandlers)

	if err := c.collectScripts(s, selector, index, result); err != nil {
		return nil, err
	}

	log.Debug().
		Str("selector", selector).
		Int("index", index).
		Int("handlers", result.HandlerCount).
		Int("listeners", result.ListenerCount).
		Int("inline_scripts", len(result.InlineScripts)).
		Int("external_scripts", len(result.ExternalScripts)).
		Msg("JavaScript collection completed")

	return result, nil
}

func (c *Collector) collectScripts(s *session.Session, selector string, index int, result *models.JavaScriptCollectionResult) error {
	html, err := s.DocumentHTML()
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return scanScripts(html, selector, index, result)
}

// scanScripts scans serialized document markup for script tags belonging to
// the index-th match of selector. Inline scripts qualify when they sit inside
// that subtree or textually reference the selector; external scripts inside
// the subtree are recorded by URL only, never fetched. Scripts inside a
// sibling match are never picked up.
func scanScripts(documentHTML, selector string, index int, result *models.JavaScriptCollectionResult) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentHTML))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	root := doc.Find(selector).Eq(index)

	doc.Find("script").Each(func(_ int, scr *goquery.Selection) {
		anc := scr.Closest(selector)
		inside := root.Length() > 0 && anc.Length() > 0 && anc.Nodes[0] == root.Nodes[0]
		if src, hasSrc := scr.Attr("src"); hasSrc {
			if inside {
				result.ExternalScripts = append(result.ExternalScripts, src)
			}
			return
		}
		if typ, _ := scr.Attr("type"); typ != "" && typ != "text/javascript" && typ != "module" {
			return
		}
		code := strings.TrimSpace(scr.Text())
		if code == "" {
			return
		}
		if inside || referencesSelector(code, selector) {
			result.InlineScripts = append(result.InlineScripts, code)
		}
	})

	return nil
}

// referencesSelector reports whether script code mentions the selector, either
// verbatim or as a quoted class/id token (getElementById, classList checks).
func referencesSelector(code, selector string) bool {
	if strings.Contains(code, selector) {
		return true
	}
	if len(selector) > 1 && (selector[0] == '.' || selector[0] == '#') {
		token := selector[1:]
		return strings.Contains(code, `'`+token+`'`) || strings.Contains(code, `"`+token+`"`)
	}
	return false
}
