// internal/session/page.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrNoMatch is returned by page queries when zero elements match.
var ErrNoMatch = errors.New("no element matched selector")

// defaultEvalTimeout bounds individual page queries so a wedged renderer
// cannot hang the calling extraction forever.
const defaultEvalTimeout = 15 * time.Second

// Evaluate runs a JavaScript expression in the page and unmarshals the JSON
// result into out.
func (s *Session) Evaluate(expr string, out any) error {
	s.Touch()
	tctx, cancel := context.WithTimeout(s.ctx, defaultEvalTimeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.Evaluate(expr, out))
}

// Count returns the number of elements matching selector.
func (s *Session) Count(selector string) (int, error) {
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(selector))
	var n int
	if err := s.Evaluate(expr, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// OuterHTML returns the outer HTML of the index-th element matching selector.
// The positional index makes "element 3 of 5" addressable deterministically.
func (s *Session) OuterHTML(selector string, index int) (string, error) {
	expr := fmt.Sprintf(`(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	return el ? el.outerHTML : null;
})()`, strconv.Quote(selector), index)

	var html *string
	if err := s.Evaluate(expr, &html); err != nil {
		return "", err
	}
	if html == nil {
		return "", fmt.Errorf("%w: %s[%d]", ErrNoMatch, selector, index)
	}
	return *html, nil
}

// DocumentHTML returns the full serialized document.
func (s *Session) DocumentHTML() (string, error) {
	var html string
	if err := s.Evaluate(`document.documentElement.outerHTML`, &html); err != nil {
		return "", err
	}
	return html, nil
}

// Text returns the trimmed text content of the index-th match of selector.
func (s *Session) Text(selector string, index int) (string, error) {
	expr := fmt.Sprintf(`(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	return el ? el.textContent.trim() : null;
})()`, strconv.Quote(selector), index)

	var text *string
	if err := s.Evaluate(expr, &text); err != nil {
		return "", err
	}
	if text == nil {
		return "", fmt.Errorf("%w: %s[%d]", ErrNoMatch, selector, index)
	}
	return *text, nil
}

// Attribute returns an attribute value from the index-th match of selector.
func (s *Session) Attribute(selector string, index int, attr string) (string, error) {
	expr := fmt.Sprintf(`(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	return el ? el.getAttribute(%s) : null;
})()`, strconv.Quote(selector), index, strconv.Quote(attr))

	var val *string
	if err := s.Evaluate(expr, &val); err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

// Screenshot captures the current viewport as PNG bytes.
func (s *Session) Screenshot() ([]byte, error) {
	s.Touch()
	tctx, cancel := context.WithTimeout(s.ctx, defaultEvalTimeout)
	defer cancel()
	var buf []byte
	if err := chromedp.Run(tctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}
