// internal/extract/json_schema.go
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// JSONSchema maps output field names to extraction expressions. An expression
// is "selector", "selector@attr" or "@attr"; the bare form takes trimmed text
// content, the @attr forms take an attribute, and "@attr" alone reads from
// the component root.
type JSONSchema map[string]string

// Apply evaluates the schema against the component root. Fields whose
// selector matches nothing come back as empty strings rather than being
// dropped, so the output shape is stable across pages.
func (js JSONSchema) Apply(root *goquery.Selection) map[string]string {
	out := make(map[string]string, len(js))
	for field, expr := range js {
		out[field] = evalExpr(root, expr)
	}
	return out
}

func evalExpr(root *goquery.Selection, expr string) string {
	selector, attr, hasAttr := strings.Cut(expr, "@")
	selector = strings.TrimSpace(selector)
	attr = strings.TrimSpace(attr)

	target := root
	if selector != "" {
		target = root.Find(selector).First()
		if target.Length() == 0 {
			return ""
		}
	}

	if hasAttr && attr != "" {
		val, _ := target.Attr(attr)
		return val
	}
	return strings.TrimSpace(target.Text())
}
