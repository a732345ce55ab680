// internal/extract/json_schema_test.go
package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func schemaRoot(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Find("body").Children().First()
}

func TestSchemaApply(t *testing.T) {
	root := schemaRoot(t, `<div class="card" data-sku="X1">
		<h2 class="name">  Widget  </h2>
		<a class="link" href="/buy">Buy now</a>
	</div>`)

	got := JSONSchema{
		"name":  ".name",
		"url":   ".link@href",
		"label": ".link",
		"sku":   "@data-sku",
	}.Apply(root)

	want := map[string]string{
		"name":  "Widget",
		"url":   "/buy",
		"label": "Buy now",
		"sku":   "X1",
	}
	for field, expect := range want {
		if got[field] != expect {
			t.Errorf("%s = %q, want %q", field, got[field], expect)
		}
	}
}

func TestSchemaApplyMissingSelectorYieldsEmptyString(t *testing.T) {
	root := schemaRoot(t, `<div><p>x</p></div>`)

	got := JSONSchema{"price": ".price", "href": ".price@href"}.Apply(root)

	if v, ok := got["price"]; !ok || v != "" {
		t.Errorf("missing selector should yield empty string, got %q (present=%v)", v, ok)
	}
	if v := got["href"]; v != "" {
		t.Errorf("missing selector with attr should yield empty string, got %q", v)
	}
}

func TestSchemaApplyFirstMatchWins(t *testing.T) {
	root := schemaRoot(t, `<ul><li>one</li><li>two</li></ul>`)

	got := JSONSchema{"item": "li"}.Apply(root)
	if got["item"] != "one" {
		t.Errorf("item = %q, want first match", got["item"])
	}
}
