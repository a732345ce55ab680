// internal/utils/output/html_test.go
package output

import (
	"strings"
	"testing"
)

func TestCleanComponentHTMLStripsScriptsAndStyles(t *testing.T) {
	in := `<div class="card">
		<style>.card { color: red; }</style>
		<script>alert(1)</script>
		<link rel="stylesheet" href="site.css">
		<noscript>enable js</noscript>
		<p>content</p>
	</div>`

	out, err := CleanComponentHTML(in)
	if err != nil {
		t.Fatalf("CleanComponentHTML: %v", err)
	}

	for _, gone := range []string{"<style", "<script", "<link", "<noscript"} {
		if strings.Contains(out, gone) {
			t.Errorf("%s should be removed:\n%s", gone, out)
		}
	}
	if !strings.Contains(out, "<p>content</p>") {
		t.Errorf("content lost:\n%s", out)
	}
}

func TestCleanComponentHTMLRewritesEventHandlersToMarkers(t *testing.T) {
	in := `<button class="cta" id="buy" data-sku="X1" onclick="buy()" onmouseover="hl()">Buy</button>`

	out, err := CleanComponentHTML(in)
	if err != nil {
		t.Fatalf("CleanComponentHTML: %v", err)
	}

	if strings.Contains(out, "onclick") || strings.Contains(out, "onmouseover") {
		t.Errorf("handler attributes should be rewritten:\n%s", out)
	}
	if strings.Contains(out, "buy()") || strings.Contains(out, "hl()") {
		t.Errorf("handler code should not survive cleaning:\n%s", out)
	}
	// Empty markers stay so the encapsulated script can find the elements.
	for _, marker := range []string{"data-snip-on-click", "data-snip-on-mouseover"} {
		if !strings.Contains(out, marker) {
			t.Errorf("marker %s missing:\n%s", marker, out)
		}
	}
	for _, keep := range []string{`class="cta"`, `id="buy"`, `data-sku="X1"`} {
		if !strings.Contains(out, keep) {
			t.Errorf("attribute %s should survive cleaning:\n%s", keep, out)
		}
	}
}

func TestStripAttributesKeepsOnlyListed(t *testing.T) {
	in := `<a href="/x" class="link" title="go" style="color:red">x</a>`

	out, err := StripAttributes(in, map[string]bool{"href": true, "title": true})
	if err != nil {
		t.Fatalf("StripAttributes: %v", err)
	}

	if !strings.Contains(out, `href="/x"`) || !strings.Contains(out, `title="go"`) {
		t.Errorf("kept attributes missing:\n%s", out)
	}
	if strings.Contains(out, "class=") || strings.Contains(out, "style=") {
		t.Errorf("unlisted attributes should be stripped:\n%s", out)
	}
}
