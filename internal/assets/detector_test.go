// internal/assets/detector_test.go
package assets

import (
	"testing"

	"github.com/law-makers/snip/pkg/models"
)

const pageURL = "https://example.com/products/"

func detect(t *testing.T, html, css string, types []string) []models.Asset {
	t.Helper()
	found, err := NewDetector().Detect(html, css, pageURL, types)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return found
}

func byURL(found []models.Asset) map[string]models.Asset {
	m := make(map[string]models.Asset, len(found))
	for _, a := range found {
		m[a.URL] = a
	}
	return m
}

func TestDetectImagesAndSrcset(t *testing.T) {
	html := `<div>
		<img src="hero.png" srcset="hero.png 1x, hero@2x.png 2x">
		<picture><source srcset="hero.webp"><img src="hero.png"></picture>
	</div>`

	found := detect(t, html, "", nil)
	m := byURL(found)

	for _, want := range []string{
		"https://example.com/products/hero.png",
		"https://example.com/products/hero@2x.png",
		"https://example.com/products/hero.webp",
	} {
		a, ok := m[want]
		if !ok {
			t.Errorf("missing asset %s in %v", want, found)
			continue
		}
		if a.Type != models.AssetImage {
			t.Errorf("%s classified as %s, want image", want, a.Type)
		}
	}
	// hero.png appears three times but must be detected once.
	if len(found) != 3 {
		t.Errorf("got %d assets, want 3 (deduplicated)", len(found))
	}
}

func TestDetectCSSAndInlineStyleURLs(t *testing.T) {
	html := `<div style="background: url('bg.jpg')">x</div>`
	css := `.card { font-family: Brand; src: url("/fonts/brand.woff2"); }`

	m := byURL(detect(t, html, css, nil))

	if a, ok := m["https://example.com/products/bg.jpg"]; !ok || a.Type != models.AssetImage {
		t.Errorf("inline style background not detected as image: %+v", m)
	}
	if a, ok := m["https://example.com/fonts/brand.woff2"]; !ok || a.Type != models.AssetFont {
		t.Errorf("css font url not detected as font: %+v", m)
	}
}

func TestDetectSkipsDataURIs(t *testing.T) {
	html := `<img src="data:image/png;base64,AAAA">`
	css := `.x { background: url(data:image/gif;base64,BBBB); }`

	if found := detect(t, html, css, nil); len(found) != 0 {
		t.Errorf("data URIs should be skipped, got %v", found)
	}
}

func TestDetectTypeFilter(t *testing.T) {
	html := `<div>
		<img src="a.png">
		<link rel="stylesheet" href="site.css">
		<video src="clip.mp4"></video>
	</div>`

	found := detect(t, html, "", []string{"image"})
	if len(found) != 1 {
		t.Fatalf("got %d assets, want only the image: %v", len(found), found)
	}
	if found[0].URL != "https://example.com/products/a.png" {
		t.Errorf("unexpected asset %+v", found[0])
	}
}

// Stylesheet link tags are removed during markup cleaning before detection
// runs, so a stray one in the input is never reported. Stylesheets referenced
// from CSS, such as @import targets, still are.
func TestDetectIgnoresStylesheetLinks(t *testing.T) {
	html := `<div><link rel="stylesheet" href="site.css"><img src="a.png"></div>`
	css := `@import url(extra.css);`

	m := byURL(detect(t, html, css, nil))

	if _, ok := m["https://example.com/products/site.css"]; ok {
		t.Errorf("link href should not be reported as an asset: %+v", m)
	}
	if a, ok := m["https://example.com/products/extra.css"]; !ok || a.Type != models.AssetStylesheet {
		t.Errorf("css-referenced stylesheet missing or mistyped: %+v", m)
	}
	if _, ok := m["https://example.com/products/a.png"]; !ok {
		t.Errorf("image should still be detected: %+v", m)
	}
}

func TestDetectKeepsOriginalRef(t *testing.T) {
	found := detect(t, `<img src="../logo.svg">`, "", nil)
	if len(found) != 1 {
		t.Fatalf("got %d assets, want 1", len(found))
	}
	if found[0].Ref != "../logo.svg" {
		t.Errorf("Ref = %q, want original reference", found[0].Ref)
	}
	if found[0].URL != "https://example.com/logo.svg" {
		t.Errorf("URL = %q, want resolved", found[0].URL)
	}
}

func TestParseSrcset(t *testing.T) {
	refs := parseSrcset(" a.png 1x, b.png 2x ,c.png 100w")
	want := []string{"a.png", "b.png", "c.png"}
	if len(refs) != len(want) {
		t.Fatalf("parseSrcset = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("parseSrcset[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}
