// internal/extract/extractor_test.go
package extract

import (
	"strings"
	"testing"

	"github.com/law-makers/snip/internal/assets"
	"github.com/law-makers/snip/internal/css"
	"github.com/law-makers/snip/pkg/models"
)

// Inlining runs before scoping, so the scoped output must carry the data URIs
// the inliner wrote into the collected rules.
func TestScopedCSSCarriesInlinedAssets(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".hero", Declarations: "background: url(logo.png);"},
		},
	}
	downloaded := []models.Asset{
		{
			Ref:  "logo.png",
			URL:  "https://example.com/logo.png",
			MIME: "image/png",
			Data: []byte("png-bytes"),
		},
	}

	html, inlined := assets.NewInliner().Inline(`<img src="logo.png">`, collected, downloaded)
	if inlined != 1 {
		t.Fatalf("inlined = %d, want 1", inlined)
	}
	if strings.Contains(html, "logo.png") {
		t.Errorf("html reference not rewritten:\n%s", html)
	}

	scoped := css.NewScoper().Scope(collected, "component-aabbccddeeff").ScopedCSS
	if !strings.Contains(scoped, ".component-aabbccddeeff .hero") {
		t.Errorf("rule not scoped:\n%s", scoped)
	}
	if !strings.Contains(scoped, "url(data:image/png;base64,") {
		t.Errorf("scoped output lost the inlined asset:\n%s", scoped)
	}
	if strings.Contains(scoped, "logo.png") {
		t.Errorf("original reference survived into the scoped output:\n%s", scoped)
	}
}

func TestCollectedSizeSpansAllThreeBlocks(t *testing.T) {
	rawHTML := `<div class="card">hi</div>`
	cssResult := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".card", Declarations: "color: red;"},
		},
	}
	jsResult := &models.JavaScriptCollectionResult{
		InlineScripts: []string{"var n = 1;", "n++;"},
	}

	want := int64(len(rawHTML) + len(cssResult.CSS()) + len("var n = 1;\nn++;"))
	if got := collectedSize(rawHTML, cssResult, jsResult); got != want {
		t.Errorf("collectedSize = %d, want %d", got, want)
	}

	// Empty collections degrade to the markup length alone.
	empty := collectedSize(rawHTML, &models.CSSCollectionResult{}, &models.JavaScriptCollectionResult{})
	if empty != int64(len(rawHTML)) {
		t.Errorf("collectedSize with empty collections = %d, want %d", empty, len(rawHTML))
	}
}
