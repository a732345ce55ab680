// internal/css/scoper_test.go
package css

import (
	"regexp"
	"strings"
	"testing"

	"github.com/law-makers/snip/pkg/models"
)

const testNS = "component-aabbccddeeff"

func TestGenerateNamespaceFormatAndUniqueness(t *testing.T) {
	format := regexp.MustCompile(`^component-[0-9a-f]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ns := GenerateNamespace()
		if !format.MatchString(ns) {
			t.Fatalf("namespace %q does not match expected format", ns)
		}
		if seen[ns] {
			t.Fatalf("namespace %q generated twice", ns)
		}
		seen[ns] = true
	}
}

func TestScopePrefixesSelectors(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".card", Declarations: "color: red;"},
			{Selector: ".a:hover .b", Declarations: "color: blue;"},
			{Selector: "h2, .title", Declarations: "font-weight: bold;"},
		},
	}
	scoped := NewScoper().Scope(collected, testNS)

	wants := []string{
		"." + testNS + " .card { color: red; }",
		"." + testNS + " .a:hover .b { color: blue; }",
		"." + testNS + " h2, ." + testNS + " .title { font-weight: bold; }",
	}
	for _, want := range wants {
		if !strings.Contains(scoped.ScopedCSS, want) {
			t.Errorf("scoped CSS missing %q:\n%s", want, scoped.ScopedCSS)
		}
	}
}

func TestScopeCollapsesDocumentSelectors(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ":root", Declarations: "--accent: #f00;"},
			{Selector: "body", Declarations: "font-family: serif;"},
			{Selector: "body .wrap", Declarations: "margin: 0;"},
		},
	}
	scoped := NewScoper().Scope(collected, testNS)

	if !strings.Contains(scoped.ScopedCSS, "."+testNS+" { --accent: #f00; }") {
		t.Errorf(":root should collapse onto the namespace class:\n%s", scoped.ScopedCSS)
	}
	if !strings.Contains(scoped.ScopedCSS, "."+testNS+" { font-family: serif; }") {
		t.Errorf("body should collapse onto the namespace class:\n%s", scoped.ScopedCSS)
	}
	if !strings.Contains(scoped.ScopedCSS, "."+testNS+" .wrap { margin: 0; }") {
		t.Errorf("body prefix should be dropped before scoping:\n%s", scoped.ScopedCSS)
	}
}

func TestScopeDoesNotSplitFunctionalPseudoClasses(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ":is(.a, .b) .c", Declarations: "color: green;"},
		},
	}
	scoped := NewScoper().Scope(collected, testNS)

	want := "." + testNS + " :is(.a, .b) .c"
	if !strings.Contains(scoped.ScopedCSS, want) {
		t.Errorf("expected %q in:\n%s", want, scoped.ScopedCSS)
	}
}

func TestScopeRenamesKeyframesAndReferences(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".spinner", Declarations: "animation: spin 1s linear infinite;"},
			{Selector: ".pulse", Declarations: "animation-name: spin;"},
		},
		Keyframes: []models.KeyframesBlock{
			{Name: "spin", Body: "@keyframes spin { to { transform: rotate(360deg); } }"},
		},
	}
	scoped := NewScoper().Scope(collected, testNS)

	renamed := testNS + "-spin"
	if !strings.Contains(scoped.ScopedCSS, "@keyframes "+renamed) {
		t.Errorf("keyframes block not renamed:\n%s", scoped.ScopedCSS)
	}
	if !strings.Contains(scoped.ScopedCSS, "animation: "+renamed+" 1s linear infinite;") {
		t.Errorf("animation shorthand not rewritten:\n%s", scoped.ScopedCSS)
	}
	if !strings.Contains(scoped.ScopedCSS, "animation-name: "+renamed+";") {
		t.Errorf("animation-name not rewritten:\n%s", scoped.ScopedCSS)
	}
	if strings.Contains(scoped.ScopedCSS, "@keyframes spin ") {
		t.Errorf("original keyframes name still present:\n%s", scoped.ScopedCSS)
	}
}

func TestScopeKeepsAtRuleContext(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".card", Declarations: "width: 50%;", Context: "@media (min-width: 600px)"},
		},
	}
	scoped := NewScoper().Scope(collected, testNS)

	if !strings.Contains(scoped.ScopedCSS, "@media (min-width: 600px) {") {
		t.Errorf("media context lost:\n%s", scoped.ScopedCSS)
	}
	if !strings.Contains(scoped.ScopedCSS, "."+testNS+" .card { width: 50%; }") {
		t.Errorf("rule inside media context not scoped:\n%s", scoped.ScopedCSS)
	}
}

func TestScopeIsIdempotent(t *testing.T) {
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".card", Declarations: "animation: spin 1s;"},
		},
		Keyframes: []models.KeyframesBlock{
			{Name: "spin", Body: "@keyframes spin { to { opacity: 0; } }"},
		},
	}
	sc := NewScoper()
	first := sc.Scope(collected, testNS)

	// Feed the scoped output back in as if it were collected again.
	rescoped := sc.Scope(&models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: "." + testNS + " .card", Declarations: "animation: " + testNS + "-spin 1s;"},
		},
		Keyframes: []models.KeyframesBlock{
			{Name: testNS + "-spin", Body: "@keyframes " + testNS + "-spin { to { opacity: 0; } }"},
		},
	}, testNS)

	if first.ScopedCSS != rescoped.ScopedCSS {
		t.Errorf("re-scoping changed output:\nfirst:\n%s\nsecond:\n%s", first.ScopedCSS, rescoped.ScopedCSS)
	}
}

func TestScopeGeneratesNamespaceWhenEmpty(t *testing.T) {
	scoped := NewScoper().Scope(&models.CSSCollectionResult{}, "")
	if !strings.HasPrefix(scoped.Namespace, "component-") {
		t.Errorf("expected generated namespace, got %q", scoped.Namespace)
	}
}
