// internal/js/encapsulator_test.go
package js

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/snip/internal/utils/output"
	"github.com/law-makers/snip/pkg/models"
)

func TestEncapsulateIIFEWrapsAndGuards(t *testing.T) {
	collected := &models.JavaScriptCollectionResult{
		InlineScripts: []string{"var n = 1;"},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationIIFE, "")

	if !strings.HasPrefix(enc.Code, "(function(root) {") {
		t.Errorf("missing IIFE opening:\n%s", enc.Code)
	}
	if !strings.Contains(enc.Code, "(document.currentScript.parentElement);") {
		t.Errorf("IIFE should bind root to the script tag's parent:\n%s", enc.Code)
	}
	if !strings.Contains(enc.Code, "root.dataset.snipInit") {
		t.Errorf("missing re-run guard:\n%s", enc.Code)
	}
	if !enc.Valid {
		t.Error("generated IIFE should pass the compile check")
	}
	if enc.RootParam != "root" || enc.Type != models.EncapsulationIIFE {
		t.Errorf("unexpected metadata: %+v", enc)
	}
}

func TestEncapsulateModuleExportsMount(t *testing.T) {
	collected := &models.JavaScriptCollectionResult{
		InlineScripts: []string{"var n = 1;"},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationModule, "")

	if !strings.HasPrefix(enc.Code, "export function mount(root) {") {
		t.Errorf("missing module export:\n%s", enc.Code)
	}
	if strings.Contains(enc.Code, "currentScript") {
		t.Errorf("module form must not self-invoke:\n%s", enc.Code)
	}
	if !enc.Valid {
		t.Error("generated module should pass the compile check")
	}
}

func TestEncapsulateRebasesDocumentLookups(t *testing.T) {
	collected := &models.JavaScriptCollectionResult{
		InlineScripts: []string{
			"document.querySelector('.btn').textContent = 'hi';",
			"document.querySelectorAll('.item').forEach(function(el) {});",
			`document.getElementById("menu").focus();`,
		},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationIIFE, "")

	for _, want := range []string{
		"root.querySelector('.btn')",
		"root.querySelectorAll('.item')",
		`root.querySelector("#menu")`,
	} {
		if !strings.Contains(enc.Code, want) {
			t.Errorf("missing rebased lookup %q:\n%s", want, enc.Code)
		}
	}
	if strings.Contains(enc.Code, "document.querySelector") {
		t.Errorf("document-level lookup survived rebasing:\n%s", enc.Code)
	}
	if !enc.Valid {
		t.Error("rebased code should still compile")
	}
}

func TestEncapsulateConvertsInlineHandlers(t *testing.T) {
	collected := &models.JavaScriptCollectionResult{
		InlineHandlers: []models.InlineHandler{
			{Tag: "button", Event: "click", Attribute: "onclick", Code: "count += 1;"},
		},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationIIFE, "")

	for _, want := range []string{
		"root.querySelectorAll('button[data-snip-on-click]')",
		"el.addEventListener('click', function(event) { count += 1; });",
		"el.removeAttribute('data-snip-on-click');",
	} {
		if !strings.Contains(enc.Code, want) {
			t.Errorf("missing handler conversion %q:\n%s", want, enc.Code)
		}
	}
	if strings.Contains(enc.Code, "[onclick]") {
		t.Errorf("handler selection must not rely on the stripped attribute:\n%s", enc.Code)
	}
	if !enc.Valid {
		t.Error("handler registration code should compile")
	}
}

// The cleaner strips on* attributes from component markup, so the selector the
// encapsulated script registers handlers through must target the marker the
// cleaner leaves behind, not the original attribute.
func TestEncapsulateHandlerSelectorMatchesCleanedMarkup(t *testing.T) {
	cleaned, err := output.CleanComponentHTML(`<div class="card"><button onclick="count += 1;">go</button></div>`)
	if err != nil {
		t.Fatalf("CleanComponentHTML: %v", err)
	}

	collected := &models.JavaScriptCollectionResult{
		InlineHandlers: []models.InlineHandler{
			{Tag: "button", Event: "click", Attribute: "onclick", Code: "count += 1;"},
		},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationIIFE, "")

	selector := "button[" + models.HandlerMarkerPrefix + "click]"
	if !strings.Contains(enc.Code, "querySelectorAll('"+selector+"')") {
		t.Fatalf("generated code does not select on %q:\n%s", selector, enc.Code)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		t.Fatalf("parse cleaned markup: %v", err)
	}
	if n := doc.Find(selector).Length(); n != 1 {
		t.Errorf("selector %q matches %d elements in cleaned markup, want 1:\n%s", selector, n, cleaned)
	}
}

func TestEncapsulateCustomRootParam(t *testing.T) {
	enc := NewEncapsulator().Encapsulate(&models.JavaScriptCollectionResult{}, models.EncapsulationIIFE, "host")

	if !strings.HasPrefix(enc.Code, "(function(host) {") {
		t.Errorf("custom root parameter not used:\n%s", enc.Code)
	}
	if !strings.Contains(enc.Code, "host.dataset.snipInit") {
		t.Errorf("guard should use the custom parameter:\n%s", enc.Code)
	}
}

func TestEncapsulateFlagsInvalidCode(t *testing.T) {
	collected := &models.JavaScriptCollectionResult{
		InlineScripts: []string{"function ( {"},
	}
	enc := NewEncapsulator().Encapsulate(collected, models.EncapsulationIIFE, "")

	if enc.Valid {
		t.Error("syntactically broken input should be flagged invalid")
	}
	if enc.Code == "" {
		t.Error("invalid code is still emitted")
	}
}
