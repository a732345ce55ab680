// internal/js/encapsulator.go
package js

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/pkg/models"
)

// initGuard is the dataset key marking a root as already initialized, so
// injecting the same component script twice never double-registers handlers.
const initGuard = "snipInit"

var (
	docQueryRe = regexp.MustCompile(`\bdocument\.(querySelector|querySelectorAll)\(`)
	docByIDRe  = regexp.MustCompile(`\bdocument\.getElementById\(\s*(['"])([^'"]+)(['"])\s*\)`)
)

// Encapsulator rewrites collected JavaScript into a closure that only touches
// the component root.
type Encapsulator struct{}

// NewEncapsulator creates a JavaScript encapsulator.
func NewEncapsulator() *Encapsulator {
	return &Encapsulator{}
}

// Encapsulate wraps the collected JavaScript per encType. The IIFE form binds
// root to the script tag's parent so the component works wherever it is
// pasted; the module form exports a mount(root) function for callers that
// control initialization. The output is compile-checked with goja and flagged
// rather than dropped when invalid, since collection is best-effort.
func (e *Encapsulator) Encapsulate(collected *models.JavaScriptCollectionResult, encType models.EncapsulationType, rootParam string) *models.EncapsulatedJavaScript {
	if rootParam == "" {
		rootParam = "root"
	}
	if encType == "" {
		encType = models.EncapsulationIIFE
	}

	body := buildBody(collected, rootParam)

	var code string
	switch encType {
	case models.EncapsulationModule:
		code = fmt.Sprintf("export function mount(%s) {\n%s}\n", rootParam, body)
	default:
		code = fmt.Sprintf("(function(%s) {\n%s})(document.currentScript.parentElement);\n", rootParam, body)
	}

	valid := compiles(code)
	if !valid {
		log.Warn().Str("type", string(encType)).Msg("Encapsulated JavaScript failed compile check")
	}

	return &models.EncapsulatedJavaScript{
		Code:      code,
		RootParam: rootParam,
		Type:      encType,
		Valid:     valid,
	}
}

// buildBody emits the re-run guard, converts inline attribute handlers to
// listener registrations on the root, then appends rebased inline scripts.
// The cleaner has already replaced on* attributes with data-snip-on-<event>
// markers, so handler elements are located through the marker, never through
// the original attribute.
func buildBody(collected *models.JavaScriptCollectionResult, rootParam string) string {
	var b strings.Builder
	b.WriteString("  'use strict';\n")
	fmt.Fprintf(&b, "  if (%s.dataset.%s === '1') return;\n", rootParam, initGuard)
	fmt.Fprintf(&b, "  %s.dataset.%s = '1';\n", rootParam, initGuard)

	for _, h := range collected.InlineHandlers {
		marker := models.HandlerMarkerPrefix + h.Event
		fmt.Fprintf(&b, "  %s.querySelectorAll('%s[%s]').forEach(function(el) {\n", rootParam, h.Tag, marker)
		fmt.Fprintf(&b, "    el.addEventListener('%s', function(event) { %s });\n", h.Event, h.Code)
		fmt.Fprintf(&b, "    el.removeAttribute('%s');\n", marker)
		b.WriteString("  });\n")
	}

	for _, script := range collected.InlineScripts {
		rebased := strings.TrimSpace(rebase(script, rootParam))
		b.WriteString("  " + strings.ReplaceAll(rebased, "\n", "\n  ") + "\n")
	}

	return b.String()
}

// rebase redirects document-level lookups onto the root so pasted scripts
// cannot reach outside the component.
func rebase(code, rootParam string) string {
	code = docQueryRe.ReplaceAllString(code, rootParam+".$1(")
	code = docByIDRe.ReplaceAllString(code, rootParam+".querySelector($1#$2$3)")
	return code
}

// compiles parses the generated code without running it. goja has no module
// parser, so the export keyword is stripped for the check.
func compiles(code string) bool {
	src := strings.TrimPrefix(code, "export ")
	_, err := goja.Compile("component.js", src, false)
	return err == nil
}
