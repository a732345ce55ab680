// internal/css/scoper.go
package css

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/law-makers/snip/pkg/models"
)

// namespacePrefix is shared by every generated namespace class.
const namespacePrefix = "component-"

// GenerateNamespace returns a fresh namespace class of the form
// component-<12 hex>. Collisions across extractions are what the random
// suffix prevents.
func GenerateNamespace() string {
	b := make([]byte, 6)
	rand.Read(b)
	return namespacePrefix + hex.EncodeToString(b)
}

var (
	animDeclRe = regexp.MustCompile(`(animation(?:-name)?\s*:)([^;}]*)`)
	// scopedRe detects selectors already carrying a generated namespace so
	// re-scoping is a no-op.
	scopedRe = regexp.MustCompile(`^\.` + namespacePrefix + `[0-9a-f]{12}(\s|$)`)
)

// Scoper rewrites collected rules so they only apply under a namespace class.
type Scoper struct{}

// NewScoper creates a CSS scoper.
func NewScoper() *Scoper {
	return &Scoper{}
}

// Scope prefixes every selector with the namespace class, renames keyframes
// to <ns>-<name> and rewrites animation references to match. Root-level
// selectors (:root, html, body) collapse onto the namespace class itself.
// Passing an empty namespace generates one. Scoping already-scoped CSS is
// idempotent.
func (sc *Scoper) Scope(collected *models.CSSCollectionResult, namespace string) *models.ScopedCSSResult {
	if namespace == "" {
		namespace = GenerateNamespace()
	}

	renames := make(map[string]string, len(collected.Keyframes))
	for _, kf := range collected.Keyframes {
		if strings.HasPrefix(kf.Name, namespace+"-") {
			continue
		}
		renames[kf.Name] = namespace + "-" + kf.Name
	}

	var b strings.Builder
	for _, rule := range collected.Rules {
		selector := scopeSelector(rule.Selector, namespace)
		decls := rewriteAnimationRefs(rule.Declarations, renames)

		if rule.Context != "" {
			b.WriteString(rule.Context)
			b.WriteString(" {\n  ")
			b.WriteString(selector)
			b.WriteString(" { ")
			b.WriteString(decls)
			b.WriteString(" }\n}\n")
		} else {
			b.WriteString(selector)
			b.WriteString(" { ")
			b.WriteString(decls)
			b.WriteString(" }\n")
		}
	}

	for _, kf := range collected.Keyframes {
		if renamed, rename := renames[kf.Name]; rename {
			b.WriteString(renameKeyframes(kf, renamed))
		} else {
			b.WriteString(kf.Body)
		}
		b.WriteString("\n")
	}

	return &models.ScopedCSSResult{
		ScopedCSS: strings.TrimRight(b.String(), "\n"),
		Namespace: namespace,
	}
}

// scopeSelector prefixes each comma-separated selector in a group. Commas
// inside functional pseudo-classes like :is(a, b) do not split the group.
func scopeSelector(selector, namespace string) string {
	parts := splitTopLevel(selector, ',')
	for i, part := range parts {
		parts[i] = scopeSingle(strings.TrimSpace(part), namespace)
	}
	return strings.Join(parts, ", ")
}

func scopeSingle(selector, namespace string) string {
	if selector == "" {
		return selector
	}
	if scopedRe.MatchString(selector) {
		return selector
	}
	// Document-level selectors have no element inside the component to hang
	// off, so their declarations land on the namespace element directly.
	switch selector {
	case ":root", "html", "body", "html body":
		return "." + namespace
	}
	if rest, found := strings.CutPrefix(selector, "body "); found {
		selector = rest
	} else if rest, found := strings.CutPrefix(selector, "html "); found {
		selector = strings.TrimPrefix(rest, "body ")
	}
	return "." + namespace + " " + selector
}

// splitTopLevel splits on sep outside of parentheses and brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// rewriteAnimationRefs renames keyframe references inside animation and
// animation-name declarations only, leaving other declarations untouched.
func rewriteAnimationRefs(declarations string, renames map[string]string) string {
	if len(renames) == 0 {
		return declarations
	}
	return animDeclRe.ReplaceAllStringFunc(declarations, func(match string) string {
		sub := animDeclRe.FindStringSubmatch(match)
		value := sub[2]
		for old, renamed := range renames {
			value = replaceToken(value, old, renamed)
		}
		return sub[1] + value
	})
}

func replaceToken(s, old, replacement string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
	return re.ReplaceAllString(s, replacement)
}

// renameKeyframes rewrites the @keyframes header (and any -webkit- variant)
// to the namespaced name.
func renameKeyframes(kf models.KeyframesBlock, renamed string) string {
	body := strings.Replace(kf.Body, "@keyframes "+kf.Name, "@keyframes "+renamed, 1)
	return strings.Replace(body, "@-webkit-keyframes "+kf.Name, "@-webkit-keyframes "+renamed, 1)
}
