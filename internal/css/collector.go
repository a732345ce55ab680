// internal/css/collector.go

// Package css gathers every style rule affecting a selected subtree from the
// live stylesheet cascade and rewrites the result to be namespace-safe.
package css

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/session"
	"github.com/law-makers/snip/pkg/models"
)

// Collector walks document.styleSheets inside a borrowed page session.
type Collector struct{}

// NewCollector creates a CSS collector.
func NewCollector() *Collector {
	return &Collector{}
}

// collectScript walks the CSSOM for rules touching the subtree of one matched
// element: rules whose selector matches an element inside it (including bare
// forms of pseudo-class variants), ancestor rules the subtree inherits from,
// currently-true @media/@supports branches, referenced @keyframes, and custom
// property definitions pulled in by var() references. CORS-blocked sheets are
// counted and skipped.
const collectScript = `(() => {
	const root = document.querySelectorAll(%s)[%d];
	if (!root) return null;

	const els = [root, ...root.querySelectorAll('*')];
	const ancestors = [];
	let p = root.parentElement;
	while (p) { ancestors.push(p); p = p.parentElement; }

	const matchesAny = (list, selector) => list.some(el => { try { return el.matches(selector); } catch (e) { return false; } });
	const stripPseudo = s => { const t = s.replace(/::?[a-zA-Z-]+(\([^)]*\))?/g, ''); return t.trim() || '*'; };

	const rules = [];
	const keyframes = [];
	const animNames = new Set();
	const varNames = new Set();
	const varDefs = [];
	let total = 0;
	let skipped = 0;

	const recordAnims = (style) => {
		(style.getPropertyValue('animation-name') || '').split(',').forEach(n => {
			n = n.trim();
			if (n && n !== 'none') animNames.add(n);
		});
	};
	const recordVars = (style) => {
		for (let i = 0; i < style.length; i++) {
			const v = style.getPropertyValue(style[i]);
			const re = /var\(\s*(--[A-Za-z0-9_-]+)/g;
			let m;
			while ((m = re.exec(v)) !== null) varNames.add(m[1]);
		}
	};
	const definesVar = (style) => {
		for (let i = 0; i < style.length; i++) {
			if (style[i].startsWith('--')) return true;
		}
		return false;
	};

	const walk = (ruleList, context) => {
		for (const rule of ruleList) {
			if (rule instanceof CSSStyleRule) {
				total++;
				const selText = rule.selectorText;
				const direct = matchesAny(els, selText) || matchesAny(els, stripPseudo(selText));
				const inherited = !direct && (selText === ':root' || matchesAny(ancestors, selText) || matchesAny(ancestors, stripPseudo(selText)));
				if (direct || inherited) {
					rules.push({ selector: selText, declarations: rule.style.cssText, context: context });
					recordAnims(rule.style);
					recordVars(rule.style);
				} else if (definesVar(rule.style)) {
					varDefs.push({ selector: selText, declarations: rule.style.cssText, context: context });
				}
			} else if (rule instanceof CSSMediaRule) {
				if (window.matchMedia(rule.conditionText).matches) walk(rule.cssRules, '@media ' + rule.conditionText);
			} else if (rule instanceof CSSSupportsRule) {
				let ok = false;
				try { ok = CSS.supports(rule.conditionText); } catch (e) {}
				if (ok) walk(rule.cssRules, '@supports ' + rule.conditionText);
			} else if (rule instanceof CSSKeyframesRule) {
				keyframes.push({ name: rule.name, body: rule.cssText });
			} else if (rule instanceof CSSImportRule) {
				try { if (rule.styleSheet && rule.styleSheet.cssRules) walk(rule.styleSheet.cssRules, context); } catch (e) { skipped++; }
			}
		}
	};

	for (const sheet of document.styleSheets) {
		let list;
		try { list = sheet.cssRules; } catch (e) { skipped++; continue; }
		if (list) walk(list, '');
	}

	const usedKeyframes = keyframes.filter(k => animNames.has(k.name));
	const usedVarDefs = varDefs.filter(d => {
		const re = /(--[A-Za-z0-9_-]+)\s*:/g;
		let m;
		while ((m = re.exec(d.declarations)) !== null) {
			if (varNames.has(m[1])) return true;
		}
		return false;
	});

	return { rules: rules.concat(usedVarDefs), keyframes: usedKeyframes, total: total, skipped: skipped };
})()`

type rawRule struct {
	Selector     string `json:"selector"`
	Declarations string `json:"declarations"`
	Context      string `json:"context"`
}

type rawKeyframes struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type rawCollection struct {
	Rules     []rawRule      `json:"rules"`
	Keyframes []rawKeyframes `json:"keyframes"`
	Total     int            `json:"total"`
	Skipped   int            `json:"skipped"`
}

// Collect gathers every rule that can affect the subtree of the index-th
// element matched by selector.
func (c *Collector) Collect(s *session.Session, selector string, index int) (*models.CSSCollectionResult, error) {
	expr := fmt.Sprintf(collectScript, strconv.Quote(selector), index)

	var raw *rawCollection
	if err := s.Evaluate(expr, &raw); err != nil {
		return nil, fmt.Errorf("css collection failed: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", session.ErrNoMatch, selector)
	}

	if raw.Skipped > 0 {
		log.Warn().
			Int("sheets", raw.Skipped).
			Str("selector", selector).
			Msg("Skipped CORS-blocked stylesheets")
	}

	// Dedup identical (selector, declarations, context) triples, keeping
	// cascade order.
	seen := make(map[string]bool, len(raw.Rules))
	rules := make([]models.CSSRule, 0, len(raw.Rules))
	for _, r := range raw.Rules {
		key := r.Context + "\x00" + r.Selector + "\x00" + r.Declarations
		if seen[key] {
			continue
		}
		seen[key] = true
		rules = append(rules, models.CSSRule{
			Selector:     r.Selector,
			Declarations: r.Declarations,
			Context:      r.Context,
		})
	}

	keyframes := make([]models.KeyframesBlock, 0, len(raw.Keyframes))
	for _, kf := range raw.Keyframes {
		keyframes = append(keyframes, models.KeyframesBlock{Name: kf.Name, Body: kf.Body})
	}

	result := &models.CSSCollectionResult{
		Rules:         rules,
		Keyframes:     keyframes,
		TotalRules:    raw.Total,
		DedupedRules:  len(rules),
		SkippedSheets: raw.Skipped,
	}

	log.Debug().
		Str("selector", selector).
		Int("total_rules", result.TotalRules).
		Int("deduped_rules", result.DedupedRules).
		Int("keyframes", len(keyframes)).
		Msg("CSS collection completed")

	return result, nil
}
