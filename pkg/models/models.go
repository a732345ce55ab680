package models

import (
	"fmt"
	"strings"
	"time"
)

// WaitStrategy decides when a navigation is considered complete enough to
// start extracting.
type WaitStrategy string

const (
	// WaitLoad waits for the load event (all resources settled). Default.
	WaitLoad WaitStrategy = "load"
	// WaitDOMContentLoaded waits for DOM readiness only. Fastest, for
	// markup-only extraction.
	WaitDOMContentLoaded WaitStrategy = "domcontentloaded"
	// WaitNetworkIdle waits until no network activity for >=500ms. For
	// SPA/AJAX-heavy pages.
	WaitNetworkIdle WaitStrategy = "networkidle"
	// WaitNone returns right after the navigation commits. Caller must wait
	// for a condition explicitly.
	WaitNone WaitStrategy = "none"
)

// ParseWaitStrategy converts a user-supplied string into a WaitStrategy.
func ParseWaitStrategy(s string) (WaitStrategy, error) {
	switch WaitStrategy(strings.ToLower(s)) {
	case WaitLoad, "":
		return WaitLoad, nil
	case WaitDOMContentLoaded:
		return WaitDOMContentLoaded, nil
	case WaitNetworkIdle:
		return WaitNetworkIdle, nil
	case WaitNone:
		return WaitNone, nil
	}
	return "", fmt.Errorf("unknown wait strategy: %q", s)
}

// EncapsulationType selects the isolation construct used for collected JS.
type EncapsulationType string

const (
	EncapsulationIIFE   EncapsulationType = "iife"
	EncapsulationModule EncapsulationType = "module"
)

// ExtractionFormat selects the extraction strategy for a request.
type ExtractionFormat string

const (
	FormatHTML     ExtractionFormat = "html"
	FormatCSS      ExtractionFormat = "css"
	FormatJSON     ExtractionFormat = "json"
	FormatMarkdown ExtractionFormat = "markdown"
)

// ExtractionOptions is the immutable per-request configuration.
type ExtractionOptions struct {
	ScopeCSS        bool              `json:"scope_css"`
	EncapsulateJS   bool              `json:"encapsulate_js"`
	InlineAssets    bool              `json:"inline_assets"`
	MaxAssetSize    int64             `json:"max_asset_size"` // bytes, 0 = unlimited
	AssetTypes      []string          `json:"asset_types,omitempty"`
	CustomNamespace string            `json:"custom_namespace,omitempty"` // "" = auto-generate
	WaitStrategy    WaitStrategy      `json:"wait_strategy"`
	Encapsulation   EncapsulationType `json:"encapsulation"`
}

// DefaultOptions returns the global option defaults.
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{
		ScopeCSS:      true,
		EncapsulateJS: true,
		InlineAssets:  true,
		WaitStrategy:  WaitLoad,
		Encapsulation: EncapsulationIIFE,
	}
}

// OptionOverrides carries per-component overrides for a batch request.
// Nil fields inherit the batch-global value.
type OptionOverrides struct {
	ScopeCSS        *bool              `json:"scope_css,omitempty"`
	EncapsulateJS   *bool              `json:"encapsulate_js,omitempty"`
	InlineAssets    *bool              `json:"inline_assets,omitempty"`
	MaxAssetSize    *int64             `json:"max_asset_size,omitempty"`
	AssetTypes      []string           `json:"asset_types,omitempty"`
	CustomNamespace *string            `json:"custom_namespace,omitempty"`
	WaitStrategy    *WaitStrategy      `json:"wait_strategy,omitempty"`
	Encapsulation   *EncapsulationType `json:"encapsulation,omitempty"`
}

// Merge applies overrides field-by-field; an override wins only where non-nil.
func (o ExtractionOptions) Merge(ov *OptionOverrides) ExtractionOptions {
	if ov == nil {
		return o
	}
	if ov.ScopeCSS != nil {
		o.ScopeCSS = *ov.ScopeCSS
	}
	if ov.EncapsulateJS != nil {
		o.EncapsulateJS = *ov.EncapsulateJS
	}
	if ov.InlineAssets != nil {
		o.InlineAssets = *ov.InlineAssets
	}
	if ov.MaxAssetSize != nil {
		o.MaxAssetSize = *ov.MaxAssetSize
	}
	if ov.AssetTypes != nil {
		o.AssetTypes = ov.AssetTypes
	}
	if ov.CustomNamespace != nil {
		o.CustomNamespace = *ov.CustomNamespace
	}
	if ov.WaitStrategy != nil {
		o.WaitStrategy = *ov.WaitStrategy
	}
	if ov.Encapsulation != nil {
		o.Encapsulation = *ov.Encapsulation
	}
	return o
}

// AssetType classifies a discovered resource reference.
type AssetType string

const (
	AssetImage      AssetType = "image"
	AssetFont       AssetType = "font"
	AssetStylesheet AssetType = "stylesheet"
	AssetMedia      AssetType = "media"
)

// Asset is one discovered resource reference.
type Asset struct {
	// Ref is the reference exactly as it appears in the source HTML/CSS.
	Ref string `json:"ref"`
	// URL is the resolved absolute URL.
	URL  string    `json:"url"`
	Type AssetType `json:"type"`
	MIME string    `json:"mime,omitempty"`
	Data []byte    `json:"-"`
	Size int64     `json:"size,omitempty"`
	// Failed is set when the download was attempted and did not produce data.
	Failed bool `json:"failed,omitempty"`
}

// HasData reports whether the asset bytes were fetched successfully within
// any configured size cap.
func (a *Asset) HasData() bool {
	return !a.Failed && len(a.Data) > 0
}

// CSSRule is one collected style rule.
type CSSRule struct {
	Selector     string `json:"selector"`
	Declarations string `json:"declarations"`
	// Context is the enclosing at-rule ("@media (max-width: 600px)",
	// "@supports (display: grid)") or empty for top-level rules.
	Context string `json:"context,omitempty"`
}

// KeyframesBlock is a full @keyframes block referenced by collected rules.
type KeyframesBlock struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// CSSCollectionResult is the ordered, deduplicated output of the CSS collector.
type CSSCollectionResult struct {
	Rules         []CSSRule        `json:"rules"`
	Keyframes     []KeyframesBlock `json:"keyframes,omitempty"`
	TotalRules    int              `json:"total_rules"`
	DedupedRules  int              `json:"deduped_rules"`
	SkippedSheets int              `json:"skipped_sheets,omitempty"`
}

// CSS renders the collection as plain stylesheet text, each rule wrapped in
// its originating at-rule context.
func (r *CSSCollectionResult) CSS() string {
	var b strings.Builder
	for _, rule := range r.Rules {
		text := rule.Selector + " { " + rule.Declarations + " }"
		if rule.Context != "" {
			text = rule.Context + " { " + text + " }"
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	for _, kf := range r.Keyframes {
		b.WriteString(kf.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// ScopedCSSResult is CSS text rewritten to be namespace-safe.
type ScopedCSSResult struct {
	ScopedCSS string `json:"scoped_css"`
	Namespace string `json:"namespace"`
}

// HandlerMarkerPrefix prefixes the data attribute the HTML cleaner leaves on
// an element whose inline event handler attribute was removed. The
// encapsulated script selects on data-snip-on-<event> to re-attach the
// handler, then strips the marker.
const HandlerMarkerPrefix = "data-snip-on-"

// InlineHandler is one inline event-handler attribute found in the subtree.
type InlineHandler struct {
	Tag       string `json:"tag"`
	Event     string `json:"event"`
	Attribute string `json:"attribute"`
	Code      string `json:"code"`
}

// JavaScriptCollectionResult holds everything the JS collector found wired to
// the subtree.
type JavaScriptCollectionResult struct {
	InlineHandlers  []InlineHandler `json:"inline_handlers,omitempty"`
	InlineScripts   []string        `json:"inline_scripts,omitempty"`
	ExternalScripts []string        `json:"external_scripts,omitempty"`
	ListenerCount   int             `json:"listener_count"`
	HandlerCount    int             `json:"handler_count"`
}

// EncapsulatedJavaScript is collected JS wrapped in an isolation construct.
type EncapsulatedJavaScript struct {
	Code      string            `json:"code"`
	RootParam string            `json:"root_param"`
	Type      EncapsulationType `json:"type"`
	// Valid reports whether the wrapped code parsed as ECMAScript. Invalid
	// code is still emitted; collection is best-effort.
	Valid bool `json:"valid"`
}

// ComponentMetadata describes the origin of an extracted component.
type ComponentMetadata struct {
	SourceURL       string            `json:"source_url"`
	Selector        string            `json:"selector"`
	AssetsInlined   int               `json:"assets_inlined"`
	TotalAssetBytes int64             `json:"total_asset_bytes"`
	Options         ExtractionOptions `json:"options"`
	ExtractedAt     time.Time         `json:"extracted_at"`
}

// ExtractionStatistics are the authoritative counters for one extraction.
type ExtractionStatistics struct {
	HTMLElements    int   `json:"html_elements"`
	CSSRules        int   `json:"css_rules"`
	JSListeners     int   `json:"js_listeners"`
	JSHandlers      int   `json:"js_handlers"`
	InlineScripts   int   `json:"inline_scripts"`
	ExternalScripts int   `json:"external_scripts"`
	AssetsInlined   int   `json:"assets_inlined"`
	AssetsFailed    int   `json:"assets_failed"`
	OriginalSize    int64 `json:"original_size"`
	FinalSize       int64 `json:"final_size"`
}

// CompleteComponent is the terminal artifact of an extraction. Immutable once
// built.
type CompleteComponent struct {
	HTML       string               `json:"html"`
	CSS        string               `json:"css"`
	JavaScript string               `json:"javascript"`
	Namespace  string               `json:"namespace"`
	Metadata   ComponentMetadata    `json:"metadata"`
	Statistics ExtractionStatistics `json:"statistics"`
}

// ToHTML serializes the component into a single self-contained markup string.
// The order is fixed: style block, HTML content, script block. Empty style
// and script blocks are omitted entirely.
func (c *CompleteComponent) ToHTML() string {
	var b strings.Builder
	b.WriteString(`<div class="` + c.Namespace + "\">\n")
	if c.CSS != "" {
		b.WriteString("<style>\n")
		b.WriteString(c.CSS)
		if !strings.HasSuffix(c.CSS, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("</style>\n")
	}
	b.WriteString(c.HTML)
	if !strings.HasSuffix(c.HTML, "\n") {
		b.WriteString("\n")
	}
	if c.JavaScript != "" {
		b.WriteString("<script>\n")
		b.WriteString(c.JavaScript)
		if !strings.HasSuffix(c.JavaScript, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("</script>\n")
	}
	b.WriteString("</div>")
	return b.String()
}

// Size returns the concatenated length of html+css+javascript in bytes.
func (c *CompleteComponent) Size() int64 {
	return int64(len(c.HTML) + len(c.CSS) + len(c.JavaScript))
}

// ComponentRequest is one item of a batch extraction.
type ComponentRequest struct {
	Name     string           `json:"name"`
	Selector string           `json:"selector"`
	Multiple bool             `json:"multiple,omitempty"`
	Options  *OptionOverrides `json:"options,omitempty"`
}

// ComponentResult reports the outcome of one batch item.
type ComponentResult struct {
	Name       string               `json:"name"`
	Selector   string               `json:"selector"`
	Success    bool                 `json:"success"`
	Component  *CompleteComponent   `json:"component,omitempty"`
	Components []*CompleteComponent `json:"components,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// BatchExtractionResult is the aggregate outcome of a batch extraction.
type BatchExtractionResult struct {
	URL        string            `json:"url"`
	Results    []ComponentResult `json:"results"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	DurationMS int64             `json:"duration_ms"`
}
