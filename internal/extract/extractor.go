// internal/extract/extractor.go

// Package extract orchestrates the full component extraction pipeline over a
// live browser session.
package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/assets"
	"github.com/law-makers/snip/internal/cache"
	"github.com/law-makers/snip/internal/css"
	"github.com/law-makers/snip/internal/js"
	"github.com/law-makers/snip/internal/reqctx"
	"github.com/law-makers/snip/internal/session"
	"github.com/law-makers/snip/internal/utils/output"
	urlutil "github.com/law-makers/snip/internal/utils/url"
	"github.com/law-makers/snip/pkg/models"
)

// Extractor wires the collectors, rewriters and the session manager into one
// pipeline. A nil cache disables caching.
type Extractor struct {
	sessions *session.Manager
	cache    *cache.ComponentCache

	cssCollector *css.Collector
	scoper       *css.Scoper
	jsCollector  *js.Collector
	encapsulator *js.Encapsulator
	detector     *assets.Detector
	inliner      *assets.Inliner

	assetTimeout time.Duration

	// CookieSet optionally names a stored auth cookie set injected into every
	// session this extractor opens.
	CookieSet string
}

// NewExtractor creates an extractor on top of the session manager.
func NewExtractor(sessions *session.Manager, componentCache *cache.ComponentCache) *Extractor {
	return &Extractor{
		sessions:     sessions,
		cache:        componentCache,
		cssCollector: css.NewCollector(),
		scoper:       css.NewScoper(),
		jsCollector:  js.NewCollector(),
		encapsulator: js.NewEncapsulator(),
		detector:     assets.NewDetector(),
		inliner:      assets.NewInliner(),
		assetTimeout: 30 * time.Second,
	}
}

// Extract runs the full pipeline for the first element matching selector.
// The session is always closed before returning, on every path.
func (e *Extractor) Extract(ctx context.Context, url, selector string, opts models.ExtractionOptions) (*models.CompleteComponent, error) {
	if err := urlutil.Validate(url); err != nil {
		return nil, NewExtractError(ErrCodeValidation, "invalid extraction target", err)
	}

	key := cache.GenerateCacheKey(url, selector, "component", opts)
	if e.cache != nil {
		if component, ok := e.cache.Get(key); ok {
			log.Debug().Str("url", url).Str("selector", selector).Msg("Cache hit")
			return component, nil
		}
	}

	ctx = reqctx.WithExtraction(ctx)
	s, err := e.openSession(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	defer e.sessions.CloseSession(s.ID)

	if err := e.requireMatch(s, selector); err != nil {
		return nil, err
	}

	component, err := e.extractOne(ctx, s, selector, 0, opts)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(key, component, 0)
	}
	return component, nil
}

// ExtractMultiple extracts every element matching selector, each as an
// independent component. A failing index is logged and skipped; it never
// aborts its siblings.
func (e *Extractor) ExtractMultiple(ctx context.Context, url, selector string, opts models.ExtractionOptions) ([]*models.CompleteComponent, error) {
	if err := urlutil.Validate(url); err != nil {
		return nil, NewExtractError(ErrCodeValidation, "invalid extraction target", err)
	}

	ctx = reqctx.WithExtraction(ctx)
	s, err := e.openSession(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	defer e.sessions.CloseSession(s.ID)

	count, err := s.Count(selector)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "element count failed", err)
	}
	if count == 0 {
		return nil, NewExtractError(ErrCodeSelectorNotFound, "selector matched no elements: "+selector, nil)
	}

	components := make([]*models.CompleteComponent, 0, count)
	for i := 0; i < count; i++ {
		component, err := e.extractOne(ctx, s, selector, i, opts)
		if err != nil {
			log.Warn().
				Str("selector", selector).
				Int("index", i).
				Err(err).
				Msg("Skipping failed element")
			continue
		}
		components = append(components, component)
	}
	return components, nil
}

// ExtractContent runs a single-format strategy instead of the full pipeline.
func (e *Extractor) ExtractContent(ctx context.Context, url, selector string, format models.ExtractionFormat, schema JSONSchema, opts models.ExtractionOptions) (string, error) {
	if err := urlutil.Validate(url); err != nil {
		return "", NewExtractError(ErrCodeValidation, "invalid extraction target", err)
	}

	strategy, err := StrategyFor(format, schema)
	if err != nil {
		return "", err
	}

	ctx = reqctx.WithExtraction(ctx)
	s, err := e.openSession(ctx, url, opts)
	if err != nil {
		return "", err
	}
	defer e.sessions.CloseSession(s.ID)

	if err := e.requireMatch(s, selector); err != nil {
		return "", err
	}

	content, err := strategy.Extract(s, selector, 0)
	if err != nil {
		return "", NewExtractError(ErrCodeEngineBinding, strategy.Name()+" strategy failed", err)
	}
	return content, nil
}

func (e *Extractor) openSession(ctx context.Context, url string, opts models.ExtractionOptions) (*session.Session, error) {
	s, err := e.sessions.CreateSession(ctx, session.CreateRequest{
		URL:       url,
		Wait:      opts.WaitStrategy,
		CookieSet: e.CookieSet,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrCapacity):
			return nil, NewExtractError(ErrCodeCapacity, "session limit reached", err)
		default:
			return nil, NewExtractError(ErrCodeNavigation, "failed to open page", err)
		}
	}
	return s, nil
}

func (e *Extractor) requireMatch(s *session.Session, selector string) error {
	count, err := s.Count(selector)
	if err != nil {
		return NewExtractError(ErrCodeEngineBinding, "element count failed", err)
	}
	if count == 0 {
		return NewExtractError(ErrCodeSelectorNotFound, "selector matched no elements: "+selector, nil)
	}
	return nil
}

// extractOne runs the pipeline stages for one matched element: markup, CSS
// collection, JS collection, asset inlining, scoping, encapsulation and
// assembly.
func (e *Extractor) extractOne(ctx context.Context, s *session.Session, selector string, index int, opts models.ExtractionOptions) (*models.CompleteComponent, error) {
	ec := reqctx.FromContext(ctx)
	logger := log.With().
		Str("extraction_id", ec.ExtractionID).
		Str("selector", selector).
		Int("index", index).
		Logger()

	rawHTML, err := s.OuterHTML(selector, index)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "failed to read element markup", err)
	}

	componentHTML, err := output.CleanComponentHTML(rawHTML)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "failed to clean markup", err)
	}

	cssResult, err := e.cssCollector.Collect(s, selector, index)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "css collection failed", err)
	}

	jsResult, err := e.jsCollector.Collect(s, selector, index)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "javascript collection failed", err)
	}

	originalSize := collectedSize(rawHTML, cssResult, jsResult)

	namespace := opts.CustomNamespace
	if namespace == "" {
		namespace = css.GenerateNamespace()
	}

	var (
		found         []models.Asset
		assetsInlined int
		assetBytes    int64
	)
	if opts.InlineAssets {
		found, err = e.detector.Detect(componentHTML, cssResult.CSS(), s.URL, opts.AssetTypes)
		if err != nil {
			return nil, NewExtractError(ErrCodeAssetFetch, "asset detection failed", err)
		}
		downloader := assets.NewDownloader(e.assetTimeout, opts.MaxAssetSize)
		downloader.Download(ctx, found)
		componentHTML, assetsInlined = e.inliner.Inline(componentHTML, cssResult, found)
		for i := range found {
			assetBytes += found[i].Size
		}
	}

	var cssText string
	if opts.ScopeCSS {
		cssText = e.scoper.Scope(cssResult, namespace).ScopedCSS
	} else {
		cssText = cssResult.CSS()
	}

	var jsCode string
	if opts.EncapsulateJS {
		jsCode = e.encapsulator.Encapsulate(jsResult, opts.Encapsulation, "root").Code
	} else {
		jsCode = rawScripts(jsResult)
	}

	elements := countElements(componentHTML)

	component := &models.CompleteComponent{
		HTML:       componentHTML,
		CSS:        cssText,
		JavaScript: jsCode,
		Namespace:  namespace,
		Metadata: models.ComponentMetadata{
			SourceURL:       s.URL,
			Selector:        selector,
			AssetsInlined:   assetsInlined,
			TotalAssetBytes: assetBytes,
			Options:         opts,
			ExtractedAt:     time.Now(),
		},
		Statistics: models.ExtractionStatistics{
			HTMLElements:    elements,
			CSSRules:        cssResult.DedupedRules,
			JSListeners:     jsResult.ListenerCount,
			JSHandlers:      jsResult.HandlerCount,
			InlineScripts:   len(jsResult.InlineScripts),
			ExternalScripts: len(jsResult.ExternalScripts),
			AssetsInlined:   assetsInlined,
			AssetsFailed:    len(found) - assetsInlined,
			OriginalSize:    originalSize,
		},
	}
	component.Statistics.FinalSize = component.Size()

	logger.Info().
		Int("html_elements", elements).
		Int("css_rules", component.Statistics.CSSRules).
		Int("assets_inlined", assetsInlined).
		Int64("final_size", component.Statistics.FinalSize).
		Msg("Component extracted")

	return component, nil
}

// rawScripts joins collected inline scripts unmodified for callers that opt
// out of encapsulation.
func rawScripts(jsResult *models.JavaScriptCollectionResult) string {
	return strings.Join(jsResult.InlineScripts, "\n")
}

// collectedSize is the concatenated length of the element markup, the
// collected CSS and the collected inline scripts before any inlining or
// rewriting. The symmetric counterpart of CompleteComponent.Size.
func collectedSize(rawHTML string, cssResult *models.CSSCollectionResult, jsResult *models.JavaScriptCollectionResult) int64 {
	return int64(len(rawHTML) + len(cssResult.CSS()) + len(rawScripts(jsResult)))
}

func countElements(componentHTML string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(componentHTML))
	if err != nil {
		return 0
	}
	return doc.Find("body *").Length()
}
