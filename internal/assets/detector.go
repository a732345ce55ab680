// internal/assets/detector.go

// Package assets finds, downloads and inlines the external resources a
// component depends on so the extracted HTML works without its origin server.
package assets

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	urlutil "github.com/law-makers/snip/internal/utils/url"
	"github.com/law-makers/snip/pkg/models"
)

var cssURLRe = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// Detector scans component HTML and collected CSS for asset references.
type Detector struct{}

// NewDetector creates an asset detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the deduplicated assets referenced by the component HTML and
// CSS, with relative references resolved against pageURL. data: URIs are
// already inline and are skipped. When types is non-nil, only the listed
// asset types are returned. Stylesheet links never survive markup cleaning,
// so stylesheet assets enter only through CSS url() references.
func (d *Detector) Detect(componentHTML, css, pageURL string, types []string) ([]models.Asset, error) {
	seen := make(map[string]bool)
	var found []models.Asset

	add := func(ref string, assetType models.AssetType) {
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") {
			return
		}
		resolved := urlutil.Resolve(pageURL, ref)
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		found = append(found, models.Asset{
			Ref:  ref,
			URL:  resolved,
			Type: assetType,
		})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(componentHTML))
	if err != nil {
		return nil, err
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src, models.AssetImage)
		}
		if srcset, ok := s.Attr("srcset"); ok {
			for _, ref := range parseSrcset(srcset) {
				add(ref, models.AssetImage)
			}
		}
	})
	doc.Find("source").Each(func(_ int, s *goquery.Selection) {
		inPicture := s.Closest("picture").Length() > 0
		assetType := models.AssetMedia
		if inPicture {
			assetType = models.AssetImage
		}
		if src, ok := s.Attr("src"); ok {
			add(src, assetType)
		}
		if srcset, ok := s.Attr("srcset"); ok {
			for _, ref := range parseSrcset(srcset) {
				add(ref, assetType)
			}
		}
	})
	doc.Find("video[src], audio[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src, models.AssetMedia)
		}
	})
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		for _, m := range cssURLRe.FindAllStringSubmatch(style, -1) {
			add(m[1], typeByExtension(m[1], models.AssetImage))
		}
	})

	for _, m := range cssURLRe.FindAllStringSubmatch(css, -1) {
		add(m[1], typeByExtension(m[1], models.AssetImage))
	}

	if types != nil {
		allowed := make(map[string]bool, len(types))
		for _, t := range types {
			allowed[t] = true
		}
		kept := found[:0]
		for _, a := range found {
			if allowed[string(a.Type)] {
				kept = append(kept, a)
			}
		}
		found = kept
	}

	log.Debug().Int("assets", len(found)).Str("page_url", pageURL).Msg("Asset detection completed")
	return found, nil
}

// parseSrcset extracts the URL part of each srcset candidate, dropping the
// width/density descriptors.
func parseSrcset(srcset string) []string {
	var refs []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) > 0 {
			refs = append(refs, fields[0])
		}
	}
	return refs
}

// typeByExtension classifies a reference by its path extension, falling back
// to fallback for extensionless URLs.
func typeByExtension(ref string, fallback models.AssetType) models.AssetType {
	clean := ref
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	switch strings.ToLower(path.Ext(clean)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".avif", ".bmp":
		return models.AssetImage
	case ".woff", ".woff2", ".ttf", ".otf", ".eot":
		return models.AssetFont
	case ".css":
		return models.AssetStylesheet
	case ".mp4", ".webm", ".mp3", ".ogg", ".wav", ".m4a":
		return models.AssetMedia
	}
	return fallback
}
