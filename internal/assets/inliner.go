// internal/assets/inliner.go
package assets

import (
	"encoding/base64"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/pkg/models"
)

// Inliner rewrites downloaded assets into base64 data: URIs.
type Inliner struct{}

// NewInliner creates an asset inliner.
func NewInliner() *Inliner {
	return &Inliner{}
}

// Inline replaces every successfully downloaded asset reference in the HTML
// and in the collected CSS rules with a data: URI. The rules are rewritten in
// place, before scoping, so the scoped output carries the inlined data. Failed
// assets keep their original references so the component still renders them
// when it has network access. Returns the rewritten HTML and the number of
// inlined assets. A nil collection only rewrites the HTML.
func (in *Inliner) Inline(componentHTML string, collected *models.CSSCollectionResult, assets []models.Asset) (string, int) {
	inlined := 0
	for i := range assets {
		a := &assets[i]
		if !a.HasData() {
			continue
		}
		dataURI := "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data)

		componentHTML = replaceRefs(componentHTML, a, dataURI)
		if collected != nil {
			for j := range collected.Rules {
				collected.Rules[j].Declarations = replaceRefs(collected.Rules[j].Declarations, a, dataURI)
			}
			for j := range collected.Keyframes {
				collected.Keyframes[j].Body = replaceRefs(collected.Keyframes[j].Body, a, dataURI)
			}
		}
		inlined++
	}

	log.Debug().Int("inlined", inlined).Int("total", len(assets)).Msg("Asset inlining completed")
	return componentHTML, inlined
}

// replaceRefs rewrites both the original reference and its resolved URL, so
// the substitution lands whichever form the markup or the CSSOM serialized.
func replaceRefs(s string, a *models.Asset, dataURI string) string {
	s = strings.ReplaceAll(s, a.Ref, dataURI)
	if a.URL != a.Ref {
		s = strings.ReplaceAll(s, a.URL, dataURI)
	}
	return s
}
