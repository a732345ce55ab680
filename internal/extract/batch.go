// internal/extract/batch.go
package extract

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/reqctx"
	"github.com/law-makers/snip/internal/session"
	urlutil "github.com/law-makers/snip/internal/utils/url"
	"github.com/law-makers/snip/pkg/models"
)

// ExtractBatch extracts several components from one page over a single shared
// session. Per-request options merge over the globals; a failing request is
// recorded and never disturbs its siblings or the session. The optional
// progress callback fires after each request completes.
func (e *Extractor) ExtractBatch(ctx context.Context, url string, requests []models.ComponentRequest, global models.ExtractionOptions, progress func(done int, result models.ComponentResult)) (*models.BatchExtractionResult, error) {
	if err := urlutil.Validate(url); err != nil {
		return nil, NewExtractError(ErrCodeValidation, "invalid extraction target", err)
	}

	start := time.Now()
	ctx = reqctx.WithExtraction(ctx)

	s, err := e.openSession(ctx, url, global)
	if err != nil {
		return nil, err
	}
	defer e.sessions.CloseSession(s.ID)

	batch := runBatch(url, requests, global,
		func(selector string, opts models.ExtractionOptions) (*models.CompleteComponent, error) {
			return e.extractFirstMatch(ctx, s, selector, opts)
		},
		func(selector string, opts models.ExtractionOptions) ([]*models.CompleteComponent, error) {
			return e.extractAllMatches(ctx, s, selector, opts)
		},
		progress)

	batch.DurationMS = time.Since(start).Milliseconds()

	log.Info().
		Str("url", url).
		Int("succeeded", batch.Succeeded).
		Int("failed", batch.Failed).
		Int64("duration_ms", batch.DurationMS).
		Msg("Batch extraction completed")

	return batch, nil
}

// runBatch drives the per-request loop against the supplied extraction
// functions. Option overrides merge over the globals per request; a failure
// lands in that request's result and the loop moves on.
func runBatch(url string, requests []models.ComponentRequest, global models.ExtractionOptions,
	first func(selector string, opts models.ExtractionOptions) (*models.CompleteComponent, error),
	all func(selector string, opts models.ExtractionOptions) ([]*models.CompleteComponent, error),
	progress func(done int, result models.ComponentResult)) *models.BatchExtractionResult {

	batch := &models.BatchExtractionResult{
		URL:     url,
		Results: make([]models.ComponentResult, 0, len(requests)),
	}

	for i, req := range requests {
		opts := global.Merge(req.Options)
		result := models.ComponentResult{
			Name:     req.Name,
			Selector: req.Selector,
		}

		if req.Multiple {
			components, err := all(req.Selector, opts)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.Components = components
			}
		} else {
			component, err := first(req.Selector, opts)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.Component = component
			}
		}

		if result.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
			log.Warn().
				Str("name", req.Name).
				Str("selector", req.Selector).
				Str("error", result.Error).
				Msg("Batch component failed")
		}

		batch.Results = append(batch.Results, result)
		if progress != nil {
			progress(i+1, result)
		}
	}

	return batch
}

func (e *Extractor) extractFirstMatch(ctx context.Context, s *session.Session, selector string, opts models.ExtractionOptions) (*models.CompleteComponent, error) {
	if err := e.requireMatch(s, selector); err != nil {
		return nil, err
	}
	return e.extractOne(ctx, s, selector, 0, opts)
}

func (e *Extractor) extractAllMatches(ctx context.Context, s *session.Session, selector string, opts models.ExtractionOptions) ([]*models.CompleteComponent, error) {
	count, err := s.Count(selector)
	if err != nil {
		return nil, NewExtractError(ErrCodeEngineBinding, "element count failed", err)
	}
	if count == 0 {
		return nil, NewExtractError(ErrCodeSelectorNotFound, "selector matched no elements: "+selector, nil)
	}

	var components []*models.CompleteComponent
	for i := 0; i < count; i++ {
		component, err := e.extractOne(ctx, s, selector, i, opts)
		if err != nil {
			log.Warn().Str("selector", selector).Int("index", i).Err(err).Msg("Skipping failed element")
			continue
		}
		components = append(components, component)
	}
	return components, nil
}
