// internal/extract/batch_test.go
package extract

import (
	"strings"
	"testing"

	"github.com/law-makers/snip/pkg/models"
)

func TestRunBatchIsolatesFailures(t *testing.T) {
	requests := []models.ComponentRequest{
		{Name: "header", Selector: "header"},
		{Name: "missing", Selector: ".nope"},
		{Name: "cards", Selector: ".card", Multiple: true},
	}

	first := func(selector string, _ models.ExtractionOptions) (*models.CompleteComponent, error) {
		if selector == ".nope" {
			return nil, NewExtractError(ErrCodeSelectorNotFound, "selector matched no elements: .nope", nil)
		}
		return &models.CompleteComponent{HTML: "<" + selector + "></" + selector + ">"}, nil
	}
	all := func(_ string, _ models.ExtractionOptions) ([]*models.CompleteComponent, error) {
		return []*models.CompleteComponent{{HTML: "a"}, {HTML: "b"}}, nil
	}

	var progressed []int
	batch := runBatch("https://example.com", requests, models.DefaultOptions(), first, all,
		func(done int, _ models.ComponentResult) { progressed = append(progressed, done) })

	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Fatalf("succeeded = %d, failed = %d, want 2/1", batch.Succeeded, batch.Failed)
	}
	if len(batch.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(batch.Results))
	}

	if !batch.Results[0].Success || batch.Results[0].Component == nil {
		t.Errorf("first request should succeed: %+v", batch.Results[0])
	}
	if batch.Results[1].Success || !strings.Contains(batch.Results[1].Error, "SELECTOR_NOT_FOUND") {
		t.Errorf("failed request should carry its error: %+v", batch.Results[1])
	}
	// A failure must not stop the requests after it.
	if !batch.Results[2].Success || len(batch.Results[2].Components) != 2 {
		t.Errorf("request after the failure should still run: %+v", batch.Results[2])
	}

	if len(progressed) != 3 || progressed[0] != 1 || progressed[2] != 3 {
		t.Errorf("progress callback fired %v, want [1 2 3]", progressed)
	}
}

func TestRunBatchMergesOverridesOverGlobals(t *testing.T) {
	scope := false
	ns := "component-feedfacecafe"
	requests := []models.ComponentRequest{
		{Name: "plain", Selector: ".a"},
		{Name: "tuned", Selector: ".b", Options: &models.OptionOverrides{
			ScopeCSS:        &scope,
			CustomNamespace: &ns,
		}},
	}

	got := make(map[string]models.ExtractionOptions, len(requests))
	first := func(selector string, opts models.ExtractionOptions) (*models.CompleteComponent, error) {
		got[selector] = opts
		return &models.CompleteComponent{}, nil
	}
	all := func(_ string, _ models.ExtractionOptions) ([]*models.CompleteComponent, error) {
		t.Fatal("no request is marked multiple")
		return nil, nil
	}

	runBatch("https://example.com", requests, models.DefaultOptions(), first, all, nil)

	if !got[".a"].ScopeCSS || got[".a"].CustomNamespace != "" {
		t.Errorf("request without overrides should see the globals: %+v", got[".a"])
	}
	if got[".b"].ScopeCSS {
		t.Errorf("ScopeCSS override not applied: %+v", got[".b"])
	}
	if got[".b"].CustomNamespace != ns {
		t.Errorf("CustomNamespace = %q, want %q", got[".b"].CustomNamespace, ns)
	}
	// Fields without an override inherit the globals.
	if !got[".b"].EncapsulateJS || !got[".b"].InlineAssets {
		t.Errorf("unset overrides should inherit globals: %+v", got[".b"])
	}
}
