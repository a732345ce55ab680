// internal/assets/downloader_test.go
package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/snip/pkg/models"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/unlabeled", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		// GIF87a magic so MIME sniffing has something to find.
		w.Write([]byte("GIF87a" + strings.Repeat("\x00", 20)))
	})
	mux.HandleFunc("/huge.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1024)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadFillsDataAndMIME(t *testing.T) {
	srv := testServer(t)
	assets := []models.Asset{
		{Ref: "logo.png", URL: srv.URL + "/logo.png", Type: models.AssetImage},
	}

	d := NewDownloader(5*time.Second, 0)
	if n := d.Download(context.Background(), assets); n != 1 {
		t.Fatalf("downloaded = %d, want 1", n)
	}

	a := assets[0]
	if !a.HasData() || string(a.Data) != "png-bytes" {
		t.Errorf("unexpected data: %+v", a)
	}
	if a.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", a.MIME)
	}
	if a.Size != int64(len("png-bytes")) {
		t.Errorf("Size = %d", a.Size)
	}
}

func TestDownloadSniffsUnlabeledMIME(t *testing.T) {
	srv := testServer(t)
	assets := []models.Asset{
		{Ref: "u", URL: srv.URL + "/unlabeled", Type: models.AssetImage},
	}

	NewDownloader(5*time.Second, 0).Download(context.Background(), assets)

	if assets[0].MIME != "image/gif" {
		t.Errorf("MIME = %q, want image/gif (sniffed)", assets[0].MIME)
	}
}

func TestDownloadFailureIsIsolated(t *testing.T) {
	srv := testServer(t)
	assets := []models.Asset{
		{Ref: "good", URL: srv.URL + "/logo.png", Type: models.AssetImage},
		{Ref: "bad", URL: srv.URL + "/missing.png", Type: models.AssetImage},
	}

	n := NewDownloader(5*time.Second, 0).Download(context.Background(), assets)
	if n != 1 {
		t.Fatalf("downloaded = %d, want 1", n)
	}
	if !assets[0].HasData() {
		t.Error("good asset should have data")
	}
	if !assets[1].Failed || assets[1].HasData() {
		t.Errorf("missing asset should be failed without data: %+v", assets[1])
	}
}

func TestDownloadOversizeIsFailedNotTruncated(t *testing.T) {
	srv := testServer(t)
	assets := []models.Asset{
		{Ref: "huge", URL: srv.URL + "/huge.bin", Type: models.AssetMedia},
	}

	NewDownloader(5*time.Second, 100).Download(context.Background(), assets)

	a := assets[0]
	if !a.Failed {
		t.Error("oversize asset should be marked failed")
	}
	if len(a.Data) != 0 {
		t.Errorf("oversize asset must carry no partial data, got %d bytes", len(a.Data))
	}
}

func TestInlineRewritesSuccessfulAssetsOnly(t *testing.T) {
	html := `<img src="logo.png"><img src="broken.png">`
	collected := &models.CSSCollectionResult{
		Rules: []models.CSSRule{
			{Selector: ".hero", Declarations: "background: url(logo.png);"},
		},
		Keyframes: []models.KeyframesBlock{
			{Name: "pulse", Body: "@keyframes pulse { to { background: url(logo.png); } }"},
		},
	}
	assets := []models.Asset{
		{
			Ref:  "logo.png",
			URL:  "https://example.com/logo.png",
			MIME: "image/png",
			Data: []byte("png-bytes"),
			Size: 9,
		},
		{Ref: "broken.png", URL: "https://example.com/broken.png", Failed: true},
	}

	outHTML, inlined := NewInliner().Inline(html, collected, assets)

	if inlined != 1 {
		t.Fatalf("inlined = %d, want 1", inlined)
	}
	if strings.Contains(outHTML, `src="logo.png"`) {
		t.Errorf("successful asset not rewritten:\n%s", outHTML)
	}
	if !strings.Contains(outHTML, "data:image/png;base64,") {
		t.Errorf("no data URI in html:\n%s", outHTML)
	}
	if !strings.Contains(collected.Rules[0].Declarations, "url(data:image/png;base64,") {
		t.Errorf("no data URI in collected rule:\n%s", collected.Rules[0].Declarations)
	}
	if !strings.Contains(collected.Keyframes[0].Body, "url(data:image/png;base64,") {
		t.Errorf("no data URI in keyframes body:\n%s", collected.Keyframes[0].Body)
	}
	if !strings.Contains(outHTML, `src="broken.png"`) {
		t.Errorf("failed asset reference must stay untouched:\n%s", outHTML)
	}
}

func TestInlineWithoutCollectionRewritesHTMLOnly(t *testing.T) {
	assets := []models.Asset{
		{Ref: "a.png", URL: "https://example.com/a.png", MIME: "image/png", Data: []byte("x")},
	}

	outHTML, inlined := NewInliner().Inline(`<img src="a.png">`, nil, assets)

	if inlined != 1 {
		t.Fatalf("inlined = %d, want 1", inlined)
	}
	if strings.Contains(outHTML, `src="a.png"`) {
		t.Errorf("reference not rewritten:\n%s", outHTML)
	}
}
