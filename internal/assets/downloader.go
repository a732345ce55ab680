// internal/assets/downloader.go
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/ratelimit"
	"github.com/law-makers/snip/pkg/models"
)

const downloadWorkers = 4

// Downloader fetches asset bytes with per-domain rate limiting. One failed
// asset never fails the others or the extraction.
type Downloader struct {
	client  *http.Client
	limiter *ratelimit.DomainLimiter
	// maxSize caps individual asset bytes. Oversize assets are marked failed
	// rather than truncated; a partial font or image is worse than none.
	maxSize int64
}

// NewDownloader creates a downloader. maxSize <= 0 means unlimited.
func NewDownloader(timeout time.Duration, maxSize int64) *Downloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: ratelimit.NewDomainLimiter(10, 5),
		maxSize: maxSize,
	}
}

// Download fetches every asset and fills Data, MIME and Size in place.
// Workers own disjoint indices so no locking is needed. Returns the number
// of successful downloads.
func (d *Downloader) Download(ctx context.Context, assets []models.Asset) int {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < downloadWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := d.fetch(ctx, &assets[i]); err != nil {
					assets[i].Failed = true
					log.Warn().
						Str("url", assets[i].URL).
						Str("type", string(assets[i].Type)).
						Err(err).
						Msg("Asset download failed")
				}
			}
		}()
	}

	for i := range assets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	downloaded := 0
	for i := range assets {
		if assets[i].HasData() {
			downloaded++
		}
	}

	log.Debug().
		Int("downloaded", downloaded).
		Int("failed", len(assets)-downloaded).
		Msg("Asset downloads completed")

	return downloaded
}

func (d *Downloader) fetch(ctx context.Context, asset *models.Asset) error {
	if err := d.limiter.Wait(ctx, asset.URL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if d.maxSize > 0 && resp.ContentLength > d.maxSize {
		return fmt.Errorf("asset size %d exceeds limit %d", resp.ContentLength, d.maxSize)
	}

	var reader io.Reader = resp.Body
	if d.maxSize > 0 {
		reader = io.LimitReader(resp.Body, d.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if d.maxSize > 0 && int64(len(data)) > d.maxSize {
		return fmt.Errorf("asset exceeds size limit %d", d.maxSize)
	}

	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	mime = strings.TrimSpace(mime)
	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(data).String()
	}

	asset.Data = data
	asset.Size = int64(len(data))
	asset.MIME = mime
	return nil
}
