// internal/utils/url/url.go

// Package urlutil holds small URL helpers shared by the extraction pipeline.
package urlutil

import (
	"fmt"
	"net/url"
)

// Validate rejects URLs that cannot be navigated to.
func Validate(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

// Resolve resolves a possibly-relative reference against a base URL. On any
// parse failure the reference is returned unchanged.
func Resolve(base, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(u).String()
}

// Host returns the host of urlStr, or "" when it cannot be parsed.
func Host(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
