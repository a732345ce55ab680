// internal/config/defaults.go
package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "Snip/1.0 (https://github.com/law-makers/snip)"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultMaxSessions       = 5
	DefaultMaxSessionsCap    = 20
	DefaultIdleTimeout       = 5 * time.Minute
	DefaultSweepInterval     = time.Minute
	DefaultHeadless          = true
	DefaultCacheTTL          = time.Hour
	DefaultCacheMaxEntries   = 100
	DefaultCacheEntryBytes   = 5 * 1024 * 1024   // 5MB
	DefaultCacheTotalBytes   = 100 * 1024 * 1024 // 100MB
	DefaultAssetTimeout      = 30 * time.Second
	DefaultHostingTTL        = 24 * time.Hour
)
