// internal/config/config.go

// Package config combines defaults, environment variables and CLI flags into
// the application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser sessions
	MaxSessions       int
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	NavigationTimeout time.Duration
	Headless          bool
	UserAgent         string
	Proxy             string
	ChromePath        string

	// Component cache
	CacheTTL        time.Duration
	CacheMaxEntries int
	CacheEntryBytes int64
	CacheTotalBytes int64

	// Assets
	AssetTimeout time.Duration

	// Hosting
	HostingDir string
	HostingTTL time.Duration
}

// Load builds a Config from defaults, SNIP_* environment variables and the
// flags of the provided command, in that order of precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		MaxSessions:       DefaultMaxSessions,
		IdleTimeout:       DefaultIdleTimeout,
		SweepInterval:     DefaultSweepInterval,
		NavigationTimeout: DefaultNavigationTimeout,
		Headless:          DefaultHeadless,
		UserAgent:         DefaultUserAgent,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxEntries:   DefaultCacheMaxEntries,
		CacheEntryBytes:   DefaultCacheEntryBytes,
		CacheTotalBytes:   DefaultCacheTotalBytes,
		AssetTimeout:      DefaultAssetTimeout,
		HostingTTL:        DefaultHostingTTL,
	}

	if v := os.Getenv("SNIP_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SNIP_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SNIP_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SNIP_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSessions = n
		}
	}
	if v := os.Getenv("SNIP_HOSTING_DIR"); v != "" {
		cfg.HostingDir = v
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.NavigationTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("max-sessions"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.MaxSessions = n
			}
		}
		if f := cmd.Flags().Lookup("headless"); f != nil {
			cfg.Headless = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
