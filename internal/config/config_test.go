// internal/config/config_test.go
package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxSessions != DefaultMaxSessions {
		t.Errorf("MaxSessions = %d, want %d", cfg.MaxSessions, DefaultMaxSessions)
	}
	if cfg.NavigationTimeout != 30*time.Second {
		t.Errorf("NavigationTimeout = %v", cfg.NavigationTimeout)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if !cfg.Headless || cfg.JSONLog || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.CacheTTL != time.Hour || cfg.HostingTTL != 24*time.Hour {
		t.Errorf("unexpected TTL defaults: %+v", cfg)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SNIP_USER_AGENT", "TestAgent/2.0")
	t.Setenv("SNIP_PROXY", "http://proxy.local:8080")
	t.Setenv("SNIP_CHROME_PATH", "/opt/chrome/chrome")
	t.Setenv("SNIP_MAX_SESSIONS", "3")
	t.Setenv("SNIP_HOSTING_DIR", "/tmp/hosted")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.UserAgent != "TestAgent/2.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.Proxy != "http://proxy.local:8080" {
		t.Errorf("Proxy = %q", cfg.Proxy)
	}
	if cfg.ChromePath != "/opt/chrome/chrome" {
		t.Errorf("ChromePath = %q", cfg.ChromePath)
	}
	if cfg.MaxSessions != 3 {
		t.Errorf("MaxSessions = %d, want 3", cfg.MaxSessions)
	}
	if cfg.HostingDir != "/tmp/hosted" {
		t.Errorf("HostingDir = %q", cfg.HostingDir)
	}
}

func TestLoadRejectsSessionCountOverCap(t *testing.T) {
	t.Setenv("SNIP_MAX_SESSIONS", "100")

	if _, err := Load(nil); err == nil {
		t.Error("session count over the cap should fail validation")
	}
}

func TestValidate(t *testing.T) {
	good := func() *Config {
		return &Config{
			NavigationTimeout: time.Second,
			MaxSessions:       5,
			CacheEntryBytes:   100,
			CacheTotalBytes:   1000,
		}
	}

	if err := validate(good()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := good()
	c.NavigationTimeout = 0
	if err := validate(c); err == nil {
		t.Error("zero navigation timeout should fail")
	}

	c = good()
	c.MaxSessions = 0
	if err := validate(c); err == nil {
		t.Error("zero max sessions should fail")
	}

	c = good()
	c.CacheEntryBytes = 2000
	if err := validate(c); err == nil {
		t.Error("entry size above total size should fail")
	}
}
