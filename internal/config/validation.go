// internal/config/validation.go
package config

import "fmt"

func validate(c *Config) error {
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.MaxSessions <= 0 || c.MaxSessions > DefaultMaxSessionsCap {
		return fmt.Errorf("max sessions must be between 1 and %d", DefaultMaxSessionsCap)
	}
	if c.CacheTotalBytes <= 0 {
		return fmt.Errorf("cache total size must be > 0")
	}
	if c.CacheEntryBytes > c.CacheTotalBytes {
		return fmt.Errorf("cache entry size cannot exceed total cache size")
	}
	return nil
}
