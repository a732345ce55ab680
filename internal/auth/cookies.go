// internal/auth/cookies.go

// Package auth stores named cookie sets so components can be extracted from
// pages behind a login. Sets live in the OS keyring where available, with a
// 0600 file fallback for environments without one (CI, containers).
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "snip-cli"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".snip/sessions"
)

// Cookie is a browser cookie injected before navigation.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookieSet is a named collection of cookies for one site.
type CookieSet struct {
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

var fileBasedStorageCache *bool

// useFileBasedStorage probes keyring availability once and caches the result.
func useFileBasedStorage() bool {
	if fileBasedStorageCache != nil {
		return *fileBasedStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileBasedStorageCache = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := (err != nil)
	fileBasedStorageCache = &result
	if !result {
		keyring.Delete(KeyringService, testKey)
	}
	return result
}

func storageDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

func storagePath(name string) (string, error) {
	dir, err := storageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// Save stores a cookie set in the keyring or fallback file.
func Save(set *CookieSet) error {
	if set.Name == "" {
		return fmt.Errorf("cookie set name cannot be empty")
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to serialize cookie set: %w", err)
	}

	if useFileBasedStorage() {
		path, err := storagePath(set.Name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save cookie file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, set.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return updateManifest(set.Name, true)
}

// Load retrieves a cookie set by name. Expired sets are an error.
func Load(name string) (*CookieSet, error) {
	if name == "" {
		return nil, fmt.Errorf("cookie set name cannot be empty")
	}

	var data string
	if useFileBasedStorage() {
		path, err := storagePath(name)
		if err != nil {
			return nil, err
		}
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load cookie file: %w", err)
		}
		data = string(fileData)
	} else {
		var err error
		data, err = keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
	}

	var set CookieSet
	if err := json.Unmarshal([]byte(data), &set); err != nil {
		return nil, fmt.Errorf("failed to deserialize cookie set: %w", err)
	}

	if !set.ExpiresAt.IsZero() && time.Now().After(set.ExpiresAt) {
		return nil, fmt.Errorf("cookie set %q expired", name)
	}
	return &set, nil
}

// Delete removes a cookie set. Missing sets are a no-op.
func Delete(name string) error {
	if name == "" {
		return fmt.Errorf("cookie set name cannot be empty")
	}

	if useFileBasedStorage() {
		path, err := storagePath(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cookie file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return updateManifest(name, false)
}

// List returns the names of all stored cookie sets.
func List() ([]string, error) {
	if useFileBasedStorage() {
		dir, err := storageDir()
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}
		var names []string
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
				names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
			}
		}
		return names, nil
	}

	manifestData, err := keyring.Get(KeyringService, "_manifest")
	if err != nil {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(manifestData), &names); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	return names, nil
}

// updateManifest keeps a name index in the keyring, which has no listing API.
func updateManifest(name string, add bool) error {
	names, _ := List()

	if add {
		for _, n := range names {
			if n == name {
				return nil
			}
		}
		names = append(names, name)
	} else {
		kept := names[:0]
		for _, n := range names {
			if n != name {
				kept = append(kept, n)
			}
		}
		names = kept
	}

	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, "_manifest", string(data))
}
