// internal/hosting/store.go

// Package hosting persists rendered components to disk under short ids so
// they can be served or shared after the extraction session is gone.
package hosting

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/pkg/models"
)

// ErrNotFound is returned for unknown or expired component ids.
var ErrNotFound = errors.New("hosted component not found")

// Metadata is the sidecar record stored next to each hosted component.
type Metadata struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"source_url"`
	Selector  string    `json:"selector"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Views     int64     `json:"views"`
	SizeBytes int64     `json:"size_bytes"`
}

func (m *Metadata) expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}

// Store is a file-backed component store. Each component is one rendered
// <id>.html plus an <id>.meta.json sidecar.
type Store struct {
	mu  sync.Mutex
	dir string

	done chan struct{}
	wg   sync.WaitGroup
}

// NewStore creates the store directory and starts the expiry sweep.
func NewStore(dir string, sweepInterval time.Duration) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".snip", "hosted")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create hosting directory: %w", err)
	}
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}

	s := &Store{dir: dir, done: make(chan struct{})}
	s.wg.Add(1)
	go s.sweepLoop(sweepInterval)
	return s, nil
}

// Save renders the component and persists it. ttl <= 0 means no expiry.
// Returns the hosted id.
func (s *Store) Save(component *models.CompleteComponent, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	rendered := component.ToHTML()

	meta := Metadata{
		ID:        id,
		SourceURL: component.Metadata.SourceURL,
		Selector:  component.Metadata.Selector,
		CreatedAt: time.Now(),
		SizeBytes: int64(len(rendered)),
	}
	if ttl > 0 {
		meta.ExpiresAt = meta.CreatedAt.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.htmlPath(id), []byte(rendered), 0644); err != nil {
		return "", fmt.Errorf("failed to write component: %w", err)
	}
	if err := s.writeMeta(&meta); err != nil {
		os.Remove(s.htmlPath(id))
		return "", err
	}

	log.Debug().Str("id", id).Int64("size", meta.SizeBytes).Msg("Component hosted")
	return id, nil
}

// Load returns the rendered HTML and metadata for id, bumping the view
// count. Expired components behave as missing.
func (s *Store) Load(id string) (string, *Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(id)
	if err != nil {
		return "", nil, err
	}
	if meta.expired(time.Now()) {
		s.removeLocked(id)
		return "", nil, ErrNotFound
	}

	data, err := os.ReadFile(s.htmlPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}

	meta.Views++
	if err := s.writeMeta(meta); err != nil {
		log.Warn().Str("id", id).Err(err).Msg("Failed to persist view count")
	}
	return string(data), meta, nil
}

// List returns metadata for every hosted, unexpired component.
func (s *Store) List() ([]*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var metas []*Metadata
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		meta, err := s.readMeta(strings.TrimSuffix(name, ".meta.json"))
		if err != nil || meta.expired(now) {
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Delete removes a hosted component. Unknown ids are a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	return nil
}

// SweepExpired removes expired components and returns the count.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		id := strings.TrimSuffix(name, ".meta.json")
		meta, err := s.readMeta(id)
		if err != nil {
			continue
		}
		if meta.expired(now) {
			s.removeLocked(id)
			removed++
		}
	}
	return removed
}

// Close stops the sweep goroutine.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.SweepExpired(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired hosted components")
			}
		case <-s.done:
			return
		}
	}
}

func (s *Store) htmlPath(id string) string {
	return filepath.Join(s.dir, id+".html")
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta.json")
}

func (s *Store) readMeta(id string) (*Metadata, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corrupt metadata for %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) writeMeta(meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.metaPath(meta.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (s *Store) removeLocked(id string) {
	os.Remove(s.htmlPath(id))
	os.Remove(s.metaPath(id))
}
