// internal/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/auth"
	"github.com/law-makers/snip/pkg/models"
)

var (
	// ErrCapacity is returned when the concurrent session limit is reached.
	// This is a hard admission-control gate; callers must shed load or wait.
	ErrCapacity = errors.New("session limit reached")
	// ErrManagerClosed is returned after Shutdown.
	ErrManagerClosed = errors.New("session manager is closed")
)

// Config configures the session manager.
type Config struct {
	MaxSessions       int
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	NavigationTimeout time.Duration
	Headless          bool
	UserAgent         string
	Proxy             string
	ChromePath        string
}

// CreateRequest describes one session to open.
type CreateRequest struct {
	URL     string
	Wait    models.WaitStrategy
	Timeout time.Duration
	// CookieSet names a stored auth cookie set to inject before navigation.
	CookieSet string
}

// Manager owns the shared browser-engine process and all page sessions on it.
// Only the manager may create or destroy the engine process; everything else
// borrows sessions by id.
type Manager struct {
	cfg Config
	nav *Navigator

	allocCtx    context.Context
	allocCancel context.CancelFunc

	sessions sync.Map // session id -> *Session
	active   atomic.Int64
	closed   atomic.Bool
	done     chan struct{}
	sweepWG  sync.WaitGroup
}

// NewManager starts the shared browser allocator and the idle sweep.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 5
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Snip/1.0 (https://github.com/law-makers/snip)"
	}

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = findChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.UserAgent(cfg.UserAgent),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if cfg.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(cfg.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	m := &Manager{
		cfg:         cfg,
		nav:         NewNavigator(cfg.NavigationTimeout),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		done:        make(chan struct{}),
	}

	m.sweepWG.Add(1)
	go m.sweep()

	log.Info().
		Int("max_sessions", cfg.MaxSessions).
		Dur("idle_timeout", cfg.IdleTimeout).
		Msg("Session manager ready")

	return m, nil
}

// CreateSession opens a new page session and navigates it to the request URL.
// Fails fast with ErrCapacity when the session limit is already reached.
func (m *Manager) CreateSession(ctx context.Context, req CreateRequest) (*Session, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	if m.active.Add(1) > int64(m.cfg.MaxSessions) {
		m.active.Add(-1)
		return nil, fmt.Errorf("%w: %d sessions active", ErrCapacity, m.cfg.MaxSessions)
	}

	sctx, cancel := chromedp.NewContext(m.allocCtx)

	ok := false
	defer func() {
		if !ok {
			cancel()
			m.active.Add(-1)
		}
	}()

	if req.CookieSet != "" {
		set, err := auth.Load(req.CookieSet)
		if err != nil {
			log.Warn().Err(err).Str("cookie_set", req.CookieSet).Msg("Failed to load cookie set")
		} else if err := chromedp.Run(sctx, injectCookies(set.Cookies)); err != nil {
			log.Warn().Err(err).Str("cookie_set", req.CookieSet).Msg("Failed to inject cookies")
		} else {
			log.Debug().Int("cookies", len(set.Cookies)).Msg("Cookies injected")
		}
	}

	if _, err := m.nav.NavigateWithRetry(sctx, req.URL, req.Wait, req.Timeout); err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		URL:       req.URL,
		CreatedAt: time.Now(),
		ctx:       sctx,
		cancel:    cancel,
	}
	s.Touch()
	m.sessions.Store(s.ID, s)
	ok = true

	log.Debug().
		Str("session_id", s.ID).
		Str("url", req.URL).
		Int64("active", m.active.Load()).
		Msg("Session created")

	return s, nil
}

// GetSession looks up a session by id, refreshing its last-access time.
func (m *Manager) GetSession(id string) (*Session, bool) {
	v, found := m.sessions.Load(id)
	if !found {
		return nil, false
	}
	s := v.(*Session)
	s.Touch()
	return s, true
}

// CloseSession destroys a session. Closing an unknown or already-closed
// session is a no-op.
func (m *Manager) CloseSession(id string) {
	v, found := m.sessions.LoadAndDelete(id)
	if !found {
		return
	}
	s := v.(*Session)
	s.close()
	m.active.Add(-1)
	log.Debug().Str("session_id", id).Int64("active", m.active.Load()).Msg("Session closed")
}

// ActiveSessionCount returns the number of live sessions.
func (m *Manager) ActiveSessionCount() int {
	return int(m.active.Load())
}

// Navigator exposes the navigation helper for WaitNone callers.
func (m *Manager) Navigator() *Navigator {
	return m.nav
}

// Shutdown closes all sessions and tears down the shared browser process.
// Safe to call during process exit and safe to call more than once.
func (m *Manager) Shutdown() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}

	close(m.done)
	m.sweepWG.Wait()

	m.sessions.Range(func(key, _ any) bool {
		m.CloseSession(key.(string))
		return true
	})

	if m.allocCancel != nil {
		m.allocCancel()
	}

	log.Info().Msg("Session manager shut down")
}

// sweep closes sessions idle longer than the configured idle timeout. Idle is
// measured from last access, not creation.
func (m *Manager) sweep() {
	defer m.sweepWG.Done()

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sessions.Range(func(key, value any) bool {
				s := value.(*Session)
				if s.IdleFor() > m.cfg.IdleTimeout {
					log.Info().
						Str("session_id", s.ID).
						Dur("idle", s.IdleFor()).
						Msg("Reclaiming idle session")
					m.CloseSession(key.(string))
				}
				return true
			})
		case <-m.done:
			return
		}
	}
}

// injectCookies converts stored cookies to CDP params and sets them on the
// page before navigation.
func injectCookies(cookies []auth.Cookie) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			p := &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			}
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p.Expires = &expires
			}
			switch c.SameSite {
			case "Strict":
				p.SameSite = network.CookieSameSiteStrict
			case "Lax":
				p.SameSite = network.CookieSameSiteLax
			case "None":
				p.SameSite = network.CookieSameSiteNone
			}
			params = append(params, p)
		}
		return network.SetCookies(params).Do(ctx)
	}
}
