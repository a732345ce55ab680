// internal/app/app.go

// Package app provides the core application initialization and lifecycle
// management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/cache"
	"github.com/law-makers/snip/internal/config"
	"github.com/law-makers/snip/internal/extract"
	"github.com/law-makers/snip/internal/hosting"
	"github.com/law-makers/snip/internal/session"
)

// Application holds all application dependencies and manages their lifecycle.
// It is created once at startup and shared across all CLI commands; Close()
// releases the browser process and background goroutines.
type Application struct {
	Config    *config.Config
	Logger    *zerolog.Logger
	Cache     *cache.ComponentCache
	Sessions  *session.Manager
	Extractor *extract.Extractor
	Hosting   *hosting.Store
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
// If any step fails, already-started resources are released before returning.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	componentCache := cache.New(cache.Config{
		MaxEntries:    cfg.CacheMaxEntries,
		MaxEntryBytes: cfg.CacheEntryBytes,
		MaxTotalBytes: cfg.CacheTotalBytes,
		DefaultTTL:    cfg.CacheTTL,
	})
	logger.Debug().
		Int64("max_total_bytes", cfg.CacheTotalBytes).
		Msg("Component cache initialized")

	sessions, err := session.NewManager(session.Config{
		MaxSessions:       cfg.MaxSessions,
		IdleTimeout:       cfg.IdleTimeout,
		SweepInterval:     cfg.SweepInterval,
		NavigationTimeout: cfg.NavigationTimeout,
		Headless:          cfg.Headless,
		UserAgent:         cfg.UserAgent,
		Proxy:             cfg.Proxy,
		ChromePath:        cfg.ChromePath,
	})
	if err != nil {
		componentCache.Close()
		return nil, fmt.Errorf("failed to start session manager: %w", err)
	}

	store, err := hosting.NewStore(cfg.HostingDir, 0)
	if err != nil {
		sessions.Shutdown()
		componentCache.Close()
		return nil, fmt.Errorf("failed to open hosting store: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Cache:     componentCache,
		Sessions:  sessions,
		Extractor: extract.NewExtractor(sessions, componentCache),
		Hosting:   store,
		startTime: time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application and all its resources. Errors
// during shutdown are logged but never block the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Sessions != nil {
		a.Sessions.Shutdown()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.Hosting != nil {
		a.Hosting.Close()
	}

	a.Logger.Info().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
