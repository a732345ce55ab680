// internal/session/session.go

// Package session owns the shared headless-browser process and the bounded
// set of live page sessions on top of it. Every extraction component borrows
// a Session for the duration of one call and never retains it.
package session

import (
	"context"
	"sync/atomic"
	"time"
)

// Session is a live browser page bound to one URL.
type Session struct {
	ID        string
	URL       string
	CreatedAt time.Time

	ctx        context.Context
	cancel     context.CancelFunc
	lastAccess atomic.Int64 // unix nanos
	closed     atomic.Bool
}

// Context returns the page context for running browser actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Touch refreshes the last-access timestamp.
func (s *Session) Touch() {
	s.lastAccess.Store(time.Now().UnixNano())
}

// IdleFor returns the time elapsed since the last access.
func (s *Session) IdleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastAccess.Load()))
}

// LastAccessedAt returns the last-access timestamp.
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

// close cancels the page context. Safe to call more than once.
func (s *Session) close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel()
	}
}
