// internal/session/manager_test.go
package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateSessionFailsFastAtCapacity(t *testing.T) {
	m := &Manager{cfg: Config{MaxSessions: 1}}
	m.active.Add(1)

	_, err := m.CreateSession(context.Background(), CreateRequest{URL: "https://example.com"})
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("CreateSession at capacity = %v, want ErrCapacity", err)
	}
	if m.active.Load() != 1 {
		t.Errorf("rejected request must not leak an active slot: active = %d", m.active.Load())
	}
}

func TestCreateSessionAfterShutdown(t *testing.T) {
	m := &Manager{cfg: Config{MaxSessions: 1}}
	m.closed.Store(true)

	if _, err := m.CreateSession(context.Background(), CreateRequest{URL: "https://example.com"}); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("CreateSession after shutdown = %v, want ErrManagerClosed", err)
	}
}

func TestCloseSessionUnknownIDIsNoOp(t *testing.T) {
	m := &Manager{cfg: Config{MaxSessions: 1}}
	m.CloseSession("unknown")
	if m.active.Load() != 0 {
		t.Errorf("closing an unknown session changed the active count: %d", m.active.Load())
	}
}

func TestSessionTouchAndIdleFor(t *testing.T) {
	s := &Session{ID: "test", URL: "https://example.com"}
	s.Touch()

	if idle := s.IdleFor(); idle > time.Second {
		t.Errorf("freshly touched session reports idle %v", idle)
	}
	first := s.LastAccessedAt()
	time.Sleep(5 * time.Millisecond)
	s.Touch()
	if !s.LastAccessedAt().After(first) {
		t.Error("Touch did not advance the last-access time")
	}
}
